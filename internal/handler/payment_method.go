package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

// PaymentMethodHandler 收款方式管理
type PaymentMethodHandler struct {
	DB *gorm.DB
}

func NewPaymentMethodHandler(db *gorm.DB) *PaymentMethodHandler {
	return &PaymentMethodHandler{DB: db}
}

type paymentMethodReq struct {
	Type          string `json:"type" binding:"required"`
	Label         string `json:"label" binding:"max=64"`
	BankName      string `json:"bank_name" binding:"max=64"`
	AccountName   string `json:"account_name" binding:"max=64"`
	AccountNumber string `json:"account_number" binding:"max=64"`
	BranchName    string `json:"branch_name" binding:"max=64"`
	RoutingNo     string `json:"routing_no" binding:"max=32"`
	Provider      string `json:"provider"`
	MobileNumber  string `json:"mobile_number"`
	Note          string `json:"note" binding:"max=255"`
}

// toModel 按类型校验必填字段，并清掉与类型无关的字段
func (r *paymentMethodReq) toModel(pm *models.PaymentMethod) error {
	if err := util.ValidatePaymentType(r.Type); err != nil {
		return err
	}
	*pm = models.PaymentMethod{ID: pm.ID, UserID: pm.UserID, Type: r.Type, Label: strings.TrimSpace(r.Label), Note: r.Note}
	switch r.Type {
	case "Bank":
		if r.BankName == "" || r.AccountName == "" || r.AccountNumber == "" {
			return errors.New("bank name, account name and account number are required")
		}
		pm.BankName = strings.TrimSpace(r.BankName)
		pm.AccountName = strings.TrimSpace(r.AccountName)
		pm.AccountNumber = strings.TrimSpace(r.AccountNumber)
		pm.BranchName = strings.TrimSpace(r.BranchName)
		pm.RoutingNo = strings.TrimSpace(r.RoutingNo)
	case "Mobile Banking":
		if err := util.ValidateProvider(r.Provider); err != nil {
			return err
		}
		if err := util.ValidatePhone(r.MobileNumber); err != nil {
			return err
		}
		pm.Provider = r.Provider
		pm.MobileNumber = util.NormalizePhone(r.MobileNumber)
	}
	return nil
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var list []models.PaymentMethod
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": list})
}

func (h *PaymentMethodHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req paymentMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	pm := models.PaymentMethod{UserID: user.ID}
	if err := req.toModel(&pm); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := h.DB.Create(&pm).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save payment method")
		return
	}
	util.Success(c, util.Response{"payment_method": pm})
}

func (h *PaymentMethodHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	pm, ok := h.find(c, user.ID)
	if !ok {
		return
	}
	var req paymentMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	createdAt := pm.CreatedAt
	if err := req.toModel(&pm); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	pm.CreatedAt = createdAt
	if err := h.DB.Save(&pm).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save payment method")
		return
	}
	util.Success(c, util.Response{"payment_method": pm})
}

func (h *PaymentMethodHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	pm, ok := h.find(c, user.ID)
	if !ok {
		return
	}
	if err := h.DB.Delete(&pm).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

func (h *PaymentMethodHandler) find(c *gin.Context, userID uint) (models.PaymentMethod, bool) {
	var pm models.PaymentMethod
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&pm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "payment method not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return pm, false
	}
	return pm, true
}
