package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

// PickupHandler 取件预约
type PickupHandler struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewPickupHandler(db *gorm.DB) *PickupHandler {
	return &PickupHandler{DB: db, Now: time.Now}
}

type pickupReq struct {
	ContactName  string `json:"contact_name" binding:"max=64"`
	Phone        string `json:"phone"`
	Address      string `json:"address" binding:"max=255"`
	PickupDate   string `json:"pickup_date" binding:"required"`
	TimeSlot     string `json:"time_slot"`
	Instructions string `json:"instructions" binding:"max=512"`
}

// Create 新建取件预约；联系人、电话、地址缺省取商户资料
func (h *PickupHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req pickupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	date, err := util.ValidatePickupDate(req.PickupDate, h.Now())
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.TimeSlot == "" {
		req.TimeSlot = util.TimeSlots[0]
	}
	if err := util.ValidateTimeSlot(req.TimeSlot); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	contact := firstNonEmpty(req.ContactName, user.Name)
	phone := firstNonEmpty(req.Phone, user.ContactNumber, user.Phone)
	address := firstNonEmpty(req.Address, user.Address)
	if contact == "" || phone == "" || address == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "contact name, phone and address are required")
		return
	}
	if err := util.ValidatePhone(phone); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	p := models.PickupRequest{
		UserID:       user.ID,
		ContactName:  contact,
		Phone:        util.NormalizePhone(phone),
		Address:      address,
		PickupDate:   date,
		TimeSlot:     req.TimeSlot,
		Instructions: strings.TrimSpace(req.Instructions),
		Status:       "Requested",
	}
	if err := h.DB.Create(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save pickup request")
		return
	}
	util.Success(c, util.Response{"pickup": p})
}

// List 最近的取件预约
func (h *PickupHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageParams(c, 20)

	base := h.DB.Model(&models.PickupRequest{}).Where("user_id = ?", user.ID)
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	var list []models.PickupRequest
	if err := base.Order("pickup_date DESC, id DESC").Limit(size).Offset((page - 1) * size).Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	util.Success(c, util.Response{"items": list, "total": total, "page": page, "size": size})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
