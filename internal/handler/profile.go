package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/middleware"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const deleteGracePeriod = 7 * 24 * time.Hour

// UpdateProfileReq 更新资料请求，未传的字段保持不变
type UpdateProfileReq struct {
	Name                 *string `json:"name" binding:"omitempty,max=64"`
	ShopName             *string `json:"shop_name" binding:"omitempty,max=128"`
	Phone                *string `json:"phone"`
	ContactNumber        *string `json:"contact_number"`
	Address              *string `json:"address" binding:"omitempty,max=255"`
	BusinessType         *string `json:"business_type" binding:"omitempty,max=64"`
	Website              *string `json:"website" binding:"omitempty,max=255"`
	PickupMode           *string `json:"pickup_mode" binding:"omitempty,max=32"`
	DefaultPaymentMethod *string `json:"default_payment_method" binding:"omitempty,max=64"`
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// GetProfile 返回商户资料
func GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": profileView(user)})
}

// UpdateProfile 更新当前商户资料；新建包裹的创建节点使用新的地址和电话
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		updates := map[string]interface{}{}
		set := func(col string, v *string, dst *string) {
			if v == nil {
				return
			}
			s := strings.TrimSpace(*v)
			updates[col] = s
			*dst = s
		}
		for _, p := range []*string{req.Phone, req.ContactNumber} {
			if p != nil && strings.TrimSpace(*p) != "" {
				if err := util.ValidatePhone(*p); err != nil {
					util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
					return
				}
				n := util.NormalizePhone(*p)
				*p = n
			}
		}
		set("name", req.Name, &user.Name)
		set("shop_name", req.ShopName, &user.ShopName)
		set("phone", req.Phone, &user.Phone)
		set("contact_number", req.ContactNumber, &user.ContactNumber)
		set("address", req.Address, &user.Address)
		set("business_type", req.BusinessType, &user.BusinessType)
		set("website", req.Website, &user.Website)
		set("pickup_mode", req.PickupMode, &user.PickupMode)
		set("default_payment_method", req.DefaultPaymentMethod, &user.DefaultPaymentMethod)

		if len(updates) > 0 {
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
				return
			}
		}

		util.Success(c, util.Response{"user": profileView(user)})
	}
}

// ChangePassword 修改当前用户密码，其他会话全部失效
func ChangePassword(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
			return
		}

		if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "current password is incorrect")
			return
		}

		hash, err := util.HashPassword(req.NewPassword, bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}

		sessionID := ""
		if sess, ok := middleware.CurrentSession(c); ok {
			sessionID = sess.ID
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", hash).Error; err != nil {
				return err
			}
			return tx.Model(&models.Session{}).
				Where("user_id = ? AND id <> ?", user.ID, sessionID).
				Update("revoked", true).Error
		})
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		util.Success(c, util.Response{
			"message": "password changed; other sessions have been signed out",
		})
	}
}

// DeleteAccount 注销当前账号（设置 7 天缓冲期），期间重新登录可恢复
func DeleteAccount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		if user.DeletedAt != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "account is already scheduled for deletion")
			return
		}

		now := time.Now()
		permanentlyAt := now.Add(deleteGracePeriod)

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
				"deleted_at":            now,
				"delete_permanently_at": permanentlyAt,
			}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Session{}).Where("user_id = ?", user.ID).Update("revoked", true).Error
		})
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to close account")
			return
		}
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)

		util.Success(c, util.Response{
			"message":               "account scheduled for deletion",
			"deleted_at":            now,
			"delete_permanently_at": permanentlyAt,
			"tip":                   "log in again within 7 days to restore the account",
		})
	}
}
