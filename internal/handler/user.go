package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

func profileView(u *models.User) gin.H {
	return gin.H{
		"id":                     u.ID,
		"merchant_id":            u.MerchantID,
		"email":                  u.Email,
		"name":                   u.Name,
		"shop_name":              u.ShopName,
		"phone":                  u.Phone,
		"contact_number":         u.ContactNumber,
		"address":                u.Address,
		"business_type":          u.BusinessType,
		"website":                u.Website,
		"pickup_mode":            u.PickupMode,
		"default_payment_method": u.DefaultPaymentMethod,
		"joined_at":              u.CreatedAt,
	}
}

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"user": profileView(user),
	})
}
