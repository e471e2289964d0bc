package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/middleware"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
	midAttempts     = 8
)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthHandler 构造函数
func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- 注册 ----------

type registerReq struct {
	Name            string `json:"name" binding:"required,max=64"`
	ShopName        string `json:"shop_name" binding:"required,max=128"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := util.ValidatePhone(req.Phone); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidatePassword(req.Password); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	// 两次输入一致
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "passwords do not match")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	mid, err := h.freshMerchantID()
	if err != nil {
		logger.Error("allocate merchant id failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to allocate merchant id")
		return
	}

	phone := util.NormalizePhone(req.Phone)
	user := models.User{
		MerchantID:    mid,
		Email:         email,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(req.Name),
		ShopName:      strings.TrimSpace(req.ShopName),
		Phone:         phone,
		ContactNumber: phone,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}
	logger.Info("merchant registered", zap.String("merchant_id", user.MerchantID))

	util.Success(c, util.Response{
		"message": "registration successful",
		"user":    profileView(&user),
	})
}

// freshMerchantID 生成未被占用的 MID-xxxxx
func (h *AuthHandler) freshMerchantID() (string, error) {
	for i := 0; i < midAttempts; i++ {
		mid := ledger.NewMerchantID()
		var n int64
		if err := h.DB.Model(&models.User{}).Where("merchant_id = ?", mid).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return mid, nil
		}
	}
	return "", errors.New("merchant id space exhausted")
}

// ---------- 登录 ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		}
		return
	}

	now := time.Now()

	// 检查是否被锁定
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account locked, try again later")
		return
	}

	// 只更新登录相关列，balance 由账本存储维护
	if !util.CheckPassword(req.Password, user.PasswordHash) {
		updates := map[string]interface{}{"failed_login_attempts": user.FailedLoginAttempts + 1}
		if user.FailedLoginAttempts+1 >= maxFailedLogins {
			updates["locked_until"] = now.Add(lockDuration)
			updates["failed_login_attempts"] = 0
		}
		if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
			logger.Warn("record failed login failed", zap.String("merchant_id", user.MerchantID), zap.Error(err))
		}
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}

	updates := map[string]interface{}{
		"failed_login_attempts": 0,
		"locked_until":          nil,
		"last_login_ip":         c.ClientIP(),
		"last_login_at":         now,
	}

	// 注销缓冲期内登录则撤销注销
	if user.DeletedAt != nil {
		if user.DeletePermanentlyAt == nil || !now.Before(*user.DeletePermanentlyAt) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account has been closed")
			return
		}
		updates["deleted_at"] = nil
		updates["delete_permanently_at"] = nil
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update user")
		return
	}

	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		ExpiresAt: now.Add(h.TokenTTL),
	}
	if err := h.DB.Create(&sess).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create session")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, user.MerchantID, sess.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to issue token")
		return
	}
	c.SetCookie(middleware.TokenCookie, token, int(h.TokenTTL.Seconds()), "/", "", false, true)

	util.Success(c, util.Response{
		"token":      token,
		"expires_at": sess.ExpiresAt,
		"user":       profileView(&user),
	})
}

// Logout 注销当前会话
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	if err := h.DB.Model(&models.Session{}).Where("id = ?", sess.ID).Update("revoked", true).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "logout failed")
		return
	}
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	util.Success(c, util.Response{"message": "logged out"})
}
