package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAuditBody = 2000

// 这些字段不进审计日志
var secretFields = []string{"password", "confirm_password", "old_password", "new_password"}

// AuditMiddleware 记录登录用户的每次调用，path 和 action 加密存储。
// 必须挂在 AuthMiddleware 之后。
func AuditMiddleware(db *gorm.DB, encryptKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Next()
			return
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil && !isMultipart(c) {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody && !containsSecret(bodyBytes) {
			action += " " + string(bodyBytes)
		}

		encPath, err := util.EncryptField(encryptKey, path)
		if err != nil {
			logger.Warn("encrypt audit path failed", zap.Error(err))
			return
		}
		encAction, err := util.EncryptField(encryptKey, action)
		if err != nil {
			logger.Warn("encrypt audit action failed", zap.Error(err))
			return
		}

		userID := user.ID
		entry := models.AuditLog{
			UserID:    &userID,
			PathEnc:   encPath,
			Method:    c.Request.Method,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil {
			logger.Warn("write audit log failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func containsSecret(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, f := range secretFields {
		if bytes.Contains(lower, []byte(`"`+f+`"`)) {
			return true
		}
	}
	return false
}
