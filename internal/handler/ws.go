package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/events"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
)

// Stream 把当前商户的账本事件通过 websocket 推送给前端
func Stream(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		if err := hub.Serve(c.Writer, c.Request, user.MerchantID); err != nil {
			logger.Debug("websocket upgrade failed", zap.String("merchant_id", user.MerchantID), zap.Error(err))
		}
	}
}
