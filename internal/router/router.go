package router

import (
	"net/http"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/events"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/handler"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/middleware"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/monitor"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps 是路由需要的已初始化组件
type Deps struct {
	DB        *gorm.DB
	Ledgers   *service.LedgerService
	Dashboard *service.DashboardService
	Hub       *events.Hub
}

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(monitor.PrometheusMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	encKey := cfg.Security.EncryptionKey

	// 登录/注册接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(d.DB, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, d.DB),
		middleware.AuditMiddleware(d.DB, encKey),
	)

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.GET("/profile", handler.GetProfile)
	protected.POST("/profile", handler.UpdateProfile(d.DB))
	protected.POST("/profile/password", handler.ChangePassword(d.DB, cfg.Security.BcryptCost))
	protected.POST("/profile/delete", handler.DeleteAccount(d.DB))

	lh := handler.NewLedgerHandler(d.Ledgers, d.Dashboard, cfg.App.PageSize)
	protected.GET("/parcels", lh.ListParcels)
	protected.POST("/parcels", lh.CreateParcel)
	protected.GET("/parcels/:id", lh.GetParcel)
	protected.PUT("/parcels/:id", lh.UpdateParcel)
	protected.DELETE("/parcels/:id", lh.DeleteParcel)
	protected.POST("/parcels/:id/status", lh.UpdateStatus)
	protected.GET("/parcels/:id/tracking", lh.GetTracking)
	protected.GET("/charges/quote", lh.Quote)

	protected.GET("/transactions", lh.ListTransactions)
	protected.POST("/balance/topup", lh.TopUp)
	protected.GET("/settlement/preview", lh.SettlementPreview)
	protected.POST("/settlement", lh.Settle)
	protected.GET("/dashboard", lh.Dashboard)

	protected.GET("/export/csv", lh.ExportCSV)
	protected.GET("/export/xlsx", lh.ExportXLSX)

	pm := handler.NewPaymentMethodHandler(d.DB)
	protected.GET("/payment-methods", pm.List)
	protected.POST("/payment-methods", pm.Create)
	protected.PUT("/payment-methods/:id", pm.Update)
	protected.DELETE("/payment-methods/:id", pm.Delete)

	pickups := handler.NewPickupHandler(d.DB)
	protected.GET("/pickups", pickups.List)
	protected.POST("/pickups", pickups.Create)

	snapshots := handler.NewSnapshotHandler(d.DB, d.Ledgers, encKey, cfg.Snapshot.Dir)
	protected.POST("/snapshots", snapshots.Create)
	protected.GET("/snapshots", snapshots.List)
	protected.GET("/snapshots/:id/download", snapshots.Download)
	protected.POST("/snapshots/:id/restore", snapshots.Restore)
	protected.DELETE("/snapshots/:id", snapshots.Delete)

	logHandler := handler.NewLogHandler(d.DB, encKey)
	protected.GET("/logs", logHandler.ListLogs)
	protected.GET("/logs/parcels", logHandler.ListParcelHistory)

	if d.Hub != nil {
		protected.GET("/ws", handler.Stream(d.Hub))
	}

	return r
}
