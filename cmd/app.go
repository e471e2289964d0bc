package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/cache"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/database"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/events"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/service"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/store"
)

// app 持有所有已初始化的组件
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	store     *store.LedgerStore
	hub       *events.Hub
	ledgers   *service.LedgerService
	dashboard *service.DashboardService
	jobs      *service.JobService
	closers   []io.Closer
}

// bootstrap 加载配置、初始化日志、数据库、缓存和事件发布
func bootstrap() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Env, cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if err := ensureDir(cfg.Snapshot.Dir); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}

	hub := events.NewHub(cfg.CORS.AllowOrigins...)
	pub, closer, err := events.New(cfg.Events, hub)
	if err != nil {
		return nil, err
	}

	ls := store.NewLedgerStore(db)
	ledgers := service.NewLedgerService(ls, pub, c)
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	logger.Info("bootstrap complete",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("events_driver", cfg.Events.Driver))

	return &app{
		cfg:       cfg,
		db:        db,
		store:     ls,
		hub:       hub,
		ledgers:   ledgers,
		dashboard: service.NewDashboardService(ledgers, c, ttl),
		jobs:      service.NewJobService(db, ls, ledgers),
		closers:   []io.Closer{closer},
	}, nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Sync()
}

// merchant 按 MID 读取商户
func (a *app) merchant(merchantID string) (*models.User, error) {
	var u models.User
	if err := a.db.Where("merchant_id = ?", merchantID).First(&u).Error; err != nil {
		return nil, fmt.Errorf("find merchant %s: %w", merchantID, err)
	}
	return &u, nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
