package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/cache"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
)

// DashboardKey is the cache key of a merchant's dashboard.
func DashboardKey(merchantID string) string {
	return "dashboard:" + merchantID
}

// Dashboard is the merchant home screen summary.
type Dashboard struct {
	Counts            map[ledger.Status]int `json:"counts"`
	TotalParcels      int                   `json:"total_parcels"`
	Balance           float64               `json:"balance"`
	PendingSettlement float64               `json:"pending_settlement"`
	DeliveredParcels  int                   `json:"delivered_parcels"`
	Transactions      int                   `json:"transactions"`
	GeneratedAt       time.Time             `json:"generated_at"`
	// Version is the ledger version the summary was built from.
	Version uint64 `json:"version"`
}

type DashboardService struct {
	ledgers *LedgerService
	cache   cache.Cache
	ttl     time.Duration
}

func NewDashboardService(ledgers *LedgerService, c cache.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{ledgers: ledgers, cache: c, ttl: ttl}
}

// Get serves from cache while the cached summary matches the current ledger
// version. A summary built before a mutation and stored after it is never
// served. Cache errors other than a miss are logged and the summary is
// rebuilt.
func (s *DashboardService) Get(ctx context.Context, m ledger.Merchant) (Dashboard, error) {
	key := DashboardKey(m.MerchantID)
	var d Dashboard
	err := s.cache.Get(ctx, key, &d)
	if err == nil && d.Version == s.ledgers.Version(m.MerchantID) {
		return d, nil
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		logger.Warn("dashboard cache read failed", zap.String("merchant_id", m.MerchantID), zap.Error(err))
	}

	d, err = s.build(ctx, m)
	if err != nil {
		return Dashboard{}, err
	}
	if err := s.cache.Set(ctx, key, d, s.ttl); err != nil {
		logger.Warn("dashboard cache write failed", zap.String("merchant_id", m.MerchantID), zap.Error(err))
	}
	return d, nil
}

// build reads everything under one lock so the numbers and the version agree.
func (s *DashboardService) build(ctx context.Context, m ledger.Merchant) (Dashboard, error) {
	var d Dashboard
	err := s.ledgers.view(ctx, m, func(l *ledger.Ledger) {
		counts := l.Counts()
		inv := l.SettlementPreview()
		total := 0
		for _, n := range counts {
			total += n
		}
		d = Dashboard{
			Counts:            counts,
			TotalParcels:      total,
			Balance:           l.Balance(),
			PendingSettlement: inv.TotalNet,
			DeliveredParcels:  len(inv.Lines),
			Transactions:      len(l.Transactions()),
			GeneratedAt:       time.Now(),
			Version:           s.ledgers.Version(m.MerchantID),
		}
	})
	return d, err
}
