package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/monitor"
)

// Purger removes a merchant's ledger rows.
type Purger interface {
	Purge(ctx context.Context, merchantID string) error
}

// JobService runs housekeeping on a cron schedule.
type JobService struct {
	cron    *cron.Cron
	db      *gorm.DB
	purger  Purger
	ledgers *LedgerService
	now     func() time.Time
}

func NewJobService(db *gorm.DB, purger Purger, ledgers *LedgerService) *JobService {
	return &JobService{
		cron:    cron.New(),
		db:      db,
		purger:  purger,
		ledgers: ledgers,
		now:     time.Now,
	}
}

// Start registers the jobs on schedule (cron spec or "@every 1h") and
// starts the scheduler.
func (s *JobService) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runHousekeeping); err != nil {
		return fmt.Errorf("schedule housekeeping %q: %w", schedule, err)
	}
	s.cron.Start()
	logger.Info("job service started", zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running job to finish.
func (s *JobService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("job service stopped")
}

func (s *JobService) runHousekeeping() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := s.PurgeDeletedAccounts(ctx)
	if err != nil {
		logger.Error("purge deleted accounts failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("purged deleted accounts", zap.Int("count", n))
	}

	removed, err := s.CleanupSessions(ctx)
	if err != nil {
		logger.Error("cleanup sessions failed", zap.Error(err))
	} else if removed > 0 {
		logger.Debug("removed stale sessions", zap.Int64("count", removed))
	}
}

// PurgeDeletedAccounts permanently removes accounts whose grace period has
// ended, together with everything they own.
func (s *JobService) PurgeDeletedAccounts(ctx context.Context) (int, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("delete_permanently_at IS NOT NULL AND delete_permanently_at <= ?", s.now()).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("find expired accounts: %w", err)
	}

	var errs []error
	purged := 0
	for i := range users {
		if err := s.purgeUser(ctx, &users[i]); err != nil {
			errs = append(errs, fmt.Errorf("purge %s: %w", users[i].MerchantID, err))
			continue
		}
		purged++
	}
	return purged, errors.Join(errs...)
}

func (s *JobService) purgeUser(ctx context.Context, u *models.User) error {
	if err := s.purger.Purge(ctx, u.MerchantID); err != nil {
		return err
	}

	var snaps []models.Snapshot
	if err := s.db.WithContext(ctx).Where("user_id = ?", u.ID).Find(&snaps).Error; err != nil {
		return err
	}
	for _, sn := range snaps {
		if err := os.Remove(sn.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove snapshot file failed", zap.String("path", sn.FilePath), zap.Error(err))
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Snapshot{}, &models.PaymentMethod{}, &models.PickupRequest{},
			&models.Session{}, &models.AuditLog{},
		} {
			if err := tx.Where("user_id = ?", u.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, u.ID).Error
	})
	if err != nil {
		return err
	}

	if s.ledgers != nil {
		s.ledgers.Forget(u.MerchantID)
	}
	monitor.PurgedAccountsTotal.Inc()
	logger.Info("account purged", zap.String("merchant_id", u.MerchantID))
	return nil
}

// CleanupSessions deletes sessions that expired or were revoked.
func (s *JobService) CleanupSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR revoked = ?", s.now(), true).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
