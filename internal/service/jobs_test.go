package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/database"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "jobs_test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPurgeDeletedAccounts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	ls := store.NewLedgerStore(db)
	svc := NewLedgerService(ls, nil, nil)
	jobs := NewJobService(db, ls, svc)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(72 * time.Hour)
	gone := models.User{MerchantID: "MID-10001", Email: "gone@shop.test", PasswordHash: "x", DeletedAt: &past, DeletePermanentlyAt: &past}
	grace := models.User{MerchantID: "MID-10002", Email: "grace@shop.test", PasswordHash: "x", DeletedAt: &past, DeletePermanentlyAt: &future}
	require.NoError(t, db.Create(&gone).Error)
	require.NoError(t, db.Create(&grace).Error)

	m := ledger.Merchant{MerchantID: gone.MerchantID}
	_, err := svc.AddParcel(ctx, m, ledger.Draft{Amount: 100})
	require.NoError(t, err)
	_, err = svc.TopUp(ctx, m, 10, "bKash")
	require.NoError(t, err)

	snapPath := filepath.Join(t.TempDir(), "snap.bin")
	require.NoError(t, os.WriteFile(snapPath, []byte("x"), 0o600))
	require.NoError(t, db.Create(&models.Snapshot{UserID: gone.ID, FileName: "snap.bin", FilePath: snapPath, Size: 1}).Error)
	require.NoError(t, db.Create(&models.PaymentMethod{UserID: gone.ID, Type: "Cash"}).Error)

	n, err := jobs.PurgeDeletedAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Parcel{}).Where("merchant_id = ?", gone.MerchantID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Transaction{}).Where("merchant_id = ?", gone.MerchantID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.PaymentMethod{}).Count(&count)
	assert.Zero(t, count)
	_, err = os.Stat(snapPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanupSessions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	jobs := NewJobService(db, store.NewLedgerStore(db), nil)

	now := time.Now()
	require.NoError(t, db.Create(&[]models.Session{
		{ID: "live", UserID: 1, ExpiresAt: now.Add(time.Hour)},
		{ID: "expired", UserID: 1, ExpiresAt: now.Add(-time.Minute)},
		{ID: "revoked", UserID: 1, ExpiresAt: now.Add(time.Hour), Revoked: true},
	}).Error)

	n, err := jobs.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []models.Session
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "live", left[0].ID)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	jobs := NewJobService(nil, nil, nil)
	assert.Error(t, jobs.Start("every tuesday-ish"))
}
