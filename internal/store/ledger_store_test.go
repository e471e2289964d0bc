package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/config"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/database"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "store_test.db"),
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

func createMerchant(t *testing.T, db *gorm.DB, merchantID string) models.User {
	t.Helper()
	u := models.User{MerchantID: merchantID, Email: merchantID + "@shop.test", PasswordHash: "x", Name: "Rahim"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func buildState(t *testing.T) ledger.State {
	t.Helper()
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	l := ledger.New(ledger.Merchant{MerchantID: "MID-11111", Name: "Rahim"}, ledger.State{},
		ledger.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		ledger.WithTransactionIDs(func(time.Time) string { return "TX-000001" }),
	)
	a, err := l.AddParcel(ledger.Draft{ID: "EKS-100001", CustomerName: "Karim", Amount: 1000, Weight: "1"})
	require.NoError(t, err)
	_, err = l.AddParcel(ledger.Draft{ID: "EKS-100002", CustomerName: "Sumi", Amount: 450, Weight: "2.5", Exchange: true})
	require.NoError(t, err)
	_, err = l.UpdateStatus(a.Parcel.ID, ledger.StatusInTransit)
	require.NoError(t, err)
	_, err = l.UpdateStatus(a.Parcel.ID, ledger.StatusDelivered)
	require.NoError(t, err)
	_, err = l.TopUp(200, "bKash")
	require.NoError(t, err)
	return l.Snapshot()
}

func TestLedgerStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	want := buildState(t)
	require.NoError(t, s.Save(ctx, "MID-11111", want))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)

	assert.InDelta(t, want.Balance, got.Balance, 1e-9)
	require.Len(t, got.Parcels, 2)
	assert.Equal(t, "EKS-100002", got.Parcels[0].ID, "newest first")
	assert.Equal(t, "EKS-100001", got.Parcels[1].ID)
	assert.True(t, got.Parcels[0].Exchange)
	assert.Equal(t, ledger.StatusDelivered, got.Parcels[1].Status)

	history := got.Parcels[1].TrackingHistory
	require.Len(t, history, 3)
	assert.Equal(t, ledger.StepOrderPlaced, history[0].Status)
	assert.Equal(t, "In Transit", history[1].Status)
	assert.Equal(t, "Delivered", history[2].Status)
	assert.True(t, want.Parcels[1].TrackingHistory[2].Timestamp.Equal(history[2].Timestamp))

	// duplicate transaction ids survive because rows are keyed by position
	require.Len(t, got.Transactions, 2)
	assert.Equal(t, ledger.TxTopUp, got.Transactions[0].Type)
	assert.Equal(t, ledger.TxOrderIncome, got.Transactions[1].Type)
	assert.Equal(t, "TX-000001", got.Transactions[0].ID)
	assert.Equal(t, "TX-000001", got.Transactions[1].ID)
}

func TestLedgerStoreSaveReplacesRemovedRows(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	other := createMerchant(t, db, "MID-22222")
	s := NewLedgerStore(db)
	ctx := context.Background()

	st := buildState(t)
	require.NoError(t, s.Save(ctx, "MID-11111", st))
	require.NoError(t, s.Save(ctx, "MID-22222", st))

	st.Parcels = st.Parcels[1:]
	require.NoError(t, s.Save(ctx, "MID-11111", st))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	require.Len(t, got.Parcels, 1)
	assert.Equal(t, "EKS-100001", got.Parcels[0].ID)

	var steps int64
	require.NoError(t, db.Model(&models.TrackingStep{}).Where("merchant_id = ? AND parcel_id = ?", "MID-11111", "EKS-100002").Count(&steps).Error)
	assert.Zero(t, steps)

	// the other merchant is untouched, even with the same parcel ids
	otherState, err := s.Load(ctx, other.MerchantID)
	require.NoError(t, err)
	assert.Len(t, otherState.Parcels, 2)
}

func TestLedgerStoreUnknownMerchant(t *testing.T) {
	db := setupTestDB(t)
	s := NewLedgerStore(db)
	ctx := context.Background()

	_, err := s.Load(ctx, "MID-00000")
	assert.ErrorIs(t, err, ErrUnknownMerchant)
	assert.ErrorIs(t, s.Save(ctx, "MID-00000", ledger.State{}), ErrUnknownMerchant)
}

func TestLedgerStorePurge(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "MID-11111", buildState(t)))
	require.NoError(t, s.Purge(ctx, "MID-11111"))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	assert.Empty(t, got.Parcels)
	assert.Empty(t, got.Transactions)
}

func rowIDs(t *testing.T, db *gorm.DB, model interface{}, merchantID string) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, db.Model(model).Where("merchant_id = ?", merchantID).Order("id").Pluck("id", &ids).Error)
	return ids
}

func TestLedgerStoreSaveKeepsExistingRows(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	l := ledger.New(ledger.Merchant{MerchantID: "MID-11111"}, ledger.State{})
	a, err := l.AddParcel(ledger.Draft{ID: "EKS-100001", Amount: 1000, Weight: "1"})
	require.NoError(t, err)
	_, err = l.TopUp(50, "bKash")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))

	txIDs := rowIDs(t, db, &models.Transaction{}, "MID-11111")
	stepIDs := rowIDs(t, db, &models.TrackingStep{}, "MID-11111")
	require.Len(t, txIDs, 1)
	require.Len(t, stepIDs, 1)

	// saving the same state again writes nothing new
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))
	assert.Equal(t, txIDs, rowIDs(t, db, &models.Transaction{}, "MID-11111"))
	assert.Equal(t, stepIDs, rowIDs(t, db, &models.TrackingStep{}, "MID-11111"))

	// a status change appends one step and one transaction
	_, err = l.UpdateStatus(a.Parcel.ID, ledger.StatusDelivered)
	require.NoError(t, err)
	_, err = l.AddParcel(ledger.Draft{ID: "EKS-100002", Amount: 300})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))

	gotTx := rowIDs(t, db, &models.Transaction{}, "MID-11111")
	gotSteps := rowIDs(t, db, &models.TrackingStep{}, "MID-11111")
	require.Len(t, gotTx, 2)
	require.Len(t, gotSteps, 3)
	assert.Equal(t, txIDs, gotTx[:1])
	assert.Equal(t, stepIDs, gotSteps[:1])

	var rows []models.Parcel
	require.NoError(t, db.Where("merchant_id = ?", "MID-11111").Order("seq").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "EKS-100001", rows[0].ID)
	assert.Equal(t, "Delivered", rows[0].Status)
	assert.Equal(t, "EKS-100002", rows[1].ID)

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	assert.Equal(t, l.Snapshot().Balance, got.Balance)
	assert.Equal(t, "EKS-100002", got.Parcels[0].ID)
	assert.Len(t, got.Parcels[1].TrackingHistory, 2)
}

func TestLedgerStoreDeleteKeepsOtherParcelOrder(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	l := ledger.New(ledger.Merchant{MerchantID: "MID-11111"}, ledger.State{})
	for _, id := range []string{"EKS-100001", "EKS-100002", "EKS-100003"} {
		_, err := l.AddParcel(ledger.Draft{ID: id, Amount: 100})
		require.NoError(t, err)
	}
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))

	l.DeleteParcel("EKS-100002")
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))
	_, err := l.AddParcel(ledger.Draft{ID: "EKS-100004", Amount: 100})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "MID-11111", l.Snapshot()))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	ids := make([]string, 0, len(got.Parcels))
	for _, p := range got.Parcels {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"EKS-100004", "EKS-100003", "EKS-100001"}, ids)
}

func TestLedgerStoreReplaceRewritesHistory(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "MID-11111", buildState(t)))

	snap := ledger.State{
		Balance: 75,
		Parcels: []ledger.Parcel{{
			ID: "EKS-100001", CustomerName: "Karim", Amount: 1000, Weight: "1", Status: ledger.StatusPending,
			TrackingHistory: []ledger.TrackingStep{{Status: ledger.StepOrderPlaced}},
		}},
		Transactions: []ledger.Transaction{{ID: "TX-999999", Type: ledger.TxTopUp, Amount: 75, Method: "Nagad", Status: ledger.TxCompleted}},
	}
	require.NoError(t, s.Replace(ctx, "MID-11111", snap))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	assert.Equal(t, 75.0, got.Balance)
	require.Len(t, got.Parcels, 1)
	assert.Equal(t, ledger.StatusPending, got.Parcels[0].Status)
	assert.Len(t, got.Parcels[0].TrackingHistory, 1)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, "TX-999999", got.Transactions[0].ID)
}

func TestLedgerStoreSaveShorterHistoryRewrites(t *testing.T) {
	db := setupTestDB(t)
	createMerchant(t, db, "MID-11111")
	s := NewLedgerStore(db)
	ctx := context.Background()

	st := buildState(t)
	require.NoError(t, s.Save(ctx, "MID-11111", st))

	st.Transactions = st.Transactions[:1]
	st.Parcels[1].TrackingHistory = st.Parcels[1].TrackingHistory[:1]
	require.NoError(t, s.Save(ctx, "MID-11111", st))

	got, err := s.Load(ctx, "MID-11111")
	require.NoError(t, err)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, st.Transactions[0].Type, got.Transactions[0].Type)
	assert.Len(t, got.Parcels[1].TrackingHistory, 1)
}
