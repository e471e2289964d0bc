package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

// ErrUnknownMerchant is returned when no user row owns the merchant id.
var ErrUnknownMerchant = errors.New("unknown merchant")

// LedgerStore persists ledger state in the parcels, tracking_steps and
// transactions tables plus users.balance.
type LedgerStore struct {
	DB *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{DB: db}
}

// Load reads a merchant's state: parcels and transactions newest first,
// tracking steps in insertion order.
func (s *LedgerStore) Load(ctx context.Context, merchantID string) (ledger.State, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.Select("id", "balance").Where("merchant_id = ?", merchantID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.State{}, fmt.Errorf("%w: %s", ErrUnknownMerchant, merchantID)
		}
		return ledger.State{}, fmt.Errorf("load balance: %w", err)
	}

	var parcels []models.Parcel
	if err := db.Where("merchant_id = ?", merchantID).Order("seq DESC").Find(&parcels).Error; err != nil {
		return ledger.State{}, fmt.Errorf("load parcels: %w", err)
	}

	var steps []models.TrackingStep
	if err := db.Where("merchant_id = ?", merchantID).Order("parcel_id ASC, seq ASC").Find(&steps).Error; err != nil {
		return ledger.State{}, fmt.Errorf("load tracking steps: %w", err)
	}
	history := make(map[string][]ledger.TrackingStep, len(parcels))
	for i := range steps {
		st := &steps[i]
		history[st.ParcelID] = append(history[st.ParcelID], stepFromRow(st))
	}

	var txns []models.Transaction
	if err := db.Where("merchant_id = ?", merchantID).Order("seq DESC").Find(&txns).Error; err != nil {
		return ledger.State{}, fmt.Errorf("load transactions: %w", err)
	}

	out := ledger.State{
		Balance:      user.Balance,
		Parcels:      make([]ledger.Parcel, 0, len(parcels)),
		Transactions: make([]ledger.Transaction, 0, len(txns)),
	}
	for i := range parcels {
		p := parcelFromRow(&parcels[i])
		p.TrackingHistory = history[p.ID]
		out.Parcels = append(out.Parcels, p)
	}
	for i := range txns {
		out.Transactions = append(out.Transactions, txFromRow(&txns[i]))
	}
	return out, nil
}

// Save writes the difference between st and the stored state in one
// database transaction. Changed parcels are upserted, parcels missing from
// st are deleted with their steps, and tracking steps and transactions are
// appended past the stored position; existing rows are left alone.
func (s *LedgerStore) Save(ctx context.Context, merchantID string, st ledger.State) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveBalance(tx, merchantID, st.Balance); err != nil {
			return err
		}
		if err := saveParcels(tx, merchantID, st.Parcels); err != nil {
			return err
		}
		return appendTransactions(tx, merchantID, st.Transactions)
	})
}

// Replace rewrites every ledger row of the merchant. It is used when st does
// not extend the stored history, e.g. a snapshot restore.
func (s *LedgerStore) Replace(ctx context.Context, merchantID string, st ledger.State) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveBalance(tx, merchantID, st.Balance); err != nil {
			return err
		}
		if err := clearLedger(tx, merchantID); err != nil {
			return err
		}
		if err := saveParcels(tx, merchantID, st.Parcels); err != nil {
			return err
		}
		return appendTransactions(tx, merchantID, st.Transactions)
	})
}

func saveBalance(tx *gorm.DB, merchantID string, balance float64) error {
	res := tx.Model(&models.User{}).Where("merchant_id = ?", merchantID).Update("balance", balance)
	if res.Error != nil {
		return fmt.Errorf("save balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownMerchant, merchantID)
	}
	return nil
}

func clearLedger(tx *gorm.DB, merchantID string) error {
	for _, m := range []interface{}{&models.TrackingStep{}, &models.Parcel{}, &models.Transaction{}} {
		if err := tx.Where("merchant_id = ?", merchantID).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

var parcelColumns = []string{
	"seq", "customer_name", "phone", "address", "amount", "weight",
	"exchange", "note", "type", "status", "created_at",
}

// saveParcels keeps stored seq values while they still follow the order of
// parcels (newest first), so inserting or deleting one parcel does not
// renumber the others.
func saveParcels(tx *gorm.DB, merchantID string, parcels []ledger.Parcel) error {
	var rows []models.Parcel
	if err := tx.Where("merchant_id = ?", merchantID).Find(&rows).Error; err != nil {
		return fmt.Errorf("load stored parcels: %w", err)
	}
	stored := make(map[string]models.Parcel, len(rows))
	for _, r := range rows {
		stored[r.ID] = r
	}

	var changed []models.Parcel
	last := -1
	for i := len(parcels) - 1; i >= 0; i-- {
		p := parcels[i]
		old, ok := stored[p.ID]
		seq := last + 1
		if ok && old.Seq > last {
			seq = old.Seq
		}
		last = seq
		row := parcelToRow(merchantID, seq, p)
		if !ok || !sameParcel(old, row) {
			changed = append(changed, row)
		}
		delete(stored, p.ID)
	}

	if len(stored) > 0 {
		removed := make([]string, 0, len(stored))
		for id := range stored {
			removed = append(removed, id)
		}
		if err := tx.Where("merchant_id = ? AND parcel_id IN ?", merchantID, removed).Delete(&models.TrackingStep{}).Error; err != nil {
			return fmt.Errorf("delete tracking steps: %w", err)
		}
		if err := tx.Where("merchant_id = ? AND id IN ?", merchantID, removed).Delete(&models.Parcel{}).Error; err != nil {
			return fmt.Errorf("delete parcels: %w", err)
		}
	}

	if len(changed) > 0 {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merchant_id"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns(parcelColumns),
		}).CreateInBatches(changed, batchSize).Error
		if err != nil {
			return fmt.Errorf("save parcels: %w", err)
		}
	}
	return appendSteps(tx, merchantID, parcels)
}

// appendSteps inserts the tracking steps beyond each parcel's stored count.
// A history shorter than what is stored is written again from scratch.
func appendSteps(tx *gorm.DB, merchantID string, parcels []ledger.Parcel) error {
	var counts []struct {
		ParcelID string
		N        int
	}
	err := tx.Model(&models.TrackingStep{}).
		Select("parcel_id, MAX(seq) + 1 AS n").
		Where("merchant_id = ?", merchantID).
		Group("parcel_id").
		Scan(&counts).Error
	if err != nil {
		return fmt.Errorf("count tracking steps: %w", err)
	}
	stored := make(map[string]int, len(counts))
	for _, c := range counts {
		stored[c.ParcelID] = c.N
	}

	var steps []models.TrackingStep
	for _, p := range parcels {
		from := stored[p.ID]
		if from > len(p.TrackingHistory) {
			if err := tx.Where("merchant_id = ? AND parcel_id = ?", merchantID, p.ID).Delete(&models.TrackingStep{}).Error; err != nil {
				return fmt.Errorf("reset tracking steps of %s: %w", p.ID, err)
			}
			from = 0
		}
		for j := from; j < len(p.TrackingHistory); j++ {
			steps = append(steps, stepToRow(merchantID, p.ID, j, p.TrackingHistory[j]))
		}
	}
	if len(steps) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(steps, batchSize).Error; err != nil {
		return fmt.Errorf("save tracking steps: %w", err)
	}
	return nil
}

// appendTransactions inserts the transactions newer than the stored ones.
// txns is newest first; the oldest transaction has seq 0.
func appendTransactions(tx *gorm.DB, merchantID string, txns []ledger.Transaction) error {
	var maxSeq sql.NullInt64
	err := tx.Model(&models.Transaction{}).
		Select("MAX(seq)").
		Where("merchant_id = ?", merchantID).
		Row().Scan(&maxSeq)
	if err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	from := 0
	if maxSeq.Valid {
		from = int(maxSeq.Int64) + 1
	}

	m := len(txns)
	if from > m {
		if err := tx.Where("merchant_id = ?", merchantID).Delete(&models.Transaction{}).Error; err != nil {
			return fmt.Errorf("reset transactions: %w", err)
		}
		from = 0
	}
	rows := make([]models.Transaction, 0, m-from)
	for seq := from; seq < m; seq++ {
		rows = append(rows, txToRow(merchantID, seq, txns[m-1-seq]))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	return nil
}

// Purge removes every ledger row of a merchant.
func (s *LedgerStore) Purge(ctx context.Context, merchantID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return clearLedger(tx, merchantID)
	})
}
