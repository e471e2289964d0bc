package store

import (
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
)

func parcelToRow(merchantID string, seq int, p ledger.Parcel) models.Parcel {
	return models.Parcel{
		MerchantID:   merchantID,
		ID:           p.ID,
		Seq:          seq,
		CustomerName: p.CustomerName,
		Phone:        p.Phone,
		Address:      p.Address,
		Amount:       p.Amount,
		Weight:       p.Weight,
		Exchange:     p.Exchange,
		Note:         p.Note,
		Type:         p.Type,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}

func parcelFromRow(r *models.Parcel) ledger.Parcel {
	return ledger.Parcel{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
		Address:      r.Address,
		Amount:       r.Amount,
		Weight:       r.Weight,
		Exchange:     r.Exchange,
		Note:         r.Note,
		Type:         r.Type,
		Status:       ledger.Status(r.Status),
		CreatedAt:    r.CreatedAt,
	}
}

func stepToRow(merchantID, parcelID string, seq int, s ledger.TrackingStep) models.TrackingStep {
	return models.TrackingStep{
		MerchantID:   merchantID,
		ParcelID:     parcelID,
		Seq:          seq,
		Status:       s.Status,
		Description:  s.Description,
		Location:     s.Location,
		Timestamp:    s.Timestamp,
		HandlerName:  s.HandlerName,
		HandlerPhone: s.HandlerPhone,
		HubPhone:     s.HubPhone,
	}
}

func stepFromRow(r *models.TrackingStep) ledger.TrackingStep {
	return ledger.TrackingStep{
		Status:       r.Status,
		Description:  r.Description,
		Location:     r.Location,
		Timestamp:    r.Timestamp,
		HandlerName:  r.HandlerName,
		HandlerPhone: r.HandlerPhone,
		HubPhone:     r.HubPhone,
	}
}

func txToRow(merchantID string, seq int, t ledger.Transaction) models.Transaction {
	return models.Transaction{
		MerchantID: merchantID,
		Seq:        seq,
		TxID:       t.ID,
		Type:       string(t.Type),
		Amount:     t.Amount,
		Method:     t.Method,
		Status:     string(t.Status),
		Timestamp:  t.Timestamp,
		Note:       t.Note,
	}
}

func txFromRow(r *models.Transaction) ledger.Transaction {
	return ledger.Transaction{
		ID:        r.TxID,
		Type:      ledger.TransactionType(r.Type),
		Amount:    r.Amount,
		Method:    r.Method,
		Status:    ledger.TransactionStatus(r.Status),
		Timestamp: r.Timestamp,
		Note:      r.Note,
	}
}

// sameParcel compares stored columns. Timestamps are compared to the
// microsecond, the precision postgres keeps.
func sameParcel(a, b models.Parcel) bool {
	d := a.CreatedAt.Sub(b.CreatedAt)
	if d < 0 {
		d = -d
	}
	return a.Seq == b.Seq &&
		a.CustomerName == b.CustomerName &&
		a.Phone == b.Phone &&
		a.Address == b.Address &&
		a.Amount == b.Amount &&
		a.Weight == b.Weight &&
		a.Exchange == b.Exchange &&
		a.Note == b.Note &&
		a.Type == b.Type &&
		a.Status == b.Status &&
		d < time.Microsecond
}
