package events

import (
	"context"
	"errors"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
)

// Type names a ledger event.
type Type string

const (
	ParcelCreated       Type = "parcel.created"
	ParcelUpdated       Type = "parcel.updated"
	ParcelDeleted       Type = "parcel.deleted"
	ParcelStatusChanged Type = "parcel.status_changed"
	SettlementCompleted Type = "settlement.completed"
	BalanceToppedUp     Type = "balance.topped_up"
	LedgerRestored      Type = "ledger.restored"
)

// Event is published after a ledger mutation has been persisted.
type Event struct {
	Type        Type                `json:"type"`
	MerchantID  string              `json:"merchant_id"`
	ParcelID    string              `json:"parcel_id,omitempty"`
	Status      ledger.Status       `json:"status,omitempty"`
	PrevStatus  ledger.Status       `json:"prev_status,omitempty"`
	Delta       float64             `json:"delta"`
	Balance     float64             `json:"balance"`
	Transaction *ledger.Transaction `json:"transaction,omitempty"`
	ParcelIDs   []string            `json:"parcel_ids,omitempty"`
	At          time.Time           `json:"at"`
}

// Publisher delivers events to an outside consumer.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout publishes to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
