package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharges(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		weight   string
		delivery float64
		cod      float64
		net      float64
	}{
		{"one kg", 1000, "1", 80, 10, 910},
		{"two and a half kg", 1000, "2.5", 120, 10, 870},
		{"exactly two kg", 500, "2", 100, 5, 395},
		{"light parcel", 200, "0.3", 80, 2, 118},
		{"empty weight", 1000, "", 80, 10, 910},
		{"garbage weight", 1000, "abc", 80, 10, 910},
		{"negative weight", 1000, "-3", 80, 10, 910},
		{"NaN weight", 1000, "NaN", 80, 10, 910},
		{"small order goes negative", 50, "1", 80, 0.5, -30.5},
		{"zero amount", 0, "1", 80, 0, -80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Charges(tt.amount, tt.weight)
			assert.InDelta(t, tt.delivery, b.Delivery, 1e-9)
			assert.InDelta(t, tt.cod, b.COD, 1e-9)
			assert.InDelta(t, tt.net, b.Net, 1e-9)
			assert.InDelta(t, tt.amount-tt.delivery, b.Subtotal, 1e-9)
			assert.InDelta(t, tt.net, NetAmount(tt.amount, tt.weight), 1e-9)
		})
	}
}

func TestParseWeight(t *testing.T) {
	assert.Equal(t, 2.5, ParseWeight(" 2.5 "))
	assert.Equal(t, DefaultWeight, ParseWeight("0"))
	assert.Equal(t, DefaultWeight, ParseWeight("Inf"))
	assert.Equal(t, DefaultWeight, ParseWeight("1kg"))
}

func TestRevenueDelta(t *testing.T) {
	tests := []struct {
		name     string
		from, to Status
		want     float64
	}{
		{"revenue to revenue corrects", StatusDelivered, StatusPaid, 50},
		{"into revenue adds new net", StatusPending, StatusDelivered, 600},
		{"out of revenue reverses old net", StatusPaid, StatusReturned, -550},
		{"outside revenue is neutral", StatusHold, StatusCancelled, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RevenueDelta(tt.from, tt.to, 550, 600))
		})
	}
}
