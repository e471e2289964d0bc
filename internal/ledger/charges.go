package ledger

import (
	"math"
	"strconv"
	"strings"
)

const (
	BaseDeliveryCharge = 80.0
	ExtraKgCharge      = 20.0
	CODRate            = 0.01
	DefaultWeight      = 0.5
)

// Breakdown is the per-parcel charge calculation shown on invoices.
type Breakdown struct {
	Amount   float64 `json:"amount"`
	Weight   float64 `json:"weight"`
	Delivery float64 `json:"delivery_charge"`
	Subtotal float64 `json:"subtotal"`
	COD      float64 `json:"cod_charge"`
	Net      float64 `json:"net"`
}

// ParseWeight reads a weight in kg. Unparsable, non-finite or
// non-positive input falls back to DefaultWeight.
func ParseWeight(s string) float64 {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
		return DefaultWeight
	}
	return w
}

// DeliveryCharge is 80 for the first kg plus 20 per started extra kg.
func DeliveryCharge(weight float64) float64 {
	extra := math.Max(0, math.Ceil(weight-1))
	return BaseDeliveryCharge + extra*ExtraKgCharge
}

// Charges computes the full breakdown for an order. The net may be
// negative for small orders.
func Charges(amount float64, weight string) Breakdown {
	w := ParseWeight(weight)
	delivery := DeliveryCharge(w)
	cod := amount * CODRate
	return Breakdown{
		Amount:   amount,
		Weight:   w,
		Delivery: delivery,
		Subtotal: amount - delivery,
		COD:      cod,
		Net:      amount - delivery - cod,
	}
}

// NetAmount is what the merchant receives for a delivered order.
func NetAmount(amount float64, weight string) float64 {
	return Charges(amount, weight).Net
}

// RevenueDelta returns the balance change when a parcel moves from the
// old status/net to the new one.
func RevenueDelta(oldStatus, newStatus Status, oldNet, newNet float64) float64 {
	was, is := oldStatus.IsRevenue(), newStatus.IsRevenue()
	switch {
	case was && is:
		return newNet - oldNet
	case !was && is:
		return newNet
	case was && !is:
		return -oldNet
	default:
		return 0
	}
}
