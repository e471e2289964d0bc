package util

import "github.com/shopspring/decimal"

// FormatMoney renders an amount with two decimals, e.g. 712.5 -> "712.50".
func FormatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundMoney rounds half away from zero to two decimals.
func RoundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
