package models

import "time"

// Transaction is a stored balance event. TxID may repeat (it is derived
// from the millisecond clock), so rows are keyed by (merchant, seq).
type Transaction struct {
	ID         uint      `gorm:"primaryKey"`
	MerchantID string    `gorm:"size:16;uniqueIndex:idx_tx_pos;not null"`
	Seq        int       `gorm:"uniqueIndex:idx_tx_pos;not null"`
	TxID       string    `gorm:"size:32;index"`
	Type       string    `gorm:"size:16;index;not null"` // Top-up / Withdrawal / Order Income / Charge
	Amount     float64   `gorm:"not null"`
	Method     string    `gorm:"size:32"`
	Status     string    `gorm:"size:16;not null"`
	Timestamp  time.Time `gorm:"index"`
	Note       string    `gorm:"size:255"`
}
