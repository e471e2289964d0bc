package models

import "time"

// Parcel is the stored form of a ledger parcel. IDs are unique per merchant.
// Seq orders parcels oldest (0) to newest.
type Parcel struct {
	MerchantID   string  `gorm:"primaryKey;size:16"`
	ID           string  `gorm:"primaryKey;size:32"`
	Seq          int     `gorm:"index;not null"`
	CustomerName string  `gorm:"size:128"`
	Phone        string  `gorm:"size:32"`
	Address      string  `gorm:"size:512"`
	Amount       float64 `gorm:"not null"`
	Weight       string  `gorm:"size:16"`
	Exchange     bool
	Note         string `gorm:"size:512"`
	Type         string `gorm:"size:16"`
	Status       string `gorm:"size:32;index;not null"`
	CreatedAt    time.Time
}

// TrackingStep is one row of a parcel's history; Seq is its position.
type TrackingStep struct {
	ID           uint   `gorm:"primaryKey"`
	MerchantID   string `gorm:"size:16;uniqueIndex:idx_step_pos;not null"`
	ParcelID     string `gorm:"size:32;uniqueIndex:idx_step_pos;not null"`
	Seq          int    `gorm:"uniqueIndex:idx_step_pos;not null"`
	Status       string `gorm:"size:32;not null"`
	Description  string `gorm:"size:512"`
	Location     string `gorm:"size:255"`
	Timestamp    time.Time
	HandlerName  string `gorm:"size:64"`
	HandlerPhone string `gorm:"size:32"`
	HubPhone     string `gorm:"size:32"`
}
