package models

import "time"

// Snapshot points at an encrypted ledger state file on disk.
type Snapshot struct {
	ID          uint    `gorm:"primaryKey"`
	UserID      uint    `gorm:"index;not null"`
	FileName    string  `gorm:"size:255;not null"`
	FilePath    string  `gorm:"size:512;not null"`
	Size        int64   `gorm:"not null"`
	ParcelCount int     `gorm:"not null"`
	Balance     float64 `gorm:"not null"`
	CreatedAt   time.Time
}
