package models

import "time"

// Session backs one issued JWT; revoking it logs the token out.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // uuid, also the JWT id
	UserID    uint      `gorm:"index;not null"`
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time
}
