package models

import "time"

type PickupRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"-"`
	ContactName  string    `gorm:"size:64;not null" json:"contact_name"`
	Phone        string    `gorm:"size:32;not null" json:"phone"`
	Address      string    `gorm:"size:255;not null" json:"address"`
	PickupDate   time.Time `gorm:"index;not null" json:"pickup_date"`
	TimeSlot     string    `gorm:"size:16;not null" json:"time_slot"` // Morning / Afternoon / Evening
	Instructions string    `gorm:"size:512" json:"instructions,omitempty"`
	Status       string    `gorm:"size:16;not null;default:Requested" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
