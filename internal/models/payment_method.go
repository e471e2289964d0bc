package models

import "time"

// PaymentMethod is a payout destination saved by the merchant.
type PaymentMethod struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Type   string `gorm:"size:16;not null" json:"type"` // Bank / Mobile Banking / Cash
	Label  string `gorm:"size:64" json:"label,omitempty"`

	BankName      string `gorm:"size:64" json:"bank_name,omitempty"`
	AccountName   string `gorm:"size:64" json:"account_name,omitempty"`
	AccountNumber string `gorm:"size:64" json:"account_number,omitempty"`
	BranchName    string `gorm:"size:64" json:"branch_name,omitempty"`
	RoutingNo     string `gorm:"size:32" json:"routing_no,omitempty"`

	Provider     string `gorm:"size:16" json:"provider,omitempty"` // bKash / Rocket / Nagad
	MobileNumber string `gorm:"size:32" json:"mobile_number,omitempty"`

	Note      string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
