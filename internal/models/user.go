package models

import "time"

// User is a merchant account: login credentials, shop profile and the
// persisted ledger balance.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	MerchantID   string `gorm:"size:16;uniqueIndex;not null"` // MID-xxxxx
	Email        string `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	Name                 string `gorm:"size:64"`
	ShopName             string `gorm:"size:128"`
	Phone                string `gorm:"size:32"`
	ContactNumber        string `gorm:"size:32"`
	Address              string `gorm:"size:255"`
	BusinessType         string `gorm:"size:64"`
	Website              string `gorm:"size:255"`
	PickupMode           string `gorm:"size:32"`
	DefaultPaymentMethod string `gorm:"size:64"`

	// Balance is written only by the ledger store.
	Balance float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	FailedLoginAttempts int        `gorm:"default:0"` // 连续登录失败次数
	LockedUntil         *time.Time `gorm:"index"`     // 账户锁定到期时间
	LastLoginAt         *time.Time // 最近登录时间
	LastLoginIP         string     `gorm:"size:64"`

	DeletedAt           *time.Time `gorm:"index"` // 注销时间（非 nil 表示已注销）
	DeletePermanentlyAt *time.Time `gorm:"index"` // 永久删除时间（注销 + 7 天）
}
