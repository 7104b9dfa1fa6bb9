package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet is one balance row per (user, kind). Balances only move through the
// wallet service's credit/debit operations and never go negative.
type Wallet struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;uniqueIndex:idx_wallets_user_kind" json:"user_id"`
	Kind        string         `gorm:"size:10;not null;uniqueIndex:idx_wallets_user_kind" json:"kind"` // food | gadget | cash
	BalanceKobo int64          `gorm:"not null;default:0" json:"balance_kobo"`
	Currency    string         `gorm:"size:3;default:'NGN'" json:"currency"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
