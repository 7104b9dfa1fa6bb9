package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletTransaction is the append-only ledger behind every balance change.
// Reference is the idempotency key: a credit triggered by a payment uses
// txn_<transactionID>, a board claim uses board_claim_<progressID>, so a
// replayed trigger can never apply twice.
type WalletTransaction struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Kind       string         `gorm:"size:10;not null" json:"kind"`
	AmountKobo int64          `gorm:"not null" json:"amount_kobo"` // positive = credit, negative = debit
	Type       string         `gorm:"size:30;not null;index" json:"type"`
	Reference  string         `gorm:"size:128;uniqueIndex" json:"reference"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
