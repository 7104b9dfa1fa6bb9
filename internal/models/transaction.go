package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is the payment ledger entry tracking a charge from
// initialization through gateway verification. Status moves one way:
// pending -> successful | failed | cancelled, never back.
type Transaction struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	TransactionID   string         `gorm:"size:64;uniqueIndex;not null" json:"transaction_id"`
	Reference       string         `gorm:"size:64;uniqueIndex;not null" json:"reference"` // gateway-facing reference
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	AmountKobo      int64          `gorm:"not null" json:"amount_kobo"`
	Currency        string         `gorm:"size:3;default:'NGN'" json:"currency"`
	PlanType        string         `gorm:"size:30;not null;index" json:"plan_type"` // registration | wallet_funding | wallet_withdraw | order
	WalletKind      string         `gorm:"size:10" json:"wallet_kind"`              // for wallet_funding / wallet_withdraw
	Status          string         `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	PaymentStatus   string         `gorm:"size:30" json:"payment_status"` // gateway-reported state, verbatim
	GatewayResponse string         `gorm:"type:text" json:"-"`            // raw verification payload
	Metadata        string         `gorm:"type:text" json:"metadata,omitempty"` // JSON, e.g. {"order_number": "..."}
	CheckoutURL     string         `gorm:"size:512" json:"checkout_url"`
	PaidAt          *time.Time     `json:"paid_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
