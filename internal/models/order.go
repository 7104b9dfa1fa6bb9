package models

import (
	"time"

	"gorm.io/gorm"
)

// Order captures a checkout. Items carry price/name/image snapshots so later
// catalog edits do not rewrite order history. Shipping and pickup fields are
// mutually exclusive by DeliveryMethod.
type Order struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrderNumber    string         `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	SubtotalKobo   int64          `gorm:"not null" json:"subtotal_kobo"`
	DeliveryKobo   int64          `gorm:"not null;default:0" json:"delivery_kobo"`
	TotalKobo      int64          `gorm:"not null" json:"total_kobo"`
	PaymentMethod  string         `gorm:"size:20;not null" json:"payment_method"` // food_wallet | gadget_wallet | cash_wallet | paystack
	DeliveryMethod string         `gorm:"size:10;not null" json:"delivery_method"` // shipping | pickup
	ShippingName   string         `gorm:"size:128" json:"shipping_name,omitempty"`
	ShippingAddr   string         `gorm:"size:512" json:"shipping_addr,omitempty"`
	ShippingCity   string         `gorm:"size:64" json:"shipping_city,omitempty"`
	ShippingPhone  string         `gorm:"size:20" json:"shipping_phone,omitempty"`
	PickupLocation string         `gorm:"size:255" json:"pickup_location,omitempty"`
	Status         string         `gorm:"size:20;not null;index;default:'processing'" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	OrderID   uint   `gorm:"not null;index" json:"order_id"`
	ProductID uint   `gorm:"not null" json:"product_id"`
	Name      string `gorm:"size:255;not null" json:"name"`      // snapshot
	PriceKobo int64  `gorm:"not null" json:"price_kobo"`          // snapshot
	ImageURL  string `gorm:"size:512" json:"image_url"`           // snapshot
	Quantity  int    `gorm:"not null" json:"quantity"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (OrderItem) TableName() string { return "order_items" }
