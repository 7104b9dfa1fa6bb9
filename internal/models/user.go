package models

import (
	"time"

	"boardmart/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string         `gorm:"size:20" json:"phone"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // MEMBER | ADMIN
	Status       string         `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	ReferralCode string         `gorm:"uniqueIndex;size:20;not null" json:"referral_code"`
	ReferredByID *uint          `gorm:"index" json:"referred_by_id"` // set once at creation, never changed
	CurrentBoard string         `gorm:"size:10;not null;default:'bronze'" json:"current_board"`
	CurrentPlan  string         `gorm:"size:30" json:"current_plan"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Legacy columns kept only so the migration batch can fold them into the
	// wallets and board_progresses tables. Nil/empty once migrated.
	LegacyFoodEarningsKobo   *int64 `gorm:"column:legacy_food_earnings_kobo" json:"-"`
	LegacyGadgetEarningsKobo *int64 `gorm:"column:legacy_gadget_earnings_kobo" json:"-"`
	LegacyCashEarningsKobo   *int64 `gorm:"column:legacy_cash_earnings_kobo" json:"-"`
	LegacyBoardData          string `gorm:"column:legacy_board_data;type:text" json:"-"`

	ReferredBy *User `gorm:"foreignKey:ReferredByID" json:"-"`
}

func (u *User) IsAdmin() bool  { return u.Role == domain.RoleAdmin }
func (u *User) IsActive() bool { return u.Status == domain.UserStatusActive }
