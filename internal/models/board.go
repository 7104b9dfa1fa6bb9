package models

import (
	"time"

	"gorm.io/gorm"
)

// BoardProgress is the mutable projection of a user's standing on one tier.
// At most one row per (user, boardType). Completed never reverts to false.
type BoardProgress struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_board_user_type" json:"user_id"`
	BoardType      string         `gorm:"size:10;not null;uniqueIndex:idx_board_user_type" json:"board_type"`
	DirectCount    int            `gorm:"not null;default:0" json:"direct_count"`
	IndirectCount  int            `gorm:"not null;default:0" json:"indirect_count"`
	Completed      bool           `gorm:"not null;default:false" json:"completed"`
	CompletedAt    *time.Time     `json:"completed_at"`
	RewardsClaimed bool           `gorm:"not null;default:false" json:"rewards_claimed"`
	ClaimedOption  string         `gorm:"size:20" json:"claimed_option"`
	ClaimedAt      *time.Time     `json:"claimed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User      User            `gorm:"foreignKey:UserID" json:"-"`
	Referrals []BoardReferral `gorm:"foreignKey:BoardProgressID" json:"referrals,omitempty"`
}

func (BoardProgress) TableName() string { return "board_progresses" }

// BoardReferral is one filled slot on a board. The unique index gives the
// direct/indirect collections set semantics: placing the same user into the
// same board twice is a no-op.
type BoardReferral struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BoardProgressID uint      `gorm:"not null;uniqueIndex:idx_board_referral" json:"board_progress_id"`
	ReferredUserID  uint      `gorm:"not null;uniqueIndex:idx_board_referral" json:"referred_user_id"`
	Slot            string    `gorm:"size:10;not null" json:"slot"` // direct | indirect
	CreatedAt       time.Time `json:"created_at"`

	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (BoardReferral) TableName() string { return "board_referrals" }

// BoardCompletion is the permanent audit record written exactly once when a
// board completes. Immutable after creation; the claim flow never edits it.
type BoardCompletion struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	BoardType        string    `gorm:"size:10;not null" json:"board_type"`
	DirectCount      int       `gorm:"not null" json:"direct_count"`
	IndirectCount    int       `gorm:"not null" json:"indirect_count"`
	EarningsSnapshot string    `gorm:"type:text" json:"earnings_snapshot"` // JSON reward table at completion time
	CompletedAt      time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt        time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BoardCompletion) TableName() string { return "board_completions" }
