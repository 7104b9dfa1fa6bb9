package repository

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"boardmart/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// generateReferralCode returns an 8-character uppercase hex code.
func generateReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create inserts a user, assigning a unique referral code with collision retries.
func (r *UserRepository) Create(u *models.User) error {
	if u.ReferralCode != "" {
		return r.db.Create(u).Error
	}
	for i := 0; i < 10; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return err
		}
		u.ReferralCode = code
		err = r.db.Create(u).Error
		if err == nil {
			return nil
		}
		if !isDuplicate(err) {
			return err
		}
		// Could be a username/email dup rather than a code collision; a code
		// retry on those would loop forever, so stop if code wasn't the issue.
		var count int64
		r.db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count)
		if count == 0 {
			return err
		}
	}
	return fmt.Errorf("failed to generate a unique referral code after retries")
}

func isDuplicate(err error) bool {
	return err == gorm.ErrDuplicatedKey || strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE")
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByReferralCode resolves a submitted referral code, case-insensitively.
func (r *UserRepository) GetByReferralCode(code string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("referral_code = ?", strings.ToUpper(code)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

// List returns users for the admin screen, newest first.
func (r *UserRepository) List(limit, offset int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// ListReferredBy returns the users directly referred by the given user.
func (r *UserRepository) ListReferredBy(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("referred_by_id = ?", userID).Order("created_at ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
