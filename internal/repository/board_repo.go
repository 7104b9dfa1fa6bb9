package repository

import (
	"boardmart/internal/models"

	"gorm.io/gorm"
)

type BoardRepository struct {
	db *gorm.DB
}

func NewBoardRepository(db *gorm.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

func (r *BoardRepository) GetProgress(userID uint, boardType string) (*models.BoardProgress, error) {
	var p models.BoardProgress
	err := r.db.Where("user_id = ? AND board_type = ?", userID, boardType).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProgress returns every board the user has entered, with filled slots preloaded.
func (r *BoardRepository) ListProgress(userID uint) ([]models.BoardProgress, error) {
	var list []models.BoardProgress
	err := r.db.Where("user_id = ?", userID).
		Preload("Referrals").
		Order("id ASC").
		Find(&list).Error
	return list, err
}

// ListReferrals returns the filled slots of one board, optionally one slot kind.
func (r *BoardRepository) ListReferrals(progressID uint, slot string) ([]models.BoardReferral, error) {
	q := r.db.Where("board_progress_id = ?", progressID)
	if slot != "" {
		q = q.Where("slot = ?", slot)
	}
	var list []models.BoardReferral
	err := q.Preload("ReferredUser").Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *BoardRepository) ListCompletions(userID uint) ([]models.BoardCompletion, error) {
	var list []models.BoardCompletion
	err := r.db.Where("user_id = ?", userID).Order("completed_at ASC").Find(&list).Error
	return list, err
}

func (r *BoardRepository) CountCompletions(boardType string) (int64, error) {
	var count int64
	q := r.db.Model(&models.BoardCompletion{})
	if boardType != "" {
		q = q.Where("board_type = ?", boardType)
	}
	err := q.Count(&count).Error
	return count, err
}
