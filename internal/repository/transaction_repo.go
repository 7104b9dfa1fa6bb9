package repository

import (
	"boardmart/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReference(ref string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Where("reference = ?", ref).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByTransactionID(txnID string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Where("transaction_id = ?", txnID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) Update(t *models.Transaction) error {
	return r.db.Save(t).Error
}

func (r *TransactionRepository) ListByUser(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *TransactionRepository) ListByStatusAndPlanType(status, planType string, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("status = ? AND plan_type = ?", status, planType).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// SumSuccessfulKobo totals confirmed payments, optionally narrowed to one plan type.
func (r *TransactionRepository) SumSuccessfulKobo(planType string) (int64, error) {
	var total int64
	q := r.db.Model(&models.Transaction{}).Where("status = ?", "successful")
	if planType != "" {
		q = q.Where("plan_type = ?", planType)
	}
	err := q.Select("COALESCE(SUM(amount_kobo),0)").Scan(&total).Error
	return total, err
}
