package service

import (
	"errors"

	"boardmart/internal/domain"
	"boardmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService owns the three per-user balances. Every mutation goes through
// Credit/Debit so the non-negative invariant and the ledger stay intact;
// nothing else writes wallet rows.
type WalletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// Credit adds to a balance. reference makes the operation idempotent: a
// second call with the same reference is a no-op returning nil.
func (s *WalletService) Credit(userID uint, kind string, amountKobo int64, txType, reference string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(tx, userID, kind, amountKobo, txType, reference)
	})
}

// CreditTx is Credit inside a caller-owned transaction, so reward claims and
// payment verification can make the ledger write part of their atomic unit.
func (s *WalletService) CreditTx(tx *gorm.DB, userID uint, kind string, amountKobo int64, txType, reference string) error {
	if !domain.ValidWalletKind(kind) {
		return ErrUnknownWallet
	}
	if amountKobo <= 0 {
		return ErrInvalidAmount
	}
	if reference != "" {
		var count int64
		if err := tx.Model(&models.WalletTransaction{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil // already applied
		}
	}
	if err := ensureWallet(tx, userID, kind); err != nil {
		return err
	}
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		UpdateColumn("balance_kobo", gorm.Expr("balance_kobo + ?", amountKobo))
	if res.Error != nil {
		return res.Error
	}
	err := tx.Create(&models.WalletTransaction{
		UserID:     userID,
		Kind:       kind,
		AmountKobo: amountKobo,
		Type:       txType,
		Reference:  reference,
	}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race against a concurrent apply of the same reference.
		// Returning an error rolls this unit back; the winner's credit stands.
		return ErrDuplicateRef
	}
	return err
}

// Debit removes from a balance, failing with ErrInsufficientFunds when the
// balance cannot cover the amount. The conditional UPDATE serializes
// concurrent debits at the storage layer: only debits the balance covers win.
func (s *WalletService) Debit(userID uint, kind string, amountKobo int64, txType, reference string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DebitTx(tx, userID, kind, amountKobo, txType, reference)
	})
}

func (s *WalletService) DebitTx(tx *gorm.DB, userID uint, kind string, amountKobo int64, txType, reference string) error {
	if !domain.ValidWalletKind(kind) {
		return ErrUnknownWallet
	}
	if amountKobo <= 0 {
		return ErrInvalidAmount
	}
	if reference != "" {
		var count int64
		if err := tx.Model(&models.WalletTransaction{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
	}
	if err := ensureWallet(tx, userID, kind); err != nil {
		return err
	}
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND kind = ? AND balance_kobo >= ?", userID, kind, amountKobo).
		UpdateColumn("balance_kobo", gorm.Expr("balance_kobo - ?", amountKobo))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	err := tx.Create(&models.WalletTransaction{
		UserID:     userID,
		Kind:       kind,
		AmountKobo: -amountKobo,
		Type:       txType,
		Reference:  reference,
	}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateRef
	}
	return err
}

// ensureWallet inserts the zero-balance row for (user, kind) if missing.
func ensureWallet(tx *gorm.DB, userID uint, kind string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Wallet{UserID: userID, Kind: kind, Currency: "NGN"}).Error
}

// Balances returns all three balances, zero for wallets never touched.
func (s *WalletService) Balances(userID uint) (map[string]int64, error) {
	var rows []models.Wallet
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(domain.WalletKinds))
	for _, kind := range domain.WalletKinds {
		out[kind] = 0
	}
	for _, w := range rows {
		out[w.Kind] = w.BalanceKobo
	}
	return out, nil
}

// Balance returns one wallet's balance (zero if the row doesn't exist yet).
func (s *WalletService) Balance(userID uint, kind string) (int64, error) {
	if !domain.ValidWalletKind(kind) {
		return 0, ErrUnknownWallet
	}
	var w models.Wallet
	err := s.db.Where("user_id = ? AND kind = ?", userID, kind).First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return w.BalanceKobo, nil
}

// Transactions returns the user's ledger history, newest first.
func (s *WalletService) Transactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var list []models.WalletTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
