package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"boardmart/config"
	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/pkg/payment"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService tracks the life of a charge: pending at initialization,
// finalized exactly once by gateway verification. Terminal transactions are
// immutable; replayed callbacks are no-ops.
type PaymentService struct {
	db       *gorm.DB
	provider payment.Provider
	wallets  *WalletService
	cfg      *config.PaystackConfig
}

func NewPaymentService(db *gorm.DB, provider payment.Provider, wallets *WalletService, cfg *config.PaystackConfig) *PaymentService {
	return &PaymentService{db: db, provider: provider, wallets: wallets, cfg: cfg}
}

func newReference() string {
	return "bm_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Initialize creates a pending transaction and asks the gateway for a
// checkout URL. A gateway failure marks the transaction failed (kept for
// audit) and surfaces as payment.ErrGateway.
func (s *PaymentService) Initialize(ctx context.Context, userID uint, amountKobo int64, planType, walletKind, metadata string) (*models.Transaction, error) {
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	switch planType {
	case domain.PlanTypeRegistration, domain.PlanTypeOrder:
	case domain.PlanTypeWalletFunding:
		if !domain.ValidWalletKind(walletKind) {
			return nil, ErrUnknownWallet
		}
	default:
		return nil, fmt.Errorf("%w: unknown plan type %q", ErrValidation, planType)
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		Reference:     newReference(),
		UserID:        userID,
		AmountKobo:    amountKobo,
		Currency:      "NGN",
		PlanType:      planType,
		WalletKind:    walletKind,
		Status:        domain.TxnStatusPending,
		Metadata:      metadata,
	}
	if err := s.db.Create(txn).Error; err != nil {
		return nil, err
	}

	resp, err := s.provider.InitializeCharge(ctx, payment.ChargeRequest{
		Reference:   txn.Reference,
		Email:       user.Email,
		AmountKobo:  amountKobo,
		Currency:    txn.Currency,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: map[string]interface{}{
			"transaction_id": txn.TransactionID,
			"plan_type":      planType,
		},
	})
	if err != nil {
		// keep the failed attempt auditable
		s.db.Model(txn).
			Where("status = ?", domain.TxnStatusPending).
			Updates(map[string]interface{}{"status": domain.TxnStatusFailed, "payment_status": "initialize_error"})
		log.Printf("[payment] initialize failed ref=%s user=%d: %v", txn.Reference, userID, err)
		return nil, err
	}
	txn.CheckoutURL = resp.CheckoutURL
	if err := s.db.Model(txn).Update("checkout_url", resp.CheckoutURL).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// Verify looks up a transaction by gateway reference, confirms the status
// with the gateway, and applies the side effect once. Verifying an
// already-successful transaction returns the same result with no side
// effects; unknown references return ErrNotFound.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction reference %q", ErrNotFound, reference)
		}
		return nil, err
	}
	if domain.TxnStatusTerminal(txn.Status) {
		return &txn, nil
	}

	vr, err := s.provider.VerifyCharge(ctx, reference)
	if err != nil {
		// gateway unreachable or malformed: transaction stays pending and the
		// same verify path is safe to retry
		return &txn, err
	}
	if !vr.Succeeded() {
		if vr.Status == "failed" || vr.Status == "abandoned" || vr.Status == "reversed" {
			s.db.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", txn.ID, domain.TxnStatusPending).
				Updates(map[string]interface{}{
					"status":           domain.TxnStatusFailed,
					"payment_status":   vr.Status,
					"gateway_response": string(vr.Raw),
				})
		}
		return s.reload(txn.ID)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, domain.TxnStatusPending).
			Updates(map[string]interface{}{
				"status":           domain.TxnStatusSuccessful,
				"payment_status":   vr.Status,
				"paid_at":          now,
				"gateway_response": string(vr.Raw),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // a concurrent verify applied it first
		}
		return s.applySideEffect(tx, &txn)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(txn.ID)
}

// applySideEffect runs inside the same transaction that finalizes the ledger
// entry, so a failed credit rolls the status change back too.
func (s *PaymentService) applySideEffect(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.PlanType {
	case domain.PlanTypeWalletFunding:
		ref := "txn_" + txn.TransactionID
		return s.wallets.CreditTx(tx, txn.UserID, txn.WalletKind, txn.AmountKobo, domain.WalletTxTypeFunding, ref)
	case domain.PlanTypeRegistration:
		return tx.Model(&models.User{}).
			Where("id = ?", txn.UserID).
			Updates(map[string]interface{}{
				"status":       domain.UserStatusActive,
				"current_plan": domain.PlanTypeRegistration,
			}).Error
	}
	// order payments need no extra ledger work here; the order row already
	// carries the captured totals
	return nil
}

func (s *PaymentService) reload(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.First(&txn, id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// RequestWithdrawal debits the wallet up front and opens a pending
// wallet_withdraw transaction for admin settlement. The debit and the ledger
// entry commit together.
func (s *PaymentService) RequestWithdrawal(userID uint, kind string, amountKobo int64) (*models.Transaction, error) {
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	if !domain.ValidWalletKind(kind) {
		return nil, ErrUnknownWallet
	}
	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		Reference:     newReference(),
		UserID:        userID,
		AmountKobo:    amountKobo,
		Currency:      "NGN",
		PlanType:      domain.PlanTypeWalletWithdraw,
		WalletKind:    kind,
		Status:        domain.TxnStatusPending,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return s.wallets.DebitTx(tx, userID, kind, amountKobo, domain.WalletTxTypeWithdrawal, "withdraw_"+txn.TransactionID)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// SettleWithdrawal finalizes a pending withdrawal: approve marks it
// successful; reject cancels it and refunds the debit idempotently.
func (s *PaymentService) SettleWithdrawal(txnID string, approve bool) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("transaction_id = ? AND plan_type = ?", txnID, domain.PlanTypeWalletWithdraw).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: withdrawal %q", ErrNotFound, txnID)
		}
		return nil, err
	}
	if domain.TxnStatusTerminal(txn.Status) {
		return nil, fmt.Errorf("%w: withdrawal %q already %s", ErrConflict, txnID, txn.Status)
	}
	target := domain.TxnStatusSuccessful
	if !approve {
		target = domain.TxnStatusCancelled
	}
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", txn.ID, domain.TxnStatusPending).
			Updates(map[string]interface{}{"status": target, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: withdrawal %q already settled", ErrConflict, txnID)
		}
		if !approve {
			return s.wallets.CreditTx(tx, txn.UserID, txn.WalletKind, txn.AmountKobo,
				domain.WalletTxTypeRefund, "withdraw_refund_"+txn.TransactionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(txn.ID)
}
