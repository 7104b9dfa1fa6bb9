package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"boardmart/config"
	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider scripts gateway answers per test.
type fakeProvider struct {
	verifyStatus string
	verifyErr    error
	initErr      error
}

func (f *fakeProvider) InitializeCharge(_ context.Context, req payment.ChargeRequest) (*payment.ChargeResponse, error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &payment.ChargeResponse{
		Reference:   req.Reference,
		CheckoutURL: "https://checkout.test/" + req.Reference,
	}, nil
}

func (f *fakeProvider) VerifyCharge(_ context.Context, _ string) (*payment.VerifyResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &payment.VerifyResponse{
		Status: f.verifyStatus,
		Raw:    json.RawMessage(`{"fake":true}`),
	}, nil
}

func newPaymentService(db *gorm.DB, provider payment.Provider) *PaymentService {
	return NewPaymentService(db, provider, NewWalletService(db), &config.PaystackConfig{CallbackURL: "https://app.test/callback"})
}

func TestInitializeCreatesPendingTransaction(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	svc := newPaymentService(db, &fakeProvider{verifyStatus: "success"})

	txn, err := svc.Initialize(context.Background(), u.ID, 10_000, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusPending, txn.Status)
	assert.NotEmpty(t, txn.Reference)
	assert.Contains(t, txn.CheckoutURL, txn.Reference)
}

func TestInitializeGatewayFailureKeptAuditable(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	svc := newPaymentService(db, &fakeProvider{initErr: payment.ErrGateway})

	_, err := svc.Initialize(context.Background(), u.ID, 10_000, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	assert.ErrorIs(t, err, payment.ErrGateway)

	var txn models.Transaction
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&txn).Error)
	assert.Equal(t, domain.TxnStatusFailed, txn.Status)
}

func TestInitializeRejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	svc := newPaymentService(db, &fakeProvider{})

	_, err := svc.Initialize(context.Background(), u.ID, 0, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.Initialize(context.Background(), u.ID, 1_000, domain.PlanTypeWalletFunding, "crypto", "")
	assert.ErrorIs(t, err, ErrUnknownWallet)
	_, err = svc.Initialize(context.Background(), u.ID, 1_000, "subscription", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVerifyFundingCreditsWalletOnce(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	svc := newPaymentService(db, &fakeProvider{verifyStatus: "success"})
	wallets := NewWalletService(db)

	txn, err := svc.Initialize(context.Background(), u.ID, 10_000, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusSuccessful, verified.Status)
	assert.NotNil(t, verified.PaidAt)

	balance, err := wallets.Balance(u.ID, domain.WalletFood)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), balance)

	// webhook and callback both verify; the second pass must change nothing
	again, err := svc.Verify(context.Background(), txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusSuccessful, again.Status)
	balance, err = wallets.Balance(u.ID, domain.WalletFood)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), balance)
}

func TestVerifyRegistrationActivatesUser(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "newbie")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("status", domain.UserStatusPending).Error)
	svc := newPaymentService(db, &fakeProvider{verifyStatus: "success"})

	txn, err := svc.Initialize(context.Background(), u.ID, 2_000_000, domain.PlanTypeRegistration, "", "")
	require.NoError(t, err)
	_, err = svc.Verify(context.Background(), txn.Reference)
	require.NoError(t, err)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, domain.UserStatusActive, fresh.Status)
	assert.Equal(t, domain.PlanTypeRegistration, fresh.CurrentPlan)
}

func TestVerifyFailedChargeNoCredit(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	svc := newPaymentService(db, &fakeProvider{verifyStatus: "failed"})
	wallets := NewWalletService(db)

	txn, err := svc.Initialize(context.Background(), u.ID, 10_000, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	require.NoError(t, err)

	verified, err := svc.Verify(context.Background(), txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusFailed, verified.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletFood)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestVerifyGatewayErrorLeavesPending(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "payer")
	okProvider := &fakeProvider{verifyStatus: "success"}
	svc := newPaymentService(db, okProvider)

	txn, err := svc.Initialize(context.Background(), u.ID, 10_000, domain.PlanTypeWalletFunding, domain.WalletFood, "")
	require.NoError(t, err)

	okProvider.verifyErr = errors.New("gateway down")
	_, err = svc.Verify(context.Background(), txn.Reference)
	assert.Error(t, err)

	var fresh models.Transaction
	require.NoError(t, db.First(&fresh, txn.ID).Error)
	assert.Equal(t, domain.TxnStatusPending, fresh.Status, "unreachable gateway must not finalize")

	// retry succeeds once the gateway answers
	okProvider.verifyErr = nil
	verified, err := svc.Verify(context.Background(), txn.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusSuccessful, verified.Status)
}

func TestVerifyUnknownReference(t *testing.T) {
	db := setupTestDB(t)
	svc := newPaymentService(db, &fakeProvider{verifyStatus: "success"})

	_, err := svc.Verify(context.Background(), "bm_nosuch")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithdrawalDebitsUpFront(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "saver")
	svc := newPaymentService(db, &fakeProvider{})
	wallets := NewWalletService(db)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 10_000, domain.WalletTxTypeFunding, "fund"))

	txn, err := svc.RequestWithdrawal(u.ID, domain.WalletCash, 4_000)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusPending, txn.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), balance)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "saver")
	svc := newPaymentService(db, &fakeProvider{})

	_, err := svc.RequestWithdrawal(u.ID, domain.WalletCash, 4_000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// nothing half-written
	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestWithdrawalRejectRefunds(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "saver")
	svc := newPaymentService(db, &fakeProvider{})
	wallets := NewWalletService(db)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 10_000, domain.WalletTxTypeFunding, "fund"))

	txn, err := svc.RequestWithdrawal(u.ID, domain.WalletCash, 4_000)
	require.NoError(t, err)

	settled, err := svc.SettleWithdrawal(txn.TransactionID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusCancelled, settled.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), balance, "rejection refunds the held amount")

	// settling twice conflicts and must not refund twice
	_, err = svc.SettleWithdrawal(txn.TransactionID, true)
	assert.ErrorIs(t, err, ErrConflict)
	balance, _ = wallets.Balance(u.ID, domain.WalletCash)
	assert.Equal(t, int64(10_000), balance)
}

func TestWithdrawalApprove(t *testing.T) {
	db := setupTestDB(t)
	u := newTestUser(t, db, "saver")
	svc := newPaymentService(db, &fakeProvider{})
	wallets := NewWalletService(db)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 10_000, domain.WalletTxTypeFunding, "fund"))

	txn, err := svc.RequestWithdrawal(u.ID, domain.WalletCash, 4_000)
	require.NoError(t, err)
	settled, err := svc.SettleWithdrawal(txn.TransactionID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnStatusSuccessful, settled.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), balance)
}
