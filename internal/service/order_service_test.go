package service

import (
	"context"
	"testing"

	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"
	"boardmart/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrderService(db *gorm.DB) *OrderService {
	wallets := NewWalletService(db)
	payments := newPaymentService(db, &fakeProvider{verifyStatus: "success"})
	return NewOrderService(db, repository.NewProductRepository(db), wallets, payments, repository.NewSettingRepository(db))
}

func seedProduct(t *testing.T, db *gorm.DB, name string, priceKobo int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, PriceKobo: priceKobo, Stock: stock, IsActive: true, Category: "food"}
	require.NoError(t, db.Create(p).Error)
	return p
}

func shippingInput(items ...OrderItemInput) PlaceOrderInput {
	return PlaceOrderInput{
		Items:          items,
		PaymentMethod:  domain.PaymentMethodCashWallet,
		DeliveryMethod: domain.DeliveryShipping,
		ShippingName:   "Ada",
		ShippingAddr:   "12 Broad St",
		ShippingCity:   "Lagos",
		ShippingPhone:  "08012345678",
	}
}

func TestPlaceOrderWalletPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 10)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 2_000_000, domain.WalletTxTypeFunding, "fund"))

	order, txn, err := svc.PlaceOrder(context.Background(), u.ID, shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)
	assert.Nil(t, txn, "wallet payments settle without a gateway transaction")
	assert.Equal(t, int64(1_000_000), order.SubtotalKobo)
	assert.Equal(t, int64(150_000), order.DeliveryKobo)
	assert.Equal(t, int64(1_150_000), order.TotalKobo)
	assert.Equal(t, domain.OrderStatusProcessing, order.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(850_000), balance)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 8, fresh.Stock)
}

func TestPlaceOrderPickupSkipsDelivery(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 10)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletFood, 1_000_000, domain.WalletTxTypeFunding, "fund"))

	order, _, err := svc.PlaceOrder(context.Background(), u.ID, PlaceOrderInput{
		Items:          []OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  domain.PaymentMethodFoodWallet,
		DeliveryMethod: domain.DeliveryPickup,
		PickupLocation: "Ikeja store",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.DeliveryKobo)
	assert.Equal(t, int64(500_000), order.TotalKobo)
}

func TestPlaceOrderInsufficientFundsRollsBack(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 10)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 100_000, domain.WalletTxTypeFunding, "fund"))

	_, _, err := svc.PlaceOrder(context.Background(), u.ID, shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 1}))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// stock reservation rolled back with the order
	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 10, fresh.Stock)
	var count int64
	db.Model(&models.Order{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPlaceOrderOutOfStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 100_000, 1)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 2_000_000, domain.WalletTxTypeFunding, "fund"))

	_, _, err := svc.PlaceOrder(context.Background(), u.ID, shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 3}))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPlaceOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 100_000, 5)

	// shipping without an address
	_, _, err := svc.PlaceOrder(context.Background(), u.ID, PlaceOrderInput{
		Items:          []OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  domain.PaymentMethodCashWallet,
		DeliveryMethod: domain.DeliveryShipping,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// pickup without a location
	_, _, err = svc.PlaceOrder(context.Background(), u.ID, PlaceOrderInput{
		Items:          []OrderItemInput{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  domain.PaymentMethodCashWallet,
		DeliveryMethod: domain.DeliveryPickup,
	})
	assert.ErrorIs(t, err, ErrValidation)

	// unknown payment method
	in := shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 1})
	in.PaymentMethod = "barter"
	_, _, err = svc.PlaceOrder(context.Background(), u.ID, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlaceOrderGatewayPayment(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 10)

	in := shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 1})
	in.PaymentMethod = domain.PaymentMethodPaystack
	order, txn, err := svc.PlaceOrder(context.Background(), u.ID, in)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, domain.TxnStatusPending, txn.Status)
	assert.Equal(t, order.TotalKobo, txn.AmountKobo)
	assert.Contains(t, txn.Metadata, order.OrderNumber)

	// gateway orders reserve stock too
	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 9, fresh.Stock)
}

func TestCancelGatewayOrderRestocksOnlyReservation(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 5)

	in := shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 2})
	in.PaymentMethod = domain.PaymentMethodPaystack
	order, txn, err := svc.PlaceOrder(context.Background(), u.ID, in)
	require.NoError(t, err)
	require.NotNil(t, txn)

	var reserved models.Product
	require.NoError(t, db.First(&reserved, p.ID).Error)
	require.Equal(t, 3, reserved.Stock)

	cancelled, err := svc.UpdateStatus(order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	// stock goes back to where it started, never above
	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 5, fresh.Stock)

	// no wallet was charged, so no wallet refund either
	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestGatewayInitFailureReleasesReservedStock(t *testing.T) {
	db := setupTestDB(t)
	wallets := NewWalletService(db)
	payments := newPaymentService(db, &fakeProvider{initErr: payment.ErrGateway})
	svc := NewOrderService(db, repository.NewProductRepository(db), wallets, payments, repository.NewSettingRepository(db))
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 500_000, 5)

	in := shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 2})
	in.PaymentMethod = domain.PaymentMethodPaystack
	_, _, err := svc.PlaceOrder(context.Background(), u.ID, in)
	require.Error(t, err)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 5, fresh.Stock)

	var o models.Order
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&o).Error)
	assert.Equal(t, domain.OrderStatusCancelled, o.Status)
}

func TestOrderStatusMachine(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 100_000, 5)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 1_000_000, domain.WalletTxTypeFunding, "fund"))

	order, _, err := svc.PlaceOrder(context.Background(), u.ID, shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	// pickup-only status on a shipping order
	_, err = svc.UpdateStatus(order.ID, domain.OrderStatusReadyForPickup)
	assert.ErrorIs(t, err, ErrValidation)

	// processing -> delivered skips shipped
	_, err = svc.UpdateStatus(order.ID, domain.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrConflict)

	shipped, err := svc.UpdateStatus(order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, shipped.Status)

	delivered, err := svc.UpdateStatus(order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, delivered.Status)

	// delivered is terminal
	_, err = svc.UpdateStatus(order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCancelOrderRefundsAndRestocks(t *testing.T) {
	db := setupTestDB(t)
	svc := newOrderService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "shopper")
	p := seedProduct(t, db, "Rice 5kg", 100_000, 5)
	require.NoError(t, wallets.Credit(u.ID, domain.WalletCash, 1_000_000, domain.WalletTxTypeFunding, "fund"))

	order, _, err := svc.PlaceOrder(context.Background(), u.ID, shippingInput(OrderItemInput{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), balance, "cancellation refunds the full charge")

	var fresh models.Product
	require.NoError(t, db.First(&fresh, p.ID).Error)
	assert.Equal(t, 5, fresh.Stock)
}
