package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService places storefront orders. An order debits exactly one wallet
// matching its payment method, or goes out to the gateway; there are no
// partial multi-wallet payments.
type OrderService struct {
	db       *gorm.DB
	products *repository.ProductRepository
	wallets  *WalletService
	payments *PaymentService
	settings *repository.SettingRepository
}

func NewOrderService(db *gorm.DB, products *repository.ProductRepository, wallets *WalletService, payments *PaymentService, settings *repository.SettingRepository) *OrderService {
	return &OrderService{db: db, products: products, wallets: wallets, payments: payments, settings: settings}
}

type OrderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderInput struct {
	Items          []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string           `json:"payment_method" binding:"required"`
	DeliveryMethod string           `json:"delivery_method" binding:"required,oneof=shipping pickup"`
	ShippingName   string           `json:"shipping_name"`
	ShippingAddr   string           `json:"shipping_addr"`
	ShippingCity   string           `json:"shipping_city"`
	ShippingPhone  string           `json:"shipping_phone"`
	PickupLocation string           `json:"pickup_location"`
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// PlaceOrder builds the order with item snapshots, prices delivery, reserves
// stock, and pays it. Wallet methods debit atomically with the reservation;
// the gateway method returns a pending transaction whose checkout URL the
// client follows.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, in PlaceOrderInput) (*models.Order, *models.Transaction, error) {
	if len(in.Items) == 0 {
		return nil, nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	switch in.DeliveryMethod {
	case domain.DeliveryShipping:
		if in.ShippingAddr == "" || in.ShippingCity == "" {
			return nil, nil, fmt.Errorf("%w: shipping orders need an address", ErrValidation)
		}
		in.PickupLocation = ""
	case domain.DeliveryPickup:
		if in.PickupLocation == "" {
			return nil, nil, fmt.Errorf("%w: pickup orders need a pickup location", ErrValidation)
		}
		in.ShippingName, in.ShippingAddr, in.ShippingCity, in.ShippingPhone = "", "", "", ""
	default:
		return nil, nil, fmt.Errorf("%w: unknown delivery method %q", ErrValidation, in.DeliveryMethod)
	}
	walletKind := domain.WalletKindForPaymentMethod(in.PaymentMethod)
	if walletKind == "" && in.PaymentMethod != domain.PaymentMethodPaystack {
		return nil, nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.PaymentMethod)
	}

	var subtotal int64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		p, err := s.products.GetByID(it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("%w: product %d", ErrNotFound, it.ProductID)
			}
			return nil, nil, err
		}
		if !p.IsActive {
			return nil, nil, fmt.Errorf("%w: product %d is not available", ErrValidation, p.ID)
		}
		// snapshot name/price/image at order time
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			PriceKobo: p.PriceKobo,
			ImageURL:  p.ImageURL,
			Quantity:  it.Quantity,
		})
		subtotal += p.PriceKobo * int64(it.Quantity)
	}

	var delivery int64
	if in.DeliveryMethod == domain.DeliveryShipping {
		delivery = int64(s.settings.GetInt(domain.SettingDeliveryPriceKobo, 150_000))
	}

	order := &models.Order{
		OrderNumber:    newOrderNumber(),
		UserID:         userID,
		SubtotalKobo:   subtotal,
		DeliveryKobo:   delivery,
		TotalKobo:      subtotal + delivery,
		PaymentMethod:  in.PaymentMethod,
		DeliveryMethod: in.DeliveryMethod,
		ShippingName:   in.ShippingName,
		ShippingAddr:   in.ShippingAddr,
		ShippingCity:   in.ShippingCity,
		ShippingPhone:  in.ShippingPhone,
		PickupLocation: in.PickupLocation,
		Status:         domain.OrderStatusProcessing,
		Items:          items,
	}

	// Every order, wallet or gateway paid, reserves its stock at placement;
	// cancellation releases exactly what was reserved.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := reserveStock(tx, items); err != nil {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if walletKind != "" {
			return s.wallets.DebitTx(tx, userID, walletKind, order.TotalKobo,
				domain.WalletTxTypeOrderPayment, "order_"+order.OrderNumber)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if walletKind != "" {
		return order, nil, nil
	}

	// gateway payment: hand back a checkout URL for the reserved order
	meta := fmt.Sprintf(`{"order_number":%q}`, order.OrderNumber)
	txn, err := s.payments.Initialize(ctx, userID, order.TotalKobo, domain.PlanTypeOrder, "", meta)
	if err != nil {
		// the charge never started; release the reservation
		cancelErr := s.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, domain.OrderStatusProcessing).
				Update("status", domain.OrderStatusCancelled)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			return releaseStock(tx, items)
		})
		if cancelErr != nil {
			return nil, nil, cancelErr
		}
		return nil, nil, err
	}
	return order, txn, nil
}

// reserveStock decrements stock for each item, failing the whole order when
// any product cannot cover its quantity.
func reserveStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, it := range items {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: product %d out of stock", ErrConflict, it.ProductID)
		}
	}
	return nil
}

func releaseStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, it := range items {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", it.ProductID).
			UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

// allowedTransitions is the order status machine. Terminal states have no exits.
var allowedTransitions = map[string][]string{
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusReadyForPickup, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered},
}

// UpdateStatus moves an order through its state machine, rejecting illegal
// jumps and transitions that disagree with the delivery method.
func (s *OrderService) UpdateStatus(orderID uint, newStatus string) (*models.Order, error) {
	var o models.Order
	if err := s.db.First(&o, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if newStatus == domain.OrderStatusShipped && o.DeliveryMethod != domain.DeliveryShipping {
		return nil, fmt.Errorf("%w: pickup orders cannot be shipped", ErrValidation)
	}
	if newStatus == domain.OrderStatusReadyForPickup && o.DeliveryMethod != domain.DeliveryPickup {
		return nil, fmt.Errorf("%w: shipping orders cannot be marked for pickup", ErrValidation)
	}
	legal := false
	for _, next := range allowedTransitions[o.Status] {
		if next == newStatus {
			legal = true
			break
		}
	}
	if !legal {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, o.Status, newStatus)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", o.ID, o.Status).
			Update("status", newStatus)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, o.ID)
		}
		if newStatus == domain.OrderStatusCancelled {
			return s.refundAndRestock(tx, &o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.Status = newStatus
	return &o, nil
}

// refundAndRestock reverses a wallet payment idempotently and releases the
// stock the order reserved at placement.
func (s *OrderService) refundAndRestock(tx *gorm.DB, o *models.Order) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", o.ID).Find(&items).Error; err != nil {
		return err
	}
	if err := releaseStock(tx, items); err != nil {
		return err
	}
	if kind := domain.WalletKindForPaymentMethod(o.PaymentMethod); kind != "" {
		return s.wallets.CreditTx(tx, o.UserID, kind, o.TotalKobo,
			domain.WalletTxTypeRefund, "order_refund_"+o.OrderNumber)
	}
	return nil
}
