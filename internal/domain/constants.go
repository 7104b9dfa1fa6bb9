package domain

const (
	RoleMember = "MEMBER"
	RoleAdmin  = "ADMIN"
)

const (
	UserStatusPending   = "pending"
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// Board tiers, lowest first. A completed board advances the user to the next one.
const (
	BoardBronze = "bronze"
	BoardSilver = "silver"
	BoardGold   = "gold"
)

// BoardOrder ranks tiers for currentBoard advancement. Higher never reverts to lower.
var BoardOrder = map[string]int{
	BoardBronze: 1,
	BoardSilver: 2,
	BoardGold:   3,
}

// NextBoard returns the tier after the given one, or "" past gold.
func NextBoard(board string) string {
	switch board {
	case BoardBronze:
		return BoardSilver
	case BoardSilver:
		return BoardGold
	}
	return ""
}

func ValidBoard(board string) bool {
	_, ok := BoardOrder[board]
	return ok
}

const (
	WalletFood   = "food"
	WalletGadget = "gadget"
	WalletCash   = "cash"
)

// WalletKinds lists every spendable balance a user holds.
var WalletKinds = []string{WalletFood, WalletGadget, WalletCash}

func ValidWalletKind(kind string) bool {
	for _, k := range WalletKinds {
		if k == kind {
			return true
		}
	}
	return false
}

const (
	SlotDirect   = "direct"
	SlotIndirect = "indirect"
)

// Transaction plan types (what a payment is for).
const (
	PlanTypeRegistration   = "registration"
	PlanTypeWalletFunding  = "wallet_funding"
	PlanTypeWalletWithdraw = "wallet_withdraw"
	PlanTypeOrder          = "order"
)

// Transaction statuses. pending is the only non-terminal state.
const (
	TxnStatusPending    = "pending"
	TxnStatusSuccessful = "successful"
	TxnStatusFailed     = "failed"
	TxnStatusCancelled  = "cancelled"
)

func TxnStatusTerminal(status string) bool {
	return status == TxnStatusSuccessful || status == TxnStatusFailed || status == TxnStatusCancelled
}

// Wallet transaction types (ledger row categories).
const (
	WalletTxTypeFunding      = "FUNDING"
	WalletTxTypeBoardReward  = "BOARD_REWARD"
	WalletTxTypeOrderPayment = "ORDER_PAYMENT"
	WalletTxTypeRefund       = "REFUND"
	WalletTxTypeWithdrawal   = "WITHDRAWAL"
	WalletTxTypeMigration    = "MIGRATION"
)

const (
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
	OrderStatusReadyForPickup = "ready_for_pickup"
)

const (
	DeliveryShipping = "shipping"
	DeliveryPickup   = "pickup"
)

const (
	PaymentMethodFoodWallet   = "food_wallet"
	PaymentMethodGadgetWallet = "gadget_wallet"
	PaymentMethodCashWallet   = "cash_wallet"
	PaymentMethodPaystack     = "paystack"
)

// WalletKindForPaymentMethod maps an order payment method to the single wallet
// it debits. Returns "" for external methods.
func WalletKindForPaymentMethod(method string) string {
	switch method {
	case PaymentMethodFoodWallet:
		return WalletFood
	case PaymentMethodGadgetWallet:
		return WalletGadget
	case PaymentMethodCashWallet:
		return WalletCash
	}
	return ""
}

// System setting keys.
const (
	SettingSiteShutdown      = "site_shutdown"
	SettingDeliveryPriceKobo = "delivery_price_kobo"
	SettingRegistrationFee   = "registration_fee_kobo"
)

// SettingBoardDirectRequired / SettingBoardIndirectRequired build the setting
// keys that override the configured completion thresholds per tier.
func SettingBoardDirectRequired(board string) string   { return "board_" + board + "_direct_required" }
func SettingBoardIndirectRequired(board string) string { return "board_" + board + "_indirect_required" }
