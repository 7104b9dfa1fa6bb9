package handler

import (
	"net/http"
	"strconv"

	"boardmart/internal/domain"
	"boardmart/internal/middleware"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets  *service.WalletService
	payments *service.PaymentService
}

func NewWalletHandler(wallets *service.WalletService, payments *service.PaymentService) *WalletHandler {
	return &WalletHandler{wallets: wallets, payments: payments}
}

// GetBalances returns all three balances for the current user, zero rows
// included.
func (h *WalletHandler) GetBalances(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balances, err := h.wallets.Balances(userID)
	if err != nil {
		respondErr(c, "wallet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances_kobo": balances, "currency": "NGN"})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	list, err := h.wallets.Transactions(userID, limit, offset)
	if err != nil {
		respondErr(c, "wallet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

type FundWalletRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=food gadget cash"`
	AmountKobo int64  `json:"amount_kobo" binding:"required,min=1"`
}

// Fund starts a gateway charge that credits the named wallet once verified.
func (h *WalletHandler) Fund(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req FundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.payments.Initialize(c.Request.Context(), userID, req.AmountKobo, domain.PlanTypeWalletFunding, req.Kind, "")
	if err != nil {
		respondErr(c, "wallet", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction":  txn,
		"checkout_url": txn.CheckoutURL,
	})
}

type WithdrawRequest struct {
	Kind       string `json:"kind" binding:"required,oneof=food gadget cash"`
	AmountKobo int64  `json:"amount_kobo" binding:"required,min=1"`
}

// Withdraw debits the wallet up front and queues the payout for admin review.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.payments.RequestWithdrawal(userID, req.Kind, req.AmountKobo)
	if err != nil {
		respondErr(c, "wallet", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// pagination reads ?limit= and ?offset= with sane caps.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
