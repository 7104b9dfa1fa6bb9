package handler

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"boardmart/config"
	"boardmart/internal/domain"
	"boardmart/internal/middleware"
	"boardmart/internal/models"
	"boardmart/internal/repository"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
)

// Fallback when the registration_fee_kobo setting was never seeded.
const defaultRegistrationFeeKobo = 2_000_000

type PaymentHandler struct {
	payments  *service.PaymentService
	settings  *repository.SettingRepository
	auditRepo *repository.AuditLogRepository
	txnRepo   *repository.TransactionRepository
	cfg       *config.PaystackConfig
}

func NewPaymentHandler(payments *service.PaymentService, settings *repository.SettingRepository, auditRepo *repository.AuditLogRepository, txnRepo *repository.TransactionRepository, cfg *config.PaystackConfig) *PaymentHandler {
	return &PaymentHandler{payments: payments, settings: settings, auditRepo: auditRepo, txnRepo: txnRepo, cfg: cfg}
}

// PayRegistration starts the activation charge for a pending account. The
// amount comes from settings, never from the client.
func (h *PaymentHandler) PayRegistration(c *gin.Context) {
	userID := middleware.GetUserID(c)
	fee := int64(h.settings.GetInt(domain.SettingRegistrationFee, defaultRegistrationFeeKobo))
	txn, err := h.payments.Initialize(c.Request.Context(), userID, fee, domain.PlanTypeRegistration, "", "")
	if err != nil {
		respondErr(c, "payment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction":  txn,
		"checkout_url": txn.CheckoutURL,
	})
}

// Verify re-checks a reference against the gateway. Clients land here from
// the checkout callback; calling it again after success changes nothing.
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		reference = c.Query("reference")
	}
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reference"})
		return
	}
	txn, err := h.payments.Verify(c.Request.Context(), reference)
	if err != nil {
		respondErr(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// GetTransactions lists the current user's payment transactions.
func (h *PaymentHandler) GetTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	list, err := h.txnRepo.ListByUser(userID, limit, offset)
	if err != nil {
		respondErr(c, "payment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

// Webhook handles Paystack event callbacks. The signature header is an
// HMAC-SHA512 of the raw body keyed on the secret key. Gateway retries the
// same event until it gets a 200, so everything after signature validation
// acks 200 regardless of outcome; verification itself is idempotent.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if !h.validSignature(body, c.GetHeader("X-Paystack-Signature")) {
		log.Printf("[Paystack webhook] invalid signature from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event paystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("[Paystack webhook] invalid payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	log.Printf("[Paystack webhook] event=%s reference=%s status=%s", event.Event, event.Data.Reference, event.Data.Status)

	if h.auditRepo != nil {
		_ = h.auditRepo.Create(&models.AuditLog{
			Action:     "paystack_webhook",
			Resource:   event.Event,
			ResourceID: event.Data.Reference,
			IP:         c.ClientIP(),
		})
	}

	if event.Data.Reference == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	// Whatever the event claims, the gateway is re-queried before any side
	// effect applies.
	if _, err := h.payments.Verify(c.Request.Context(), event.Data.Reference); err != nil {
		log.Printf("[Paystack webhook] verify reference=%s: %v", event.Data.Reference, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentHandler) validSignature(body []byte, signature string) bool {
	if signature == "" || h.cfg.SecretKey == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(h.cfg.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
