package handler

import (
	"net/http"
	"strconv"

	"boardmart/internal/domain"
	"boardmart/internal/middleware"
	"boardmart/internal/models"
	"boardmart/internal/repository"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	userRepo   *repository.UserRepository
	boardRepo  *repository.BoardRepository
	txnRepo    *repository.TransactionRepository
	orderRepo  *repository.OrderRepository
	settings   *repository.SettingRepository
	auditRepo  *repository.AuditLogRepository
	payments   *service.PaymentService
	migrations *service.MigrationService
}

func NewAdminHandler(
	userRepo *repository.UserRepository,
	boardRepo *repository.BoardRepository,
	txnRepo *repository.TransactionRepository,
	orderRepo *repository.OrderRepository,
	settings *repository.SettingRepository,
	auditRepo *repository.AuditLogRepository,
	payments *service.PaymentService,
	migrations *service.MigrationService,
) *AdminHandler {
	return &AdminHandler{
		userRepo:   userRepo,
		boardRepo:  boardRepo,
		txnRepo:    txnRepo,
		orderRepo:  orderRepo,
		settings:   settings,
		auditRepo:  auditRepo,
		payments:   payments,
		migrations: migrations,
	}
}

// naira renders a kobo amount in major units for dashboard display.
func naira(kobo int64) string {
	return decimal.NewFromInt(kobo).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// Dashboard summarizes membership and revenue.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	active, _ := h.userRepo.CountByStatus(domain.UserStatusActive)
	pending, _ := h.userRepo.CountByStatus(domain.UserStatusPending)
	orders, _ := h.orderRepo.Count()
	registrationKobo, _ := h.txnRepo.SumSuccessfulKobo(domain.PlanTypeRegistration)
	fundingKobo, _ := h.txnRepo.SumSuccessfulKobo(domain.PlanTypeWalletFunding)

	completions := gin.H{}
	for _, board := range []string{domain.BoardBronze, domain.BoardSilver, domain.BoardGold} {
		n, _ := h.boardRepo.CountCompletions(board)
		completions[board] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"active":  active,
			"pending": pending,
		},
		"orders":            orders,
		"board_completions": completions,
		"revenue": gin.H{
			"registration_kobo":  registrationKobo,
			"registration_naira": naira(registrationKobo),
			"funding_kobo":       fundingKobo,
			"funding_naira":      naira(fundingKobo),
		},
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, total, err := h.userRepo.List(limit, offset)
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// GetUserBoards shows one member's progression, used for support lookups.
func (h *AdminHandler) GetUserBoards(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	progress, err := h.boardRepo.ListProgress(u.ID)
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	completions, _ := h.boardRepo.ListCompletions(u.ID)
	referred, _ := h.userRepo.ListReferredBy(u.ID)
	c.JSON(http.StatusOK, gin.H{
		"user":             u,
		"progress":         progress,
		"completions":      completions,
		"direct_referrals": referred,
	})
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending active suspended"`
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.Status = req.Status
	if err := h.userRepo.Update(u); err != nil {
		respondErr(c, "admin", err)
		return
	}
	h.audit(c, "update_user_status", "user", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settings.GetAll()
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for k, v := range req.Settings {
		if err := h.settings.Set(k, v); err != nil {
			respondErr(c, "admin", err)
			return
		}
		h.audit(c, "update_setting", "setting", k)
	}
	c.JSON(http.StatusOK, gin.H{"message": "settings updated"})
}

// ListWithdrawals shows pending payout requests.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	status := c.DefaultQuery("status", domain.TxnStatusPending)
	list, err := h.txnRepo.ListByStatusAndPlanType(status, domain.PlanTypeWalletWithdraw, limit, offset)
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

type SettleWithdrawalRequest struct {
	Approve bool `json:"approve"`
}

// SettleWithdrawal approves or rejects a payout. Rejection refunds the
// wallet that was debited at request time.
func (h *AdminHandler) SettleWithdrawal(c *gin.Context) {
	txnID := c.Param("id")
	var req SettleWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	txn, err := h.payments.SettleWithdrawal(txnID, req.Approve)
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	action := "reject_withdrawal"
	if req.Approve {
		action = "approve_withdrawal"
	}
	h.audit(c, action, "transaction", txnID)
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// RunMigration normalizes legacy user records. Re-running is harmless.
func (h *AdminHandler) RunMigration(c *gin.Context) {
	report, err := h.migrations.Run()
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	h.audit(c, "run_migration", "users", "")
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.auditRepo.List(limit, offset)
	if err != nil {
		respondErr(c, "admin", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": list})
}

func (h *AdminHandler) audit(c *gin.Context, action, resource, resourceID string) {
	if h.auditRepo == nil {
		return
	}
	adminID := middleware.GetUserID(c)
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         c.ClientIP(),
	})
}
