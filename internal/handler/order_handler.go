package handler

import (
	"net/http"
	"strconv"

	"boardmart/internal/domain"
	"boardmart/internal/middleware"
	"boardmart/internal/repository"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders    *service.OrderService
	orderRepo *repository.OrderRepository
}

func NewOrderHandler(orders *service.OrderService, orderRepo *repository.OrderRepository) *OrderHandler {
	return &OrderHandler{orders: orders, orderRepo: orderRepo}
}

// Place creates an order from the posted cart. Wallet payments settle
// immediately; paystack payments return a checkout URL alongside the order.
func (h *OrderHandler) Place(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, txn, err := h.orders.PlaceOrder(c.Request.Context(), userID, in)
	if err != nil {
		respondErr(c, "order", err)
		return
	}
	resp := gin.H{"order": order}
	if txn != nil {
		resp["transaction"] = txn
		resp["checkout_url"] = txn.CheckoutURL
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	list, err := h.orderRepo.ListByUser(userID, limit, offset)
	if err != nil {
		respondErr(c, "order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	order, err := h.orderRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if order.UserID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListAll is an admin view over every order, optionally filtered by status.
func (h *OrderHandler) ListAll(c *gin.Context) {
	limit, offset := pagination(c)
	list, total, err := h.orderRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		respondErr(c, "order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "total": total})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=processing shipped delivered cancelled ready_for_pickup"`
}

// UpdateStatus moves an order along its fulfillment path (admin only).
// Cancelling refunds the wallet and restocks.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.UpdateStatus(uint(id), req.Status)
	if err != nil {
		respondErr(c, "order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}
