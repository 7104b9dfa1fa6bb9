package handler

import (
	"errors"
	"log"
	"net/http"

	"boardmart/internal/service"
	"boardmart/pkg/payment"

	"github.com/gin-gonic/gin"
)

// respondErr maps the service error taxonomy to HTTP. Unknown errors are
// logged with the tag and hidden behind a generic 500.
func respondErr(c *gin.Context, tag string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, payment.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway error"})
	default:
		log.Printf("[%s] internal error: %v", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
