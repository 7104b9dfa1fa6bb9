package handler

import (
	"net/http"

	"boardmart/internal/middleware"
	"boardmart/internal/repository"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referrals *service.ReferralService
	userRepo  *repository.UserRepository
}

func NewReferralHandler(referrals *service.ReferralService, userRepo *repository.UserRepository) *ReferralHandler {
	return &ReferralHandler{referrals: referrals, userRepo: userRepo}
}

// MyCode returns the user's own referral code.
func (h *ReferralHandler) MyCode(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"referral_code": u.ReferralCode})
}

// MyReferrals lists the users this user directly referred.
func (h *ReferralHandler) MyReferrals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.referrals.DirectReferrals(userID)
	if err != nil {
		respondErr(c, "referral", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": list, "count": len(list)})
}
