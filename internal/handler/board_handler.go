package handler

import (
	"net/http"

	"boardmart/internal/domain"
	"boardmart/internal/middleware"
	"boardmart/internal/repository"
	"boardmart/internal/service"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	boards    *service.BoardService
	boardRepo *repository.BoardRepository
	userRepo  *repository.UserRepository
}

func NewBoardHandler(boards *service.BoardService, boardRepo *repository.BoardRepository, userRepo *repository.UserRepository) *BoardHandler {
	return &BoardHandler{boards: boards, boardRepo: boardRepo, userRepo: userRepo}
}

// MyBoards returns the user's tier, per-board progress and completion history.
func (h *BoardHandler) MyBoards(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	progress, err := h.boardRepo.ListProgress(userID)
	if err != nil {
		respondErr(c, "board", err)
		return
	}
	completions, err := h.boardRepo.ListCompletions(userID)
	if err != nil {
		respondErr(c, "board", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current_board": u.CurrentBoard,
		"progress":      progress,
		"completions":   completions,
	})
}

// RewardOptions lists the claimable options for one board tier.
func (h *BoardHandler) RewardOptions(c *gin.Context) {
	board := c.Param("board")
	if !domain.ValidBoard(board) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown board"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": board, "options": h.boards.RewardOptions(board)})
}

type ClaimRequest struct {
	Board  string `json:"board" binding:"required,oneof=bronze silver gold"`
	Option string `json:"option" binding:"required"`
}

// Claim credits the chosen reward for a completed board. Claiming twice
// returns 409.
func (h *BoardHandler) Claim(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	progress, err := h.boards.ClaimReward(userID, req.Board, req.Option)
	if err != nil {
		respondErr(c, "board", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}
