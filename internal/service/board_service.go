package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"boardmart/config"
	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BoardService runs the per-(user, board) progression state machine:
// not-entered -> in-progress -> completed -> rewards-claimed.
type BoardService struct {
	db       *gorm.DB
	cfg      *config.BoardsConfig
	settings *repository.SettingRepository
	wallets  *WalletService
}

func NewBoardService(db *gorm.DB, cfg *config.BoardsConfig, settings *repository.SettingRepository, wallets *WalletService) *BoardService {
	return &BoardService{db: db, cfg: cfg, settings: settings, wallets: wallets}
}

// thresholds returns the completion requirements for a tier: configured
// defaults, overridable at runtime through system settings.
func (s *BoardService) thresholds(board string) (direct, indirect int) {
	rule := s.cfg.Rules[board]
	direct, indirect = rule.DirectRequired, rule.IndirectRequired
	if s.settings != nil {
		direct = s.settings.GetInt(domain.SettingBoardDirectRequired(board), direct)
		indirect = s.settings.GetInt(domain.SettingBoardIndirectRequired(board), indirect)
	}
	return direct, indirect
}

// PlaceReferral fills one slot on a user's board, creating the progress row
// lazily on first entry. Placing the same referred user twice is a no-op.
// After a slot actually fills, completion is re-evaluated.
func (s *BoardService) PlaceReferral(userID uint, board, slot string, referredUserID uint) error {
	if !domain.ValidBoard(board) {
		return fmt.Errorf("%w: unknown board %q", ErrValidation, board)
	}
	placed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		progress, err := getOrCreateProgress(tx, userID, board)
		if err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BoardReferral{
			BoardProgressID: progress.ID,
			ReferredUserID:  referredUserID,
			Slot:            slot,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already on this board
		}
		column := "direct_count"
		if slot == domain.SlotIndirect {
			column = "indirect_count"
		}
		if err := tx.Model(&models.BoardProgress{}).
			Where("id = ?", progress.ID).
			UpdateColumn(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
		placed = true
		return nil
	})
	if err != nil || !placed {
		return err
	}
	return s.EvaluateCompletion(userID, board)
}

func getOrCreateProgress(tx *gorm.DB, userID uint, board string) (*models.BoardProgress, error) {
	var p models.BoardProgress
	err := tx.Where("user_id = ? AND board_type = ?", userID, board).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.BoardProgress{UserID: userID, BoardType: board}).Error; err != nil {
		return nil, err
	}
	// re-read: a concurrent request may have created the row first
	if err := tx.Where("user_id = ? AND board_type = ?", userID, board).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// EvaluateCompletion checks the thresholds and flips completed exactly once.
// The conditional UPDATE is the exactly-once guard: whichever request wins
// writes the single BoardCompletion audit row and advances currentBoard.
func (s *BoardService) EvaluateCompletion(userID uint, board string) error {
	var p models.BoardProgress
	err := s.db.Where("user_id = ? AND board_type = ?", userID, board).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if p.Completed {
		return nil
	}
	directRequired, indirectRequired := s.thresholds(board)
	if p.DirectCount < directRequired || p.IndirectCount < indirectRequired {
		return nil
	}
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BoardProgress{}).
			Where("id = ? AND completed = ?", p.ID, false).
			Updates(map[string]interface{}{"completed": true, "completed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // another request completed it first
		}
		snapshot, _ := json.Marshal(s.cfg.Rewards[board])
		if err := tx.Create(&models.BoardCompletion{
			UserID:           userID,
			BoardType:        board,
			DirectCount:      p.DirectCount,
			IndirectCount:    p.IndirectCount,
			EarningsSnapshot: string(snapshot),
			CompletedAt:      now,
		}).Error; err != nil {
			return err
		}
		if next := domain.NextBoard(board); next != "" {
			// advance only forward; a silver completion never demotes a gold user
			var lower []string
			for b, rank := range domain.BoardOrder {
				if rank < domain.BoardOrder[next] {
					lower = append(lower, b)
				}
			}
			if err := tx.Model(&models.User{}).
				Where("id = ? AND current_board IN ?", userID, lower).
				Update("current_board", next).Error; err != nil {
				return err
			}
		}
		log.Printf("[board] user %d completed %s (direct=%d indirect=%d)", userID, board, p.DirectCount, p.IndirectCount)
		return nil
	})
}

// ClaimReward executes completed -> rewards-claimed atomically: flag flip,
// wallet credit, and option stamp commit together or not at all. A second
// claim gets ErrAlreadyClaimed and the wallet is never credited twice.
func (s *BoardService) ClaimReward(userID uint, board, option string) (*models.BoardProgress, error) {
	reward, ok := s.cfg.Rewards[board][option]
	if !ok {
		return nil, ErrInvalidOption
	}
	var p models.BoardProgress
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND board_type = ?", userID, board).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no %s board for user %d", ErrNotFound, board, userID)
			}
			return err
		}
		if !p.Completed {
			return ErrBoardNotCompleted
		}
		now := time.Now()
		res := tx.Model(&models.BoardProgress{}).
			Where("id = ? AND rewards_claimed = ?", p.ID, false).
			Updates(map[string]interface{}{
				"rewards_claimed": true,
				"claimed_option":  option,
				"claimed_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyClaimed
		}
		ref := fmt.Sprintf("board_claim_%d", p.ID)
		if err := s.wallets.CreditTx(tx, userID, reward.WalletKind, reward.AmountKobo, domain.WalletTxTypeBoardReward, ref); err != nil {
			return err
		}
		p.RewardsClaimed = true
		p.ClaimedOption = option
		p.ClaimedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[board] user %d claimed %s reward option=%s wallet=%s amount=%d", userID, board, option, reward.WalletKind, reward.AmountKobo)
	return &p, nil
}

// RewardOptions exposes the claimable option table for a tier.
func (s *BoardService) RewardOptions(board string) map[string]config.RewardOption {
	return s.cfg.Rewards[board]
}
