package service

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"boardmart/internal/domain"
	"boardmart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrationService reshapes legacy per-user records into the current schema:
// lowercases currentBoard, folds earnings columns into wallet rows, and
// expands the old object-keyed board blob into board_progresses rows.
// Safe to run repeatedly: each step only writes when the target shape
// differs, so the second pass over a user is a no-op.
type MigrationService struct {
	db      *gorm.DB
	wallets *WalletService
}

func NewMigrationService(db *gorm.DB, wallets *WalletService) *MigrationService {
	return &MigrationService{db: db, wallets: wallets}
}

// legacyBoard is the old embedded shape: board-specific referral lists keyed
// by level rather than slot.
type legacyBoard struct {
	Level1Referrals []uint     `json:"level1Referrals"`
	Level2Referrals []uint     `json:"level2Referrals"`
	Completed       bool       `json:"completed"`
	CompletionDate  *time.Time `json:"completionDate"`
	RewardsClaimed  bool       `json:"rewardsClaimed"`
	ClaimedOption   string     `json:"claimedOption"`
}

var legacyEarningsKinds = []string{domain.WalletFood, domain.WalletGadget, domain.WalletCash}

type MigrationError struct {
	UserID uint   `json:"user_id"`
	Err    string `json:"error"`
}

type MigrationReport struct {
	Scanned  int              `json:"scanned"`
	Migrated int              `json:"migrated"`
	Skipped  int              `json:"skipped"`
	Errors   []MigrationError `json:"errors"`
}

// NeedsUpdate reports whether any legacy shape remains on the user.
func (s *MigrationService) NeedsUpdate(u *models.User) bool {
	if u.CurrentBoard != strings.ToLower(u.CurrentBoard) {
		return true
	}
	if u.LegacyFoodEarningsKobo != nil || u.LegacyGadgetEarningsKobo != nil || u.LegacyCashEarningsKobo != nil {
		return true
	}
	return u.LegacyBoardData != ""
}

// Run scans every user in batches. One user's failure is collected, not
// fatal; each user migrates in its own transaction so no lock spans the batch.
func (s *MigrationService) Run() (*MigrationReport, error) {
	report := &MigrationReport{}
	var batch []models.User
	err := s.db.FindInBatches(&batch, 100, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			u := batch[i]
			report.Scanned++
			if !s.NeedsUpdate(&u) {
				report.Skipped++
				continue
			}
			if err := s.MigrateUser(u.ID); err != nil {
				log.Printf("[migrate] user %d: %v", u.ID, err)
				report.Errors = append(report.Errors, MigrationError{UserID: u.ID, Err: err.Error()})
				continue
			}
			report.Migrated++
		}
		return nil
	}).Error
	if err != nil {
		return report, err
	}
	log.Printf("[migrate] done: scanned=%d migrated=%d skipped=%d errors=%d",
		report.Scanned, report.Migrated, report.Skipped, len(report.Errors))
	return report, nil
}

// DryRun counts users that would migrate without touching anything. Migrated
// in the report means "needs migration" here.
func (s *MigrationService) DryRun() (*MigrationReport, error) {
	report := &MigrationReport{}
	var batch []models.User
	err := s.db.FindInBatches(&batch, 100, func(_ *gorm.DB, _ int) error {
		for i := range batch {
			report.Scanned++
			if s.NeedsUpdate(&batch[i]) {
				report.Migrated++
			} else {
				report.Skipped++
			}
		}
		return nil
	}).Error
	return report, err
}

// MigrateUser normalizes one user inside a single transaction.
func (s *MigrationService) MigrateUser(userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, userID).Error; err != nil {
			return err
		}
		if board := strings.ToLower(u.CurrentBoard); board != u.CurrentBoard {
			if !domain.ValidBoard(board) {
				board = domain.BoardBronze
			}
			if err := tx.Model(&u).Update("current_board", board).Error; err != nil {
				return err
			}
		}
		if err := s.migrateEarnings(tx, &u); err != nil {
			return err
		}
		return s.migrateBoardData(tx, &u)
	})
}

// migrateEarnings folds the duplicated earnings.* columns into wallet rows.
// The ledger reference keys on (user, kind), so a re-run cannot credit twice
// even if clearing the column failed halfway.
func (s *MigrationService) migrateEarnings(tx *gorm.DB, u *models.User) error {
	legacy := map[string]*int64{
		domain.WalletFood:   u.LegacyFoodEarningsKobo,
		domain.WalletGadget: u.LegacyGadgetEarningsKobo,
		domain.WalletCash:   u.LegacyCashEarningsKobo,
	}
	for _, kind := range legacyEarningsKinds {
		amount := legacy[kind]
		if amount == nil {
			continue
		}
		if *amount > 0 {
			ref := fmt.Sprintf("migrate_%d_%s", u.ID, kind)
			if err := s.wallets.CreditTx(tx, u.ID, kind, *amount, domain.WalletTxTypeMigration, ref); err != nil {
				return err
			}
		}
		column := "legacy_" + kind + "_earnings_kobo"
		if err := tx.Model(u).Update(column, nil).Error; err != nil {
			return err
		}
	}
	return nil
}

// migrateBoardData expands the object-keyed legacy blob into the uniform
// board_progresses / board_referrals rows, then clears the blob.
func (s *MigrationService) migrateBoardData(tx *gorm.DB, u *models.User) error {
	if u.LegacyBoardData == "" {
		return nil
	}
	var legacy map[string]legacyBoard
	if err := json.Unmarshal([]byte(u.LegacyBoardData), &legacy); err != nil {
		return fmt.Errorf("parse legacy board data: %w", err)
	}
	for key, lb := range legacy {
		board := strings.ToLower(key)
		if !domain.ValidBoard(board) {
			return fmt.Errorf("%w: legacy board %q", ErrValidation, key)
		}
		progress, err := getOrCreateProgress(tx, u.ID, board)
		if err != nil {
			return err
		}
		for _, id := range lb.Level1Referrals {
			if err := insertLegacyReferral(tx, progress.ID, id, domain.SlotDirect); err != nil {
				return err
			}
		}
		for _, id := range lb.Level2Referrals {
			if err := insertLegacyReferral(tx, progress.ID, id, domain.SlotIndirect); err != nil {
				return err
			}
		}
		if err := recountSlots(tx, progress.ID); err != nil {
			return err
		}
		if lb.Completed && !progress.Completed {
			completedAt := time.Now()
			if lb.CompletionDate != nil {
				completedAt = *lb.CompletionDate
			}
			updates := map[string]interface{}{"completed": true, "completed_at": completedAt}
			if lb.RewardsClaimed {
				updates["rewards_claimed"] = true
				updates["claimed_option"] = lb.ClaimedOption
				updates["claimed_at"] = completedAt
			}
			if err := tx.Model(&models.BoardProgress{}).
				Where("id = ? AND completed = ?", progress.ID, false).
				Updates(updates).Error; err != nil {
				return err
			}
			// one audit record per completion, created only if the legacy data
			// never had one
			var count int64
			tx.Model(&models.BoardCompletion{}).Where("user_id = ? AND board_type = ?", u.ID, board).Count(&count)
			if count == 0 {
				var p models.BoardProgress
				if err := tx.First(&p, progress.ID).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.BoardCompletion{
					UserID:        u.ID,
					BoardType:     board,
					DirectCount:   p.DirectCount,
					IndirectCount: p.IndirectCount,
					CompletedAt:   completedAt,
				}).Error; err != nil {
					return err
				}
			}
		}
	}
	return tx.Model(u).Update("legacy_board_data", "").Error
}

func insertLegacyReferral(tx *gorm.DB, progressID, referredUserID uint, slot string) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.BoardReferral{
		BoardProgressID: progressID,
		ReferredUserID:  referredUserID,
		Slot:            slot,
	}).Error
}

// recountSlots rebuilds the denormalized counters from the membership rows.
func recountSlots(tx *gorm.DB, progressID uint) error {
	var direct, indirect int64
	if err := tx.Model(&models.BoardReferral{}).
		Where("board_progress_id = ? AND slot = ?", progressID, domain.SlotDirect).
		Count(&direct).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.BoardReferral{}).
		Where("board_progress_id = ? AND slot = ?", progressID, domain.SlotIndirect).
		Count(&indirect).Error; err != nil {
		return err
	}
	return tx.Model(&models.BoardProgress{}).
		Where("id = ?", progressID).
		Updates(map[string]interface{}{"direct_count": direct, "indirect_count": indirect}).Error
}
