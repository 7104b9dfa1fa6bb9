package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"boardmart/config"
	"boardmart/internal/database"
	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// a named shared-cache DB keeps every pooled connection on the same data
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// testBoardsConfig keeps threshold and reward numbers small so tests stay
// readable.
func testBoardsConfig() *config.BoardsConfig {
	return &config.BoardsConfig{
		Rules: map[string]config.BoardRule{
			domain.BoardBronze: {DirectRequired: 5, IndirectRequired: 0},
			domain.BoardSilver: {DirectRequired: 5, IndirectRequired: 25},
			domain.BoardGold:   {DirectRequired: 5, IndirectRequired: 25},
		},
		Rewards: map[string]map[string]config.RewardOption{
			domain.BoardBronze: {
				"food": {WalletKind: domain.WalletFood, AmountKobo: 1_000},
				"cash": {WalletKind: domain.WalletCash, AmountKobo: 500},
			},
			domain.BoardSilver: {
				"gadget": {WalletKind: domain.WalletGadget, AmountKobo: 5_000},
			},
			domain.BoardGold: {
				"cash": {WalletKind: domain.WalletCash, AmountKobo: 20_000},
			},
		},
	}
}

func newTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	repo := repository.NewUserRepository(db)
	u := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Role:         domain.RoleMember,
		Status:       domain.UserStatusActive,
		CurrentBoard: domain.BoardBronze,
	}
	if err := repo.Create(u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func newBoardService(db *gorm.DB) *BoardService {
	return NewBoardService(db, testBoardsConfig(), repository.NewSettingRepository(db), NewWalletService(db))
}

// registerChain creates n users where each refers the next, returning them
// root first.
func registerChain(t *testing.T, db *gorm.DB, svc *ReferralService, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u := newTestUser(t, db, fmt.Sprintf("chain%d_%d", i, len(users)))
		if i > 0 {
			if err := svc.RegisterReferral(u, users[i-1].ReferralCode); err != nil {
				t.Fatalf("register referral at depth %d: %v", i, err)
			}
		}
		users = append(users, u)
	}
	return users
}
