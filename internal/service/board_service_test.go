package service

import (
	"testing"

	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillBronze(t *testing.T, svc *BoardService, userID uint, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, svc.PlaceReferral(userID, domain.BoardBronze, domain.SlotDirect, uint(1000+i)))
	}
}

func TestBoardCompletesAtThreshold(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 4)
	p := progressFor(t, db, u.ID, domain.BoardBronze)
	assert.False(t, p.Completed, "four referrals must not complete bronze")

	require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardBronze, domain.SlotDirect, 1004))
	p = progressFor(t, db, u.ID, domain.BoardBronze)
	assert.True(t, p.Completed, "fifth referral completes bronze")
	assert.NotNil(t, p.CompletedAt)
	assert.False(t, p.RewardsClaimed)
}

func TestBoardCompletionRecordedOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 5)
	// extra referrals past the threshold must not re-complete
	require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardBronze, domain.SlotDirect, 2000))
	require.NoError(t, svc.EvaluateCompletion(u.ID, domain.BoardBronze))

	var count int64
	db.Model(&models.BoardCompletion{}).Where("user_id = ? AND board_type = ?", u.ID, domain.BoardBronze).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBoardCompletionAdvancesCurrentBoard(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 5)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, domain.BoardSilver, fresh.CurrentBoard)
}

func TestBoardAdvanceNeverDemotes(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).Update("current_board", domain.BoardGold).Error)

	fillBronze(t, svc, u.ID, 5)

	var fresh models.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, domain.BoardGold, fresh.CurrentBoard, "bronze completion must not pull a gold user back")
}

func TestPlaceReferralSameUserTwiceIsNoop(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardBronze, domain.SlotDirect, 42))
	require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardBronze, domain.SlotDirect, 42))

	p := progressFor(t, db, u.ID, domain.BoardBronze)
	assert.Equal(t, 1, p.DirectCount)
}

func TestBoardRequiresIndirectToo(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	// silver needs 5 direct and 25 indirect; direct alone is not enough
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardSilver, domain.SlotDirect, uint(3000+i)))
	}
	p := progressFor(t, db, u.ID, domain.BoardSilver)
	assert.False(t, p.Completed)

	for i := 0; i < 25; i++ {
		require.NoError(t, svc.PlaceReferral(u.ID, domain.BoardSilver, domain.SlotIndirect, uint(4000+i)))
	}
	p = progressFor(t, db, u.ID, domain.BoardSilver)
	assert.True(t, p.Completed)
}

func TestThresholdOverrideViaSettings(t *testing.T) {
	db := setupTestDB(t)
	settings := repository.NewSettingRepository(db)
	require.NoError(t, settings.Set(domain.SettingBoardDirectRequired(domain.BoardBronze), "2"))
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 2)
	p := progressFor(t, db, u.ID, domain.BoardBronze)
	assert.True(t, p.Completed, "overridden threshold of 2 should complete bronze")
}

func TestClaimRewardCreditsWallet(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 5)

	p, err := svc.ClaimReward(u.ID, domain.BoardBronze, "food")
	require.NoError(t, err)
	assert.True(t, p.RewardsClaimed)
	assert.Equal(t, "food", p.ClaimedOption)

	balance, err := wallets.Balance(u.ID, domain.WalletFood)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), balance)
}

func TestClaimRewardTwiceConflicts(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	wallets := NewWalletService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 5)
	_, err := svc.ClaimReward(u.ID, domain.BoardBronze, "food")
	require.NoError(t, err)

	_, err = svc.ClaimReward(u.ID, domain.BoardBronze, "cash")
	assert.ErrorIs(t, err, ErrConflict)

	// first claim stands, no second credit
	balance, err := wallets.Balance(u.ID, domain.WalletCash)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestClaimBeforeCompletion(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 3)
	_, err := svc.ClaimReward(u.ID, domain.BoardBronze, "food")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClaimUnknownOption(t *testing.T) {
	db := setupTestDB(t)
	svc := newBoardService(db)
	u := newTestUser(t, db, "climber")

	fillBronze(t, svc, u.ID, 5)
	_, err := svc.ClaimReward(u.ID, domain.BoardBronze, "yacht")
	assert.ErrorIs(t, err, ErrInvalidOption)
}
