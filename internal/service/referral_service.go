package service

import (
	"errors"
	"fmt"

	"boardmart/internal/domain"
	"boardmart/internal/models"
	"boardmart/internal/repository"

	"gorm.io/gorm"
)

// ReferralService maintains the referrer forest and pushes each new
// registration into the right slots up the ancestor chain.
type ReferralService struct {
	users  *repository.UserRepository
	boards *BoardService
}

func NewReferralService(users *repository.UserRepository, boards *BoardService) *ReferralService {
	return &ReferralService{users: users, boards: boards}
}

type placement struct {
	Board string
	Slot  string
}

// placementsByDistance maps the ancestor distance from a new registrant to
// the board slots that registrant fills. Bronze counts one hop; Silver counts
// hops one and two; Gold counts hops three and four.
var placementsByDistance = map[int][]placement{
	1: {{domain.BoardBronze, domain.SlotDirect}, {domain.BoardSilver, domain.SlotDirect}},
	2: {{domain.BoardSilver, domain.SlotIndirect}},
	3: {{domain.BoardGold, domain.SlotDirect}},
	4: {{domain.BoardGold, domain.SlotIndirect}},
}

const maxReferralDepth = 4

// Resolve maps a submitted code to its owner. An unknown code resolves to
// (nil, nil): registering without a referrer is not an error.
func (s *ReferralService) Resolve(code string) (*models.User, error) {
	if code == "" {
		return nil, nil
	}
	referrer, err := s.users.GetByReferralCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return referrer, nil
}

// RegisterReferral wires a newly created user under the owner of the given
// code and walks up to four ancestors placing the new user into their board
// slots. The walk is bounded: referrer edges are immutable and assigned only
// at creation, so the chain is a forest with no cycles.
func (s *ReferralService) RegisterReferral(newUser *models.User, code string) error {
	referrer, err := s.Resolve(code)
	if err != nil || referrer == nil {
		return err
	}
	if referrer.ID == newUser.ID {
		return ErrSelfReferral
	}
	if newUser.ReferredByID != nil {
		return fmt.Errorf("%w: user %d already has a referrer", ErrConflict, newUser.ID)
	}
	newUser.ReferredByID = &referrer.ID
	if err := s.users.Update(newUser); err != nil {
		return err
	}

	ancestor := referrer
	for distance := 1; distance <= maxReferralDepth; distance++ {
		for _, pl := range placementsByDistance[distance] {
			if err := s.boards.PlaceReferral(ancestor.ID, pl.Board, pl.Slot, newUser.ID); err != nil {
				return fmt.Errorf("place user %d on %s %s of user %d: %w", newUser.ID, pl.Board, pl.Slot, ancestor.ID, err)
			}
		}
		if ancestor.ReferredByID == nil {
			break
		}
		ancestor, err = s.users.GetByID(*ancestor.ReferredByID)
		if err != nil {
			return err
		}
	}
	return nil
}

// DirectReferrals lists the users registered under the given user's code.
func (s *ReferralService) DirectReferrals(userID uint) ([]models.User, error) {
	return s.users.ListReferredBy(userID)
}
