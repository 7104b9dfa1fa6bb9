package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the services. Handlers map these to HTTP codes
// with errors.Is; specific sentinels wrap the base class they belong to.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation error")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrForbidden         = errors.New("forbidden")
)

var (
	ErrSelfReferral      = fmt.Errorf("%w: cannot use your own referral code", ErrValidation)
	ErrAlreadyClaimed    = fmt.Errorf("%w: rewards already claimed", ErrConflict)
	ErrBoardNotCompleted = fmt.Errorf("%w: board not completed", ErrValidation)
	ErrInvalidOption     = fmt.Errorf("%w: unknown reward option", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrUnknownWallet     = fmt.Errorf("%w: unknown wallet kind", ErrValidation)
	ErrDuplicateRef      = fmt.Errorf("%w: duplicate ledger reference", ErrConflict)
)
