package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrInvalidBet      = errors.New("invalid bet")
	ErrBadSchedule     = errors.New("malformed market schedule")
	ErrMissingRate     = errors.New("no rate configured for game type")
	ErrUnsettleable    = errors.New("required result side not declared")
	ErrAlreadySettled  = errors.New("bet already settled")
	ErrAlreadyDeclared = errors.New("result side already declared")
	ErrBettingClosed   = errors.New("betting closed for this side")
	ErrMarketInactive  = errors.New("market inactive")
	ErrLockHeld        = errors.New("lock already held")
	ErrContextDone     = errors.New("context cancelled")
)
