package gamesession

import "errors"

var (
	// ErrNotFound is returned when a player has no live session yet.
	ErrNotFound = errors.New("gamesession: not found")
	// ErrFreeSpinsNotActive is returned when a free-spin-only operation is
	// attempted outside of an active free-spin round.
	ErrFreeSpinsNotActive = errors.New("gamesession: free spins not active")
	// ErrInvalidBet is returned when a requested bet falls outside the
	// configured min/max/step.
	ErrInvalidBet = errors.New("gamesession: invalid bet amount")
	// ErrSpinInProgress is returned when a second spin is requested for a
	// player while one is already being processed.
	ErrSpinInProgress = errors.New("gamesession: spin already in progress")
)
