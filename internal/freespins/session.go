package freespins

import (
	"time"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/multiplier"
	"github.com/infinitystorm/server/internal/symbols"
)

// Session tracks an active free-spin round: how many spins remain, the bet
// amount locked in at trigger time, running totals, and the carried
// multiplier accumulator.
type Session struct {
	ID                uuid.UUID
	PlayerID          uuid.UUID
	TotalSpinsAwarded int
	SpinsCompleted    int
	RemainingSpins    int
	LockedBetAmount   money.Amount
	TotalWon          money.Amount
	Accumulator       multiplier.Accumulator
	IsActive          bool
	CreatedAt         time.Time
}

// NewSession starts a free-spin session from a trigger's scatter count.
func NewSession(playerID uuid.UUID, scatterCount int, bet money.Amount) *Session {
	awarded, _ := symbols.FreeSpinsAwarded(scatterCount)

	return &Session{
		ID:                uuid.New(),
		PlayerID:          playerID,
		TotalSpinsAwarded: awarded,
		RemainingSpins:    awarded,
		LockedBetAmount:   bet,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}
}

// ExecuteSpin records the completion of one free spin with its win amount.
func (s *Session) ExecuteSpin(win money.Amount) {
	s.SpinsCompleted++
	s.RemainingSpins--
	s.TotalWon = s.TotalWon.Add(win)
	if s.RemainingSpins <= 0 {
		s.IsActive = false
	}
}

// AddRetriggerSpins extends the session with additional awarded spins.
func (s *Session) AddRetriggerSpins(additional int) {
	s.TotalSpinsAwarded += additional
	s.RemainingSpins += additional
}

// IsComplete reports whether the session has no spins left.
func (s *Session) IsComplete() bool {
	return s.RemainingSpins <= 0 || !s.IsActive
}

// Progress returns completion percentage in [0,100].
func (s *Session) Progress() float64 {
	if s.TotalSpinsAwarded == 0 {
		return 100
	}
	return float64(s.SpinsCompleted) / float64(s.TotalSpinsAwarded) * 100
}
