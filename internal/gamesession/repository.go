package gamesession

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists the per-player Session row. The free-spin sub-state
// is marshalled alongside it (see FreeSpinState in model.go); the GORM-backed
// implementation lives in internal/infra/repository.
type Repository interface {
	// GetByPlayer returns the live session for playerID, or
	// ErrNotFound if the player has no session yet.
	GetByPlayer(ctx context.Context, playerID uuid.UUID) (*Session, error)
	Create(ctx context.Context, s *Session) error
	Save(ctx context.Context, s *Session) error
}
