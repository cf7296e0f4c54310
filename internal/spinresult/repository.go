package spinresult

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists immutable SpinResult rows and serves paginated
// history reads, matching the base game's spin-history pagination pattern.
type Repository interface {
	Save(ctx context.Context, r *SpinResult) error
	// ListByPlayer returns a page of a player's spin history, newest first,
	// and the total number of rows matching the player regardless of page.
	ListByPlayer(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]SpinResult, int64, error)
}
