package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/infinitystorm/server/internal/spinresult"
)

// SpinResultGormRepository implements spinresult.Repository using GORM.
type SpinResultGormRepository struct {
	db *gorm.DB
}

// NewSpinResultGormRepository creates a new GORM spin result repository.
func NewSpinResultGormRepository(db *gorm.DB) spinresult.Repository {
	return &SpinResultGormRepository{db: db}
}

// Save persists an immutable SpinResult row.
func (r *SpinResultGormRepository) Save(ctx context.Context, result *spinresult.SpinResult) error {
	db := GetDBOrTx(ctx, r.db)
	if err := db.Create(result).Error; err != nil {
		return fmt.Errorf("failed to save spin result: %w", err)
	}
	return nil
}

// ListByPlayer returns a page of a player's spin history, newest first,
// along with the total row count for pagination.
func (r *SpinResultGormRepository) ListByPlayer(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]spinresult.SpinResult, int64, error) {
	db := GetDBOrTx(ctx, r.db)

	var total int64
	if err := db.Model(&spinresult.SpinResult{}).Where("player_id = ?", playerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count spin results: %w", err)
	}

	var results []spinresult.SpinResult
	err := db.Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list spin results: %w", err)
	}
	return results, total, nil
}
