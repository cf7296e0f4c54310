package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/infinitystorm/server/internal/gamesession"
)

// GameSessionGormRepository implements gamesession.Repository using GORM.
type GameSessionGormRepository struct {
	db *gorm.DB
}

// NewGameSessionGormRepository creates a new GORM game session repository.
func NewGameSessionGormRepository(db *gorm.DB) gamesession.Repository {
	return &GameSessionGormRepository{db: db}
}

// GetByPlayer retrieves the live session for playerID.
func (r *GameSessionGormRepository) GetByPlayer(ctx context.Context, playerID uuid.UUID) (*gamesession.Session, error) {
	db := GetDBOrTx(ctx, r.db)
	var session gamesession.Session
	err := db.Where("player_id = ?", playerID).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, gamesession.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return &session, nil
}

// Create inserts a new session row.
func (r *GameSessionGormRepository) Create(ctx context.Context, s *gamesession.Session) error {
	db := GetDBOrTx(ctx, r.db)
	if err := db.Create(s).Error; err != nil {
		return fmt.Errorf("failed to create game session: %w", err)
	}
	return nil
}

// Save persists the full session row, including the nested free-spin state.
func (r *GameSessionGormRepository) Save(ctx context.Context, s *gamesession.Session) error {
	db := GetDBOrTx(ctx, r.db)
	if err := db.Save(s).Error; err != nil {
		return fmt.Errorf("failed to save game session: %w", err)
	}
	return nil
}
