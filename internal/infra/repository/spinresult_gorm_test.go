package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/spinresult"
	"github.com/infinitystorm/server/internal/symbols"
)

func setupSpinResultTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE spin_results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			bet TEXT NOT NULL,
			balance_before TEXT NOT NULL,
			balance_after TEXT NOT NULL,
			initial_grid TEXT NOT NULL,
			final_grid TEXT NOT NULL,
			cascades TEXT,
			base_win TEXT DEFAULT '0.00',
			total_multiplier INTEGER DEFAULT 1,
			total_win TEXT DEFAULT '0.00',
			free_spins_awarded INTEGER DEFAULT 0,
			win_capped INTEGER DEFAULT 0,
			is_free_spin INTEGER DEFAULT 0,
			free_spins_session_id TEXT,
			free_spins_triggered INTEGER DEFAULT 0,
			scatter_count INTEGER DEFAULT 0,
			server_seed_hash TEXT NOT NULL,
			client_seed TEXT NOT NULL,
			nonce INTEGER NOT NULL,
			prev_spin_hash TEXT NOT NULL,
			spin_hash TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
	require.NoError(t, err)

	return db
}

func sampleJSONGrid() spinresult.JSONGrid {
	g := grid.New()
	for c := 0; c < grid.Cols; c++ {
		for r := 0; r < grid.Rows; r++ {
			g[c][r] = grid.Cell{Symbol: symbols.TimeGem}
		}
	}
	return spinresult.JSONGrid(g)
}

func testSpinResult(playerID uuid.UUID, spinHash string) *spinresult.SpinResult {
	return &spinresult.SpinResult{
		ID:             uuid.New(),
		SessionID:      uuid.New(),
		PlayerID:       playerID,
		Bet:            money.FromFloat(1),
		BalanceBefore:  money.FromFloat(100),
		BalanceAfter:   money.FromFloat(99),
		InitialGrid:    sampleJSONGrid(),
		FinalGrid:      sampleJSONGrid(),
		ServerSeedHash: "hash",
		ClientSeed:     "client",
		Nonce:          1,
		PrevSpinHash:   "prev",
		SpinHash:       spinHash,
	}
}

func TestSpinResultGormRepository_SavePersistsJSONGrids(t *testing.T) {
	db := setupSpinResultTestDB(t)
	repo := NewSpinResultGormRepository(db)
	ctx := context.Background()
	playerID := uuid.New()

	r := testSpinResult(playerID, "spin-hash-1")
	require.NoError(t, repo.Save(ctx, r))

	results, total, err := repo.ListByPlayer(ctx, playerID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, symbols.TimeGem, results[0].InitialGrid[0][0].Symbol)
}

func TestSpinResultGormRepository_ListByPlayer_NewestFirst(t *testing.T) {
	db := setupSpinResultTestDB(t)
	repo := NewSpinResultGormRepository(db)
	ctx := context.Background()
	playerID := uuid.New()

	first := testSpinResult(playerID, "spin-hash-a")
	first.CreatedAt = time.Now().Add(-time.Minute).UTC()
	require.NoError(t, repo.Save(ctx, first))
	second := testSpinResult(playerID, "spin-hash-b")
	second.CreatedAt = time.Now().UTC()
	require.NoError(t, repo.Save(ctx, second))

	results, total, err := repo.ListByPlayer(ctx, playerID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, results, 2)
	assert.Equal(t, "spin-hash-b", results[0].SpinHash)
}

func TestSpinResultGormRepository_ListByPlayer_ScopedToPlayer(t *testing.T) {
	db := setupSpinResultTestDB(t)
	repo := NewSpinResultGormRepository(db)
	ctx := context.Background()
	playerA := uuid.New()
	playerB := uuid.New()

	require.NoError(t, repo.Save(ctx, testSpinResult(playerA, "spin-hash-x")))
	require.NoError(t, repo.Save(ctx, testSpinResult(playerB, "spin-hash-y")))

	results, total, err := repo.ListByPlayer(ctx, playerA, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, playerA, results[0].PlayerID)
}
