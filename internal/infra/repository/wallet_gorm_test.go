package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/wallet"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE wallet_accounts (
			player_id TEXT PRIMARY KEY,
			balance TEXT NOT NULL,
			lock_version INTEGER DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE wallet_transactions (
			id TEXT PRIMARY KEY,
			player_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			amount TEXT NOT NULL,
			balance_after TEXT NOT NULL,
			spin_result_id TEXT,
			reason TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestWalletGormRepository_GetAccount_CreatesAtZeroBalanceOnFirstAccess(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewWalletGormRepository(db)
	playerID := uuid.New()

	account, err := repo.GetAccount(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, playerID, account.PlayerID)
	assert.Equal(t, money.Zero, account.Balance)

	again, err := repo.GetAccount(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, account.PlayerID, again.PlayerID)
}

func TestWalletGormRepository_UpdateBalanceWithLock_RejectsStaleVersion(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewWalletGormRepository(db)
	playerID := uuid.New()
	ctx := context.Background()

	_, err := repo.GetAccount(ctx, playerID)
	require.NoError(t, err)

	err = repo.UpdateBalanceWithLock(ctx, playerID, money.FromFloat(50), 0)
	require.NoError(t, err)

	// Replaying the same expected version a second time must fail: the row
	// already advanced to lock_version 1.
	err = repo.UpdateBalanceWithLock(ctx, playerID, money.FromFloat(75), 0)
	assert.ErrorIs(t, err, wallet.ErrNotFoundOrLockChanged)

	account, err := repo.GetAccount(ctx, playerID)
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(50), account.Balance)
}

func TestWalletGormRepository_RecordAndListTransactions(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewWalletGormRepository(db)
	playerID := uuid.New()
	ctx := context.Background()

	tx := wallet.Transaction{
		ID:           uuid.New(),
		PlayerID:     playerID,
		Kind:         wallet.TxBet,
		Amount:       money.FromFloat(1),
		BalanceAfter: money.FromFloat(99),
	}
	require.NoError(t, repo.RecordTransaction(ctx, tx))

	txs, err := repo.ListTransactions(ctx, playerID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, wallet.TxBet, txs[0].Kind)
}
