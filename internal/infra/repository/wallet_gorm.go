package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/wallet"
)

// WalletGormRepository implements wallet.Repository using GORM.
type WalletGormRepository struct {
	db *gorm.DB
}

// NewWalletGormRepository creates a new GORM wallet repository.
func NewWalletGormRepository(db *gorm.DB) wallet.Repository {
	return &WalletGormRepository{db: db}
}

// GetAccount retrieves a player's wallet account, lazily creating one at a
// zero balance on first access.
func (r *WalletGormRepository) GetAccount(ctx context.Context, playerID uuid.UUID) (*wallet.Account, error) {
	db := GetDBOrTx(ctx, r.db)
	var account wallet.Account
	err := db.Where("player_id = ?", playerID).First(&account).Error
	if err == gorm.ErrRecordNotFound {
		account = wallet.Account{PlayerID: playerID, Balance: money.Zero}
		if err := db.Create(&account).Error; err != nil {
			return nil, fmt.Errorf("failed to create wallet account: %w", err)
		}
		return &account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet account: %w", err)
	}
	return &account, nil
}

// UpdateBalanceWithLock writes newBalance only if the row still carries
// expectedVersion, bumping the version atomically in the same statement.
func (r *WalletGormRepository) UpdateBalanceWithLock(ctx context.Context, playerID uuid.UUID, newBalance money.Amount, expectedVersion int) error {
	db := GetDBOrTx(ctx, r.db)
	result := db.Model(&wallet.Account{}).
		Where("player_id = ? AND lock_version = ?", playerID, expectedVersion).
		Updates(map[string]interface{}{
			"balance":      newBalance,
			"lock_version": expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return wallet.ErrNotFoundOrLockChanged
	}
	return nil
}

// RecordTransaction appends a ledger entry.
func (r *WalletGormRepository) RecordTransaction(ctx context.Context, tx wallet.Transaction) error {
	db := GetDBOrTx(ctx, r.db)
	if err := db.Create(&tx).Error; err != nil {
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a page of a player's ledger, newest first.
func (r *WalletGormRepository) ListTransactions(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]wallet.Transaction, error) {
	db := GetDBOrTx(ctx, r.db)
	var txs []wallet.Transaction
	err := db.Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txs, nil
}
