package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/money"
)

// Repository persists wallet accounts and their transaction ledger. The
// GORM-backed implementation lives in internal/infra/repository.
type Repository interface {
	GetAccount(ctx context.Context, playerID uuid.UUID) (*Account, error)
	// UpdateBalanceWithLock writes newBalance only if the row's current
	// LockVersion still matches expectedVersion, atomically bumping the
	// version. Zero rows affected means another request already won the
	// race, and the caller must retry or surface ErrNotFoundOrLockChanged.
	UpdateBalanceWithLock(ctx context.Context, playerID uuid.UUID, newBalance money.Amount, expectedVersion int) error
	RecordTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]Transaction, error)
}
