// Package wallet implements atomic bet/win/adjustment operations over a
// player's balance, using optimistic concurrency (a LockVersion column) the
// way the base game's player service does, so concurrent requests for the
// same player never race a read-modify-write against the database.
package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/money"
)

var (
	// ErrInsufficientFunds is returned when a bet would take the balance negative.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	// ErrNotFoundOrLockChanged is returned when the optimistic-concurrency
	// update affected zero rows — another request updated the balance first.
	ErrNotFoundOrLockChanged = errors.New("wallet: not found or updated concurrently")
	// ErrInvalidAmount is returned for a non-positive bet/win amount where one
	// is required.
	ErrInvalidAmount = errors.New("wallet: amount must be positive")
)

// Account is the persisted balance record for a player.
type Account struct {
	PlayerID    uuid.UUID    `gorm:"type:uuid;primary_key" json:"playerId"`
	Balance     money.Amount `gorm:"type:varchar(32);not null" json:"balance"`
	LockVersion int          `gorm:"default:0" json:"-"`
	UpdatedAt   time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName pins the GORM table name.
func (Account) TableName() string { return "wallet_accounts" }

// TransactionKind classifies a single ledger entry.
type TransactionKind string

const (
	TxBet        TransactionKind = "bet"
	TxWin        TransactionKind = "win"
	TxAdjustment TransactionKind = "adjustment"
)

// Transaction is an immutable ledger entry recording one balance change.
type Transaction struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PlayerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"playerId"`
	Kind          TransactionKind `gorm:"type:varchar(16);not null" json:"kind"`
	Amount        money.Amount    `gorm:"type:varchar(32);not null" json:"amount"`
	BalanceAfter  money.Amount    `gorm:"type:varchar(32);not null" json:"balanceAfter"`
	SpinResultID  *uuid.UUID      `gorm:"type:uuid;index" json:"spinResultId,omitempty"`
	Reason        string          `gorm:"type:varchar(255)" json:"reason,omitempty"`
	CreatedAt     time.Time       `gorm:"default:CURRENT_TIMESTAMP;index" json:"createdAt"`
}

// TableName pins the GORM table name.
func (Transaction) TableName() string { return "wallet_transactions" }
