package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/pkg/logger"
)

// maxLockRetries bounds how many attempts (the first try included) a
// bet/win/adjustment makes against optimistic-concurrency races before
// giving up and surfacing the conflict to the caller.
const maxLockRetries = 3

// Service performs atomic balance mutations, retrying on optimistic-lock
// conflicts the way the base game's player service does for UpdateBalance.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService constructs a wallet Service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) mutate(ctx context.Context, playerID uuid.UUID, kind TransactionKind, delta money.Amount, spinResultID *uuid.UUID, reason string) (money.Amount, error) {
	var lastErr error
	for attempt := 0; attempt < maxLockRetries; attempt++ {
		account, err := s.repo.GetAccount(ctx, playerID)
		if err != nil {
			return 0, fmt.Errorf("wallet: get account: %w", err)
		}

		newBalance := account.Balance.Add(delta)
		if newBalance.IsNegative() {
			return 0, ErrInsufficientFunds
		}

		if err := s.repo.UpdateBalanceWithLock(ctx, playerID, newBalance, account.LockVersion); err != nil {
			lastErr = err
			s.log.Warn().Str("player_id", playerID.String()).Int("attempt", attempt).Msg("wallet: optimistic lock conflict, retrying")
			continue
		}

		if err := s.repo.RecordTransaction(ctx, Transaction{
			ID:           uuid.New(),
			PlayerID:     playerID,
			Kind:         kind,
			Amount:       delta,
			BalanceAfter: newBalance,
			SpinResultID: spinResultID,
			Reason:       reason,
		}); err != nil {
			return 0, fmt.Errorf("wallet: record transaction: %w", err)
		}

		return newBalance, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrNotFoundOrLockChanged, lastErr)
}

// DeductBet atomically removes bet from a player's balance.
func (s *Service) DeductBet(ctx context.Context, playerID uuid.UUID, bet money.Amount) (money.Amount, error) {
	if !bet.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return s.mutate(ctx, playerID, TxBet, bet.MulInt(-1), nil, "spin bet")
}

// CreditWin atomically adds a win amount to a player's balance. A zero win
// is a no-op, matching the base game's behavior.
func (s *Service) CreditWin(ctx context.Context, playerID uuid.UUID, win money.Amount, spinResultID uuid.UUID) (money.Amount, error) {
	if win.IsNegative() {
		return 0, ErrInvalidAmount
	}
	if win == money.Zero {
		account, err := s.repo.GetAccount(ctx, playerID)
		if err != nil {
			return 0, fmt.Errorf("wallet: get account: %w", err)
		}
		return account.Balance, nil
	}
	return s.mutate(ctx, playerID, TxWin, win, &spinResultID, "spin win")
}

// Adjust applies a manual balance adjustment (e.g. a support correction).
func (s *Service) Adjust(ctx context.Context, playerID uuid.UUID, delta money.Amount, reason string) (money.Amount, error) {
	return s.mutate(ctx, playerID, TxAdjustment, delta, nil, reason)
}

// GetBalance returns the player's current balance.
func (s *Service) GetBalance(ctx context.Context, playerID uuid.UUID) (money.Amount, error) {
	account, err := s.repo.GetAccount(ctx, playerID)
	if err != nil {
		return 0, fmt.Errorf("wallet: get account: %w", err)
	}
	return account.Balance, nil
}

// GetTransactions returns a page of a player's transaction history, newest
// first, matching the base game's spin-history pagination pattern.
func (s *Service) GetTransactions(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return s.repo.ListTransactions(ctx, playerID, limit, offset)
}
