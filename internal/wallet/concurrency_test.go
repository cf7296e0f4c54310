package wallet

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/pkg/logger"
)

// lockingFakeRepository is a goroutine-safe Repository backed by a map, with
// each method taking the whole-map mutex for the duration of its single
// read-modify-write — the same per-statement atomicity an optimistic-lock
// UPDATE ... WHERE lock_version = ? gets from the database, without actually
// serializing the caller's GetAccount-then-UpdateBalanceWithLock sequence.
type lockingFakeRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
}

func newLockingFakeRepository() *lockingFakeRepository {
	return &lockingFakeRepository{accounts: make(map[uuid.UUID]*Account)}
}

func (f *lockingFakeRepository) GetAccount(_ context.Context, playerID uuid.UUID) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[playerID]
	if !ok {
		a = &Account{PlayerID: playerID, Balance: money.Zero}
		f.accounts[playerID] = a
	}
	cp := *a
	return &cp, nil
}

func (f *lockingFakeRepository) UpdateBalanceWithLock(_ context.Context, playerID uuid.UUID, newBalance money.Amount, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[playerID]
	if !ok || a.LockVersion != expectedVersion {
		return ErrNotFoundOrLockChanged
	}
	a.Balance = newBalance
	a.LockVersion++
	return nil
}

func (f *lockingFakeRepository) RecordTransaction(_ context.Context, tx Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil
}

func (f *lockingFakeRepository) ListTransactions(_ context.Context, playerID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return nil, nil
}

// TestDeductBet_ConcurrentBetsOnlyFloorBalanceOverBetSucceed fires more
// concurrent DeductBet calls against one account than its balance can cover
// and asserts exactly floor(balance/bet) succeed, the rest failing with
// ErrInsufficientFunds and no balance side effect.
func TestDeductBet_ConcurrentBetsOnlyFloorBalanceOverBetSucceed(t *testing.T) {
	repo := newLockingFakeRepository()
	svc := NewService(repo, logger.New("error", "json"))

	playerID := uuid.New()
	bet := money.FromFloat(1.00)
	startingBalance := money.FromFloat(4.00)
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: startingBalance}

	const attempts = 5 // one more than floor(4.00/1.00) = 4, to keep lock contention shallow
	var succeeded, insufficientFunds, otherErr int64
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.DeductBet(context.Background(), playerID, bet)
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case err == ErrInsufficientFunds:
				atomic.AddInt64(&insufficientFunds, 1)
			default:
				atomic.AddInt64(&otherErr, 1)
			}
		}()
	}
	wg.Wait()

	require.Zero(t, otherErr, "no attempt should fail with a lock-retry exhaustion error")
	assert.EqualValues(t, 4, succeeded)
	assert.EqualValues(t, attempts-4, insufficientFunds)

	final, err := svc.GetBalance(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, money.Zero, final)
}
