package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/pkg/logger"
)

type fakeRepository struct {
	accounts map[uuid.UUID]*Account
	txs      []Transaction
	// conflictsLeft forces UpdateBalanceWithLock to fail this many times
	// before succeeding, to exercise the optimistic-lock retry path.
	conflictsLeft int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{accounts: make(map[uuid.UUID]*Account)}
}

func (f *fakeRepository) GetAccount(_ context.Context, playerID uuid.UUID) (*Account, error) {
	a, ok := f.accounts[playerID]
	if !ok {
		a = &Account{PlayerID: playerID, Balance: money.Zero}
		f.accounts[playerID] = a
	}
	return a, nil
}

func (f *fakeRepository) UpdateBalanceWithLock(_ context.Context, playerID uuid.UUID, newBalance money.Amount, expectedVersion int) error {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return ErrNotFoundOrLockChanged
	}
	a := f.accounts[playerID]
	if a.LockVersion != expectedVersion {
		return ErrNotFoundOrLockChanged
	}
	a.Balance = newBalance
	a.LockVersion++
	return nil
}

func (f *fakeRepository) RecordTransaction(_ context.Context, tx Transaction) error {
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeRepository) ListTransactions(_ context.Context, playerID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return f.txs, nil
}

func newTestService() (*Service, *fakeRepository) {
	repo := newFakeRepository()
	return NewService(repo, logger.New("error", "json")), repo
}

func TestDeductBet_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.DeductBet(context.Background(), uuid.New(), money.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDeductBet_RejectsWhenBalanceWouldGoNegative(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(1)}

	_, err := svc.DeductBet(context.Background(), playerID, money.FromFloat(5))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestDeductBet_DeductsAndRecordsTransaction(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(100)}

	balance, err := svc.DeductBet(context.Background(), playerID, money.FromFloat(10))
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(90), balance)
	require.Len(t, repo.txs, 1)
	assert.Equal(t, TxBet, repo.txs[0].Kind)
}

func TestCreditWin_ZeroWinIsNoOp(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(50)}

	balance, err := svc.CreditWin(context.Background(), playerID, money.Zero, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(50), balance)
	assert.Empty(t, repo.txs)
}

func TestCreditWin_CreditsBalance(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(50)}

	balance, err := svc.CreditWin(context.Background(), playerID, money.FromFloat(25), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(75), balance)
	require.Len(t, repo.txs, 1)
	assert.Equal(t, TxWin, repo.txs[0].Kind)
}

func TestMutate_RetriesOnLockConflictThenSucceeds(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(50)}
	repo.conflictsLeft = 2

	balance, err := svc.Adjust(context.Background(), playerID, money.FromFloat(10), "support credit")
	require.NoError(t, err)
	assert.Equal(t, money.FromFloat(60), balance)
}

func TestMutate_GivesUpAfterMaxRetries(t *testing.T) {
	svc, repo := newTestService()
	playerID := uuid.New()
	repo.accounts[playerID] = &Account{PlayerID: playerID, Balance: money.FromFloat(50)}
	repo.conflictsLeft = maxLockRetries

	_, err := svc.Adjust(context.Background(), playerID, money.FromFloat(10), "support credit")
	assert.ErrorIs(t, err, ErrNotFoundOrLockChanged)
}
