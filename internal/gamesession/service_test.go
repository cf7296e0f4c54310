package gamesession

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infinitystorm/server/internal/config"
	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/spinresult"
	"github.com/infinitystorm/server/internal/wallet"
)

// fakeRepository is an in-memory gamesession.Repository for tests.
type fakeRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{sessions: make(map[uuid.UUID]*Session)}
}

func (f *fakeRepository) GetByPlayer(_ context.Context, playerID uuid.UUID) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (f *fakeRepository) Create(_ context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.PlayerID] = s
	return nil
}

func (f *fakeRepository) Save(_ context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.PlayerID] = s
	return nil
}

// fakeWalletRepository is an in-memory wallet.Repository for tests,
// mirroring the lazy-create-at-zero-balance behavior of the GORM repo.
type fakeWalletRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*wallet.Account
	txs      []wallet.Transaction
}

func newFakeWalletRepository() *fakeWalletRepository {
	return &fakeWalletRepository{accounts: make(map[uuid.UUID]*wallet.Account)}
}

func (f *fakeWalletRepository) GetAccount(_ context.Context, playerID uuid.UUID) (*wallet.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[playerID]
	if !ok {
		a = &wallet.Account{PlayerID: playerID, Balance: money.Zero}
		f.accounts[playerID] = a
	}
	return a, nil
}

func (f *fakeWalletRepository) UpdateBalanceWithLock(_ context.Context, playerID uuid.UUID, newBalance money.Amount, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[playerID]
	if !ok || a.LockVersion != expectedVersion {
		return wallet.ErrNotFoundOrLockChanged
	}
	a.Balance = newBalance
	a.LockVersion++
	return nil
}

func (f *fakeWalletRepository) RecordTransaction(_ context.Context, tx wallet.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, tx)
	return nil
}

func (f *fakeWalletRepository) ListTransactions(_ context.Context, playerID uuid.UUID, limit, offset int) ([]wallet.Transaction, error) {
	return nil, nil
}

// fakeSpinResultRepository is an in-memory spinresult.Repository for tests.
type fakeSpinResultRepository struct {
	mu      sync.Mutex
	results []spinresult.SpinResult
}

func newFakeSpinResultRepository() *fakeSpinResultRepository {
	return &fakeSpinResultRepository{}
}

func (f *fakeSpinResultRepository) Save(_ context.Context, r *spinresult.SpinResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, *r)
	return nil
}

func (f *fakeSpinResultRepository) ListByPlayer(_ context.Context, playerID uuid.UUID, limit, offset int) ([]spinresult.SpinResult, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results, int64(len(f.results)), nil
}

func newTestService(t *testing.T) (*Service, *fakeWalletRepository) {
	t.Helper()
	log := logger.New("error", "json")
	walletRepo := newFakeWalletRepository()
	svc := NewService(
		newFakeRepository(),
		newFakeSpinResultRepository(),
		wallet.NewService(walletRepo, log),
		engine.NewGridEngine(),
		rng.NewHashChain(),
		nil,
		nil,
		log,
		config.GameConfig{MinBet: 0.20, MaxBet: 100, BetStep: 0.20, DefaultBalance: 1000},
	)
	return svc, walletRepo
}

func TestGetOrCreate_ProvisionsSeedChainOnFirstSeen(t *testing.T) {
	svc, _ := newTestService(t)
	playerID := uuid.New()

	sess, err := svc.GetOrCreate(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, playerID, sess.PlayerID)
	assert.NotEmpty(t, sess.ServerSeed)
	assert.NotEmpty(t, sess.ServerSeedHash)
	assert.Equal(t, sess.ServerSeedHash, sess.PrevSpinHash)

	again, err := svc.GetOrCreate(context.Background(), playerID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, again.ID)
	assert.Equal(t, sess.ServerSeed, again.ServerSeed)
}

func TestSpin_RejectsBetOutsideConfiguredRange(t *testing.T) {
	svc, walletRepo := newTestService(t)
	playerID := uuid.New()
	walletRepo.accounts[playerID] = &wallet.Account{PlayerID: playerID, Balance: money.FromFloat(100)}

	_, err := svc.Spin(context.Background(), playerID, money.FromFloat(0.01))
	assert.ErrorIs(t, err, ErrInvalidBet)
}

func TestSpin_RejectsInsufficientBalance(t *testing.T) {
	svc, walletRepo := newTestService(t)
	playerID := uuid.New()
	walletRepo.accounts[playerID] = &wallet.Account{PlayerID: playerID, Balance: money.FromFloat(0.10)}

	_, err := svc.Spin(context.Background(), playerID, money.FromFloat(1.0))
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
}

func TestSpin_DeductsBetAndPersistsResult(t *testing.T) {
	svc, walletRepo := newTestService(t)
	playerID := uuid.New()
	walletRepo.accounts[playerID] = &wallet.Account{PlayerID: playerID, Balance: money.FromFloat(100)}

	bet := money.FromFloat(1.0)
	outcome, err := svc.Spin(context.Background(), playerID, bet)
	require.NoError(t, err)
	require.NotNil(t, outcome.Result)

	account := walletRepo.accounts[playerID]
	expected := money.FromFloat(100).Sub(bet).Add(outcome.Result.TotalWin)
	assert.Equal(t, expected, account.Balance)
}

func TestSpin_RejectsConcurrentSpinForSamePlayer(t *testing.T) {
	svc, walletRepo := newTestService(t)
	playerID := uuid.New()
	walletRepo.accounts[playerID] = &wallet.Account{PlayerID: playerID, Balance: money.FromFloat(100)}

	lock := svc.lockFor(playerID)
	require.True(t, lock.TryLock())
	defer lock.Unlock()

	_, err := svc.Spin(context.Background(), playerID, money.FromFloat(1.0))
	assert.ErrorIs(t, err, ErrSpinInProgress)
}
