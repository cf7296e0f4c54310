package gamesession

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/config"
	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/freespins"
	"github.com/infinitystorm/server/internal/money"
	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/rng"
	"github.com/infinitystorm/server/internal/spinresult"
	"github.com/infinitystorm/server/internal/wallet"
)

// Outcome is what the HTTP/WS boundary needs out of one spin: the
// persisted SpinResult plus the live session fields a client renders
// alongside it.
type Outcome struct {
	Result             *spinresult.SpinResult
	Balance            money.Amount
	FreeSpinsActive     bool
	FreeSpinsRemaining int
	FreeSpinsTotal      int
}

// SpinCache hands a spin's full cascade computation to the cascade-sync
// transport so a client's WebSocket session can replay it step by step
// without the engine recomputing anything.
type SpinCache interface {
	Store(ctx context.Context, spinID uuid.UUID, computation *engine.SpinComputation) error
}

// TxRunner executes fn atomically. Spin uses it to make the session-state
// save and the SpinResult save an all-or-nothing pair, so a crash between
// the two never leaves a persisted result with no matching session advance
// (or vice versa). Implemented by the GORM transaction manager.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the C6 orchestrator: it owns a player's live Session and drives
// a spin end-to-end — bet deduction, grid engine dispatch, free-spin
// lifecycle, win credit, and SpinResult persistence — under a per-player
// serialization lock so only one spin is ever in flight for a given player.
type Service struct {
	repo        Repository
	spinResults spinresult.Repository
	wallet      *wallet.Service
	engine      *engine.GridEngine
	hashChain   *rng.HashChain
	spinCache   SpinCache
	txRunner    TxRunner
	log         *logger.Logger
	cfg         config.GameConfig

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

// NewService constructs a gamesession Service. spinCache may be nil, in
// which case cascade-sync replay is unavailable and clients must render the
// spin result directly without a step-by-step socket session. txRunner may
// be nil, in which case the session save and SpinResult save happen as two
// separate, non-atomic writes.
func NewService(repo Repository, spinResults spinresult.Repository, w *wallet.Service, e *engine.GridEngine, hashChain *rng.HashChain, spinCache SpinCache, txRunner TxRunner, log *logger.Logger, cfg config.GameConfig) *Service {
	return &Service{
		repo:        repo,
		spinResults: spinResults,
		wallet:      w,
		engine:      e,
		hashChain:   hashChain,
		spinCache:   spinCache,
		txRunner:    txRunner,
		log:         log,
		cfg:         cfg,
		locks:       make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) lockFor(playerID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	return l
}

// GetOrCreate returns the player's live session, committing a fresh
// provably-fair seed chain the first time a player is seen.
func (s *Service) GetOrCreate(ctx context.Context, playerID uuid.UUID) (*Session, error) {
	session, err := s.repo.GetByPlayer(ctx, playerID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("gamesession: get session: %w", err)
	}

	serverSeed, err := s.hashChain.GenerateServerSeed()
	if err != nil {
		return nil, fmt.Errorf("gamesession: generate server seed: %w", err)
	}
	clientSeed, err := s.hashChain.GenerateClientSeed()
	if err != nil {
		return nil, fmt.Errorf("gamesession: generate client seed: %w", err)
	}
	serverSeedHash := s.hashChain.HashServerSeed(serverSeed)

	balance, err := s.wallet.GetBalance(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("gamesession: get starting balance: %w", err)
	}

	session = &Session{
		ID:              uuid.New(),
		PlayerID:        playerID,
		ServerSeed:      serverSeed,
		ServerSeedHash:  serverSeedHash,
		ClientSeed:      clientSeed,
		Nonce:           0,
		PrevSpinHash:    s.hashChain.GenerateInitialPrevSpinHash(serverSeedHash),
		StartingBalance: balance,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("gamesession: create session: %w", err)
	}
	return session, nil
}

// validateBet rejects a client-supplied bet outside the configured
// min/max/step, mirroring the base game's bet-validation rule.
func (s *Service) validateBet(bet money.Amount) error {
	if s.cfg.MinBet > 0 && bet.Float64() < s.cfg.MinBet {
		return ErrInvalidBet
	}
	if s.cfg.MaxBet > 0 && bet.Float64() > s.cfg.MaxBet {
		return ErrInvalidBet
	}
	if s.cfg.BetStep > 0 {
		steps := bet.Float64() / s.cfg.BetStep
		if d := steps - float64(int64(steps+0.5)); d > 1e-6 || d < -1e-6 {
			return ErrInvalidBet
		}
	}
	return nil
}

// Spin executes one spin for playerID: it deducts the bet (unless a
// free-spin round is paying for it), runs the deterministic cascade engine
// seeded from the next link of the player's hash chain, settles the win,
// advances or starts/ends the free-spin round, and persists the result.
func (s *Service) Spin(ctx context.Context, playerID uuid.UUID, bet money.Amount) (*Outcome, error) {
	lock := s.lockFor(playerID)
	if !lock.TryLock() {
		return nil, ErrSpinInProgress
	}
	defer lock.Unlock()

	session, err := s.GetOrCreate(ctx, playerID)
	if err != nil {
		return nil, err
	}

	inFreeSpins := session.FreeSpin.Session != nil && session.FreeSpinsActive
	if inFreeSpins {
		bet = session.FreeSpin.LockedBetAmount
	} else if err := s.validateBet(bet); err != nil {
		return nil, err
	}

	balanceBefore, err := s.wallet.GetBalance(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("gamesession: get balance: %w", err)
	}

	if !inFreeSpins {
		if _, err := s.wallet.DeductBet(ctx, playerID, bet); err != nil {
			return nil, err
		}
	}

	nonce := session.NextNonce()
	prevSpinHash := session.PrevSpinHash
	spinHash := s.hashChain.GenerateSpinHash(prevSpinHash, session.ServerSeed, session.ClientSeed, nonce)
	r := rng.NewSeededRNG(spinHash)

	var out *engine.Outcome
	if inFreeSpins {
		out, err = s.engine.SpinFreeSpin(r, bet, session.FreeSpin.RemainingSpins, session.FreeSpin.Accumulator.Carried)
	} else {
		out, err = s.engine.SpinBase(r, bet)
	}
	if err != nil {
		if !inFreeSpins {
			// Refund the bet: the grid engine failed before producing a
			// chargeable outcome, so the player was never at risk for it.
			if _, refundErr := s.wallet.Adjust(ctx, playerID, bet, "spin engine failure refund"); refundErr != nil {
				s.log.Error().Err(refundErr).Str("player_id", playerID.String()).Msg("gamesession: bet refund failed after engine error")
			}
		}
		return nil, fmt.Errorf("gamesession: %w", err)
	}

	spinResultID := uuid.New()
	if s.spinCache != nil {
		if err := s.spinCache.Store(ctx, spinResultID, out.Computation); err != nil {
			s.log.Warn().Err(err).Str("spin_id", spinResultID.String()).Msg("gamesession: failed to cache spin computation for cascade sync")
		}
	}
	balanceAfter := balanceBefore
	if out.FinalWin > money.Zero {
		balanceAfter, err = s.wallet.CreditWin(ctx, playerID, out.FinalWin, spinResultID)
		if err != nil {
			return nil, fmt.Errorf("gamesession: credit win: %w", err)
		}
	} else if !inFreeSpins {
		balanceAfter, err = s.wallet.GetBalance(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("gamesession: get balance: %w", err)
		}
	}

	var freeSpinsSessionID *uuid.UUID
	freeSpinsTotal := 0

	switch {
	case inFreeSpins:
		fs := session.FreeSpin.Session
		fs.ExecuteSpin(out.FinalWin)
		if out.Retrigger != nil && out.Retrigger.Retriggered {
			fs.AddRetriggerSpins(out.Retrigger.AdditionalSpins)
		}
		fs.Accumulator.Commit(out.Computation.InjectedMultSum)
		id := fs.ID
		freeSpinsSessionID = &id
		freeSpinsTotal = fs.TotalSpinsAwarded
		if fs.IsComplete() {
			session.FreeSpinsActive = false
			session.FreeSpin.Session = nil
		}
	case out.Trigger.Triggered:
		fs := freespins.NewSession(playerID, out.Trigger.ScatterCount, bet)
		session.FreeSpin.Session = fs
		session.FreeSpinsActive = true
		id := fs.ID
		freeSpinsSessionID = &id
		freeSpinsTotal = fs.TotalSpinsAwarded
	}

	session.PrevSpinHash = spinHash
	session.TotalWagered = session.TotalWagered.Add(bet)
	session.TotalWon = session.TotalWon.Add(out.FinalWin)

	result := spinresult.Build(session.ID, playerID, bet, balanceBefore, balanceAfter, out, freeSpinsSessionID, spinresult.Provenance{
		ServerSeedHash: session.ServerSeedHash,
		ClientSeed:     session.ClientSeed,
		Nonce:          nonce,
		PrevSpinHash:   prevSpinHash,
		SpinHash:       spinHash,
	})
	result.ID = spinResultID

	persist := func(ctx context.Context) error {
		if err := s.repo.Save(ctx, session); err != nil {
			return fmt.Errorf("gamesession: save session: %w", err)
		}
		if err := s.spinResults.Save(ctx, &result); err != nil {
			return fmt.Errorf("gamesession: save spin result: %w", err)
		}
		return nil
	}
	if s.txRunner != nil {
		if err := s.txRunner.WithTransaction(ctx, persist); err != nil {
			return nil, err
		}
	} else if err := persist(ctx); err != nil {
		return nil, err
	}

	remaining := 0
	active := session.FreeSpinsActive
	if active {
		remaining = session.FreeSpin.RemainingSpins
	}

	return &Outcome{
		Result:             &result,
		Balance:            balanceAfter,
		FreeSpinsActive:     active,
		FreeSpinsRemaining: remaining,
		FreeSpinsTotal:      freeSpinsTotal,
	}, nil
}

// History returns a page of a player's spin history, newest first.
func (s *Service) History(ctx context.Context, playerID uuid.UUID, limit, offset int) ([]spinresult.SpinResult, int64, error) {
	return s.spinResults.ListByPlayer(ctx, playerID, limit, offset)
}
