package sync

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/pkg/logger"
)

// Synchronizer owns the live registry of SyncSessions, matching the base
// game's in-process session bookkeeping style but keyed by sync session ID
// rather than player ID, since a player may in principle hold more than one
// in-flight sync session across devices.
type Synchronizer struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	log      *logger.Logger

	maxRetries int
}

// NewSynchronizer constructs a Synchronizer. maxRetries bounds both step
// ack retries and recovery-plan retries.
func NewSynchronizer(maxRetries int, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		sessions:   make(map[uuid.UUID]*Session),
		log:        log,
		maxRetries: maxRetries,
	}
}

// Open registers a new SyncSession for a computed spin and moves it to
// broadcasting.
func (sy *Synchronizer) Open(spinID, playerID uuid.UUID, validationSalt, syncSeed string, totalSteps int) (*Session, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()

	sess := NewSession(spinID, playerID, validationSalt, syncSeed, totalSteps)
	if err := sess.Start(); err != nil {
		return nil, err
	}
	sy.sessions[sess.ID] = sess

	sy.log.Info().
		Str("sync_session_id", sess.ID.String()).
		Str("player_id", playerID.String()).
		Int("total_steps", totalSteps).
		Msg("sync session opened")

	return sess, nil
}

// Get returns the live session for an ID, or an error if unknown.
func (sy *Synchronizer) Get(id uuid.UUID) (*Session, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return nil, fmt.Errorf("sync: unknown session %s", id)
	}
	return sess, nil
}

// Ack applies a client acknowledgment to the named session.
func (sy *Synchronizer) Ack(id uuid.UUID, stepIndex int, clientHash string) (*Session, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return nil, fmt.Errorf("sync: unknown session %s", id)
	}
	if err := sess.Ack(stepIndex, clientHash); err != nil {
		return nil, err
	}
	if sess.Status == StatusCompleted {
		sy.log.Info().Str("sync_session_id", id.String()).Msg("sync session completed")
	}
	return sess, nil
}

// Timeout applies a missed acknowledgment to the named session's current
// step.
func (sy *Synchronizer) Timeout(id uuid.UUID) (*Session, bool, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return nil, false, fmt.Errorf("sync: unknown session %s", id)
	}
	_, exhausted, err := sess.Timeout(sy.maxRetries)
	if err != nil {
		return nil, false, err
	}
	if exhausted {
		sy.log.Warn().Str("sync_session_id", id.String()).Int("step", sess.CurrentStep).Msg("ack retries exhausted, entering recovery")
	}
	return sess, exhausted, nil
}

// ReportDesync builds and attaches a recovery plan for a client-reported
// mismatch.
func (sy *Synchronizer) ReportDesync(id uuid.UUID, desyncType DesyncType, stepIndex int, authoritativeGridAfter, authoritativeStep, authoritativeTimings interface{}) (*RecoveryPlan, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return nil, fmt.Errorf("sync: unknown session %s", id)
	}
	plan, err := sess.BuildRecoveryPlan(desyncType, stepIndex, authoritativeGridAfter, authoritativeStep, authoritativeTimings)
	if err != nil {
		return nil, err
	}
	sy.log.Warn().
		Str("sync_session_id", id.String()).
		Str("desync_type", string(desyncType)).
		Str("recovery_kind", string(plan.Kind)).
		Msg("desync reported, recovery plan built")
	return plan, nil
}

// ApplyRecoveryResult records the client's recovery outcome.
func (sy *Synchronizer) ApplyRecoveryResult(id uuid.UUID, ok bool) (*Session, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, exists := sy.sessions[id]
	if !exists {
		return nil, fmt.Errorf("sync: unknown session %s", id)
	}
	if err := sess.ApplyRecoveryResult(ok, sy.maxRetries); err != nil {
		return nil, err
	}
	return sess, nil
}

// ForceResync resets a session to restart broadcast from fromStep.
func (sy *Synchronizer) ForceResync(id uuid.UUID, fromStep int) (*Session, error) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return nil, fmt.Errorf("sync: unknown session %s", id)
	}
	if err := sess.ForceResync(fromStep); err != nil {
		return nil, err
	}
	return sess, nil
}

// Close removes a session from the registry, marking it failed first if it
// had not already reached a terminal state. Used on socket disconnect.
func (sy *Synchronizer) Close(id uuid.UUID) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	sess, ok := sy.sessions[id]
	if !ok {
		return
	}
	if !sess.IsTerminal() {
		sess.Fail()
		sy.log.Warn().Str("sync_session_id", id.String()).Msg("sync session failed on disconnect")
	}
	delete(sy.sessions, id)
}

// ClosePlayerSessions fails and removes every SyncSession owned by a
// player, used when the player's socket disconnects.
func (sy *Synchronizer) ClosePlayerSessions(playerID uuid.UUID) {
	sy.mu.Lock()
	defer sy.mu.Unlock()
	for id, sess := range sy.sessions {
		if sess.PlayerID != playerID {
			continue
		}
		if !sess.IsTerminal() {
			sess.Fail()
		}
		delete(sy.sessions, id)
	}
}
