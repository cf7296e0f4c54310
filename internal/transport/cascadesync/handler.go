package cascadesync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/engine"
	"github.com/infinitystorm/server/internal/grid"
	"github.com/infinitystorm/server/internal/pkg/logger"
	syncengine "github.com/infinitystorm/server/internal/sync"
	"github.com/infinitystorm/server/internal/validator"
)

// SpinProvider resolves the already-computed cascade steps for a spin a
// client wants to synchronize. The handler never recomputes a spin; it
// only replays what the engine already produced.
type SpinProvider interface {
	Computation(spinID uuid.UUID) (*engine.SpinComputation, bool)
}

// DesyncBus fans desync/force-resync events out to other server instances.
// The CascadeSynchronizer is process-local (§5 serialization region), so a
// cluster-wide monitor needs this to observe recovery activity happening on
// sockets it doesn't own.
type DesyncBus interface {
	Publish(channel string, payload any) error
}

const desyncEventsChannel = "cascadesync:desync"

// Handler wires inbound wire events to the CascadeSynchronizer state
// machine and fans outbound step/recovery/heartbeat events back out over
// the originating connection.
type Handler struct {
	synchronizer *syncengine.Synchronizer
	spins        SpinProvider
	bus          DesyncBus
	log          *logger.Logger

	mu          sync.Mutex
	connByPlayer map[uuid.UUID]*Connection
}

// NewHandler constructs a Handler. bus may be nil, in which case desync
// events are only ever visible to the instance that handled them.
func NewHandler(synchronizer *syncengine.Synchronizer, spins SpinProvider, bus DesyncBus, log *logger.Logger) *Handler {
	return &Handler{
		synchronizer: synchronizer,
		spins:        spins,
		bus:          bus,
		log:          log,
		connByPlayer: make(map[uuid.UUID]*Connection),
	}
}

// Upgrade is the Fiber websocket.New callback: c.Locals("playerID") must
// already be populated by auth middleware upstream of the route.
func (h *Handler) Upgrade(c *websocket.Conn) {
	playerIDStr, _ := c.Locals("playerID").(string)
	playerID, err := uuid.Parse(playerIDStr)
	if err != nil {
		h.log.Warn().Msg("cascade sync: upgrade without valid playerID in context")
		c.Close()
		return
	}

	conn := newConnection(c, playerID, h, h.log)
	h.mu.Lock()
	h.connByPlayer[playerID] = conn
	h.mu.Unlock()

	conn.Serve()

	h.mu.Lock()
	if h.connByPlayer[playerID] == conn {
		delete(h.connByPlayer, playerID)
	}
	h.mu.Unlock()
}

func (h *Handler) dispatch(cn *Connection, env Envelope) {
	switch env.Type {
	case EventCascadeSyncStart:
		h.handleStart(cn, env.Payload)
	case EventCascadeStepNext:
		h.handleStepNext(cn, env.Payload)
	case EventCascadeStepControl:
		h.handleStepControl(cn, env.Payload)
	case EventStepValidationReq:
		h.handleStepValidation(cn, env.Payload)
	case EventBatchAck:
		h.handleBatchAck(cn, env.Payload)
	case EventDesyncDetected:
		h.handleDesync(cn, env.Payload)
	case EventRecoveryApply:
		h.handleRecoveryApply(cn, env.Payload)
	case EventForceResync:
		h.handleForceResync(cn, env.Payload)
	case EventSyncSessionComplete:
		// Client-side confirmation only; the server already transitioned to
		// completed on the final ack. No state change needed.
	case EventHeartbeatResponse:
		cn.onHeartbeatResponse()
	default:
		cn.sendError("unknown event type")
	}
}

func (h *Handler) handleStart(cn *Connection, raw json.RawMessage) {
	var p CascadeSyncStartPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid cascade_sync_start payload")
		return
	}
	spinID, err := uuid.Parse(p.SpinID)
	if err != nil {
		cn.sendError("invalid spinId")
		return
	}
	computation, ok := h.spins.Computation(spinID)
	if !ok {
		cn.sendError("spin not found")
		return
	}

	salt := uuid.New().String()
	sess, err := h.synchronizer.Open(spinID, cn.playerID, salt, salt, len(computation.Steps))
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	cn.SendSessionView(sess)

	if p.EnableBroadcast {
		h.broadcastStep(cn, sess, computation, sess.CurrentStep)
	}
}

func (h *Handler) handleStepNext(cn *Connection, raw json.RawMessage) {
	var p CascadeStepNextPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid cascade_step_next payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	sess, err := h.synchronizer.Get(id)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	if !p.ReadyForNext {
		return
	}
	computation, ok := h.spins.Computation(sess.SpinID)
	if !ok {
		cn.sendError("spin not found")
		return
	}
	h.broadcastStep(cn, sess, computation, sess.CurrentStep)
}

func (h *Handler) handleStepControl(cn *Connection, raw json.RawMessage) {
	var p CascadeStepControlPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid cascade_step_control payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}

	switch p.Action {
	case ControlPause:
		sess, err := h.synchronizer.Get(id)
		if err != nil {
			cn.sendError(err.Error())
			return
		}
		if err := sess.Pause(); err != nil {
			cn.sendError(err.Error())
			return
		}
		cn.SendSessionView(sess)
	case ControlResume:
		sess, err := h.synchronizer.Get(id)
		if err != nil {
			cn.sendError(err.Error())
			return
		}
		if err := sess.Resume(); err != nil {
			cn.sendError(err.Error())
			return
		}
		cn.SendSessionView(sess)
	case ControlRestart:
		sess, err := h.synchronizer.ForceResync(id, 0)
		if err != nil {
			cn.sendError(err.Error())
			return
		}
		cn.SendSessionView(sess)
	case ControlSkipTo:
		if p.StepIndex == nil {
			cn.sendError("skip_to requires stepIndex")
			return
		}
		sess, err := h.synchronizer.ForceResync(id, *p.StepIndex)
		if err != nil {
			cn.sendError(err.Error())
			return
		}
		cn.SendSessionView(sess)
	default:
		cn.sendError("unknown step control action")
	}
}

// handleStepValidation re-derives the cascade step the client claims to have
// reached and compares it against the authoritative step the engine already
// computed before ever advancing the session's ack state. A structural
// mismatch is treated as a grid-inconsistency desync and routed into the
// same recovery-plan machinery a client-reported desync_detected uses,
// rather than being silently acked.
func (h *Handler) handleStepValidation(cn *Connection, raw json.RawMessage) {
	start := time.Now()
	var p StepValidationRequestPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid step_validation_request payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	sess, err := h.synchronizer.Get(id)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	computation, ok := h.spins.Computation(sess.SpinID)
	if !ok {
		cn.sendError("spin not found")
		return
	}
	if p.StepIndex < 0 || p.StepIndex >= len(computation.Steps) {
		cn.sendError("step index out of range")
		return
	}
	authoritative := computation.Steps[p.StepIndex]
	serverHash := stepContentHash(authoritative, sess.ValidationSalt)

	if sentAt, ok := sess.BroadcastAt[p.StepIndex]; ok && p.ClientTimestamp > 0 {
		timing := validator.ValidateTiming(sentAt, time.UnixMilli(p.ClientTimestamp))
		if !timing.Valid {
			h.log.Warn().Str("sync_session_id", id.String()).Int("step", p.StepIndex).
				Str("reason", timing.Reason).Msg("cascade sync: step ack timing flagged")
		}
	}

	var reportedGrid grid.Grid
	if len(p.GridState) > 0 {
		if err := json.Unmarshal(p.GridState, &reportedGrid); err != nil {
			cn.sendError("invalid gridState")
			return
		}
	}
	result := validator.ValidateStep(authoritative, reportedGrid, authoritative.StepWin)

	if !result.Valid {
		h.log.Warn().Str("sync_session_id", id.String()).Int("step", p.StepIndex).
			Interface("mismatches", result.Mismatches).
			Msg("cascade sync: client-reported grid diverged from authoritative step")

		cn.enqueue(EventStepValidationResp, StepValidationResponsePayload{
			SyncSessionID:      p.SyncSessionID,
			StepIndex:          p.StepIndex,
			PhaseType:          p.PhaseType,
			StepValidated:      false,
			ServerHash:         serverHash,
			SyncStatus:         string(sess.Status),
			ValidationFeedback: result.Mismatches,
			ProcessingTimeMs:   time.Since(start).Milliseconds(),
		})
		if plan, perr := h.synchronizer.ReportDesync(id, syncengine.DesyncGridInconsistency, p.StepIndex, authoritative.GridAfter, authoritative, nil); perr == nil {
			cn.enqueue(EventRecoveryPlan, plan)
		}
		return
	}

	acked, err := h.synchronizer.Ack(id, p.StepIndex, p.ClientHash)
	if err != nil {
		cn.sendError(err.Error())
		return
	}

	cn.enqueue(EventStepValidationResp, StepValidationResponsePayload{
		SyncSessionID:    p.SyncSessionID,
		StepIndex:        p.StepIndex,
		PhaseType:        p.PhaseType,
		StepValidated:    true,
		ServerHash:       serverHash,
		SyncStatus:       string(acked.Status),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
	cn.SendSessionView(acked)

	if acked.Status == syncengine.StatusCompleted {
		return
	}
	if nextComputation, ok := h.spins.Computation(acked.SpinID); ok {
		h.broadcastStep(cn, acked, nextComputation, acked.CurrentStep)
	}
}

// stepContentHash is the server's own hash for a cascade step's content,
// salted with the session's validation salt so a client can't precompute it
// without having actually received the broadcast.
func stepContentHash(step engine.CascadeStep, salt string) string {
	raw, err := json.Marshal(step)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(append(raw, []byte(salt)...))
	return hex.EncodeToString(sum[:])
}

func (h *Handler) handleBatchAck(cn *Connection, raw json.RawMessage) {
	var p BatchAcknowledgmentPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid batch_acknowledgment payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	var sess *syncengine.Session
	for _, ack := range p.Acknowledgments {
		sess, err = h.synchronizer.Ack(id, ack.StepIndex, ack.ClientHash)
		if err != nil {
			cn.sendError(err.Error())
			return
		}
	}
	if sess != nil {
		cn.SendSessionView(sess)
	}
}

func (h *Handler) handleDesync(cn *Connection, raw json.RawMessage) {
	var p DesyncDetectedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid desync_detected payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	sess, err := h.synchronizer.Get(id)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	computation, ok := h.spins.Computation(sess.SpinID)
	if !ok {
		cn.sendError("spin not found")
		return
	}

	var gridAfter, step, timings interface{}
	if p.StepIndex >= 0 && p.StepIndex < len(computation.Steps) {
		step = computation.Steps[p.StepIndex]
		gridAfter = computation.Steps[p.StepIndex].GridAfter
		timings = computation.Steps[p.StepIndex].Index
	}

	plan, err := h.synchronizer.ReportDesync(id, syncengine.DesyncType(p.DesyncType), p.StepIndex, gridAfter, step, timings)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	cn.enqueue(EventRecoveryPlan, plan)

	if h.bus != nil {
		if pubErr := h.bus.Publish(desyncEventsChannel, map[string]interface{}{
			"syncSessionId": id.String(),
			"playerId":      cn.playerID.String(),
			"desyncType":    p.DesyncType,
			"stepIndex":     p.StepIndex,
		}); pubErr != nil {
			h.log.Warn().Err(pubErr).Msg("cascade sync: failed to publish desync event")
		}
	}
}

func (h *Handler) handleRecoveryApply(cn *Connection, raw json.RawMessage) {
	var p RecoveryApplyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid recovery_apply payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	sess, err := h.synchronizer.ApplyRecoveryResult(id, p.RecoveryResult)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	cn.SendSessionView(sess)

	if sess.Status == syncengine.StatusBroadcasting {
		computation, ok := h.spins.Computation(sess.SpinID)
		if ok {
			h.broadcastStep(cn, sess, computation, sess.CurrentStep)
		}
	}
}

func (h *Handler) handleForceResync(cn *Connection, raw json.RawMessage) {
	var p ForceResyncPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		cn.sendError("invalid force_resync payload")
		return
	}
	id, err := uuid.Parse(p.SyncSessionID)
	if err != nil {
		cn.sendError("invalid syncSessionId")
		return
	}
	sess, err := h.synchronizer.ForceResync(id, p.FromStepIndex)
	if err != nil {
		cn.sendError(err.Error())
		return
	}
	cn.SendSessionView(sess)
	computation, ok := h.spins.Computation(sess.SpinID)
	if ok {
		h.broadcastStep(cn, sess, computation, sess.CurrentStep)
	}
}

func (h *Handler) broadcastStep(cn *Connection, sess *syncengine.Session, computation *engine.SpinComputation, stepIdx int) {
	if stepIdx < 0 || stepIdx >= len(computation.Steps) {
		return
	}
	sess.RecordBroadcast(stepIdx)
	cn.enqueue(EventStepBroadcast, computation.Steps[stepIdx])

	go h.watchAckTimeout(cn, sess, stepIdx)
}

// watchAckTimeout waits DefaultAckTimeout and, if the session
// is still waiting on the same step, records a timeout and either retries
// or escalates to recovery.
func (h *Handler) watchAckTimeout(cn *Connection, sess *syncengine.Session, stepIdx int) {
	timer := time.NewTimer(DefaultAckTimeout)
	defer timer.Stop()
	<-timer.C

	if sess.Status != syncengine.StatusBroadcasting || sess.CurrentStep != stepIdx {
		return
	}

	updated, exhausted, err := h.synchronizer.Timeout(sess.ID)
	if err != nil {
		return
	}
	if exhausted {
		cn.SendSessionView(updated)
		if len(updated.RecoveryLog) > 0 {
			cn.enqueue(EventRecoveryPlan, updated.RecoveryLog[len(updated.RecoveryLog)-1])
		}
		return
	}

	computation, ok := h.spins.Computation(sess.SpinID)
	if ok {
		h.broadcastStep(cn, updated, computation, stepIdx)
	}
}
