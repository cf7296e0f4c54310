// Package cascadesync adapts the CascadeSynchronizer state machine onto a
// single-socket-per-client WebSocket connection: inbound wire events are
// decoded and dispatched, outbound SyncSession views are serialized and
// pushed, and ack timeouts / heartbeats run on the connection's own timers.
// Grounded in the base game's hub-style websocket fan-out, reshaped from a
// broadcast-to-everyone hub into a single-session-per-socket adapter since
// every event here is scoped to one player's one spin.
package cascadesync

import (
	"encoding/json"

	"github.com/infinitystorm/server/internal/validator"
)

// EventType names a wire event. Client→server and server→client events
// share one envelope shape; Type determines how Payload is interpreted.
type EventType string

const (
	EventCascadeSyncStart     EventType = "cascade_sync_start"
	EventCascadeStepNext      EventType = "cascade_step_next"
	EventCascadeStepControl   EventType = "cascade_step_control"
	EventStepValidationReq    EventType = "step_validation_request"
	EventAckTimeout           EventType = "acknowledgment_timeout"
	EventBatchAck             EventType = "batch_acknowledgment"
	EventDesyncDetected       EventType = "desync_detected"
	EventRecoveryApply        EventType = "recovery_apply"
	EventRecoveryStatus       EventType = "recovery_status"
	EventForceResync          EventType = "force_resync"
	EventGridValidationReq    EventType = "grid_validation_request"
	EventSyncSessionComplete  EventType = "sync_session_complete"
	EventHeartbeatResponse    EventType = "heartbeat_response"

	// Server -> client only.
	EventStepBroadcast        EventType = "cascade_step_broadcast"
	EventRecoveryPlan         EventType = "recovery_plan"
	EventHeartbeatPing        EventType = "heartbeat_ping"
	EventSessionView          EventType = "sync_session_view"
	EventStepValidationResp   EventType = "step_validation_response"
	EventErrorEvent           EventType = "error"
)

// Envelope is the single JSON shape every event (either direction) is sent
// as over the wire.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CascadeSyncStartPayload opens a SyncSession for an already-computed spin.
type CascadeSyncStartPayload struct {
	SpinID          string `json:"spinId"`
	PlayerID        string `json:"playerId"`
	EnableBroadcast bool   `json:"enableBroadcast"`
}

// CascadeStepNextPayload requests the next step, per the client's own
// pacing; readyForNext=false is ignored (pausing goes through
// cascade_step_control).
type CascadeStepNextPayload struct {
	SyncSessionID   string `json:"syncSessionId"`
	CurrentStepIndex int   `json:"currentStepIndex"`
	ReadyForNext    bool   `json:"readyForNext"`
}

// StepControlAction is one of the cascade_step_control actions.
type StepControlAction string

const (
	ControlPause    StepControlAction = "pause"
	ControlResume   StepControlAction = "resume"
	ControlSkipTo   StepControlAction = "skip_to"
	ControlRestart  StepControlAction = "restart"
)

type CascadeStepControlPayload struct {
	SyncSessionID string            `json:"syncSessionId"`
	Action        StepControlAction `json:"action"`
	StepIndex     *int              `json:"stepIndex,omitempty"`
}

type StepValidationRequestPayload struct {
	SyncSessionID   string          `json:"syncSessionId"`
	StepIndex       int             `json:"stepIndex"`
	GridState       json.RawMessage `json:"gridState"`
	ClientHash      string          `json:"clientHash"`
	ClientTimestamp int64           `json:"clientTimestamp"`
	PhaseType       string          `json:"phaseType"`
}

// StepValidationResponsePayload answers a step_validation_request: whether
// the client's reported grid matched the authoritative step (the request
// carries no win amount, so the step win is not compared), the
// server's own content hash for that step, and — on mismatch — the field
// diffs the client can log or surface for support.
type StepValidationResponsePayload struct {
	SyncSessionID      string              `json:"syncSessionId"`
	StepIndex          int                 `json:"stepIndex"`
	PhaseType          string              `json:"phaseType"`
	StepValidated      bool                `json:"stepValidated"`
	ServerHash         string              `json:"serverHash"`
	SyncStatus         string              `json:"syncStatus"`
	ValidationFeedback []validator.Mismatch `json:"validationFeedback,omitempty"`
	ProcessingTimeMs   int64               `json:"processingTimeMs"`
}

type BatchAcknowledgmentPayload struct {
	SyncSessionID   string `json:"syncSessionId"`
	Acknowledgments []struct {
		StepIndex  int    `json:"stepIndex"`
		ClientHash string `json:"clientHash"`
	} `json:"acknowledgments"`
}

type DesyncDetectedPayload struct {
	SyncSessionID string          `json:"syncSessionId"`
	DesyncType    string          `json:"desyncType"`
	ClientState   json.RawMessage `json:"clientState"`
	StepIndex     int             `json:"stepIndex"`
	DesyncDetails string          `json:"desyncDetails"`
}

type RecoveryApplyPayload struct {
	RecoveryID     string `json:"recoveryId"`
	ClientState    json.RawMessage `json:"clientState"`
	RecoveryResult bool   `json:"recoveryResult"`
	SyncSessionID  string `json:"syncSessionId"`
}

type ForceResyncPayload struct {
	SyncSessionID string `json:"syncSessionId"`
	FromStepIndex int    `json:"fromStepIndex"`
}

type SyncSessionCompletePayload struct {
	SyncSessionID  string          `json:"syncSessionId"`
	FinalGridState json.RawMessage `json:"finalGridState"`
	TotalWin       string          `json:"totalWin"`
	ClientHash     string          `json:"clientHash"`
}

func encode(t EventType, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Payload: raw}, nil
}
