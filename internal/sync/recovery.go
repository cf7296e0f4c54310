package sync

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryPlanStatus tracks a recovery plan's own lifecycle, independent of
// the owning session's status.
type RecoveryPlanStatus string

const (
	RecoveryInProgress RecoveryPlanStatus = "in_progress"
	RecoveryCompleted  RecoveryPlanStatus = "completed"
	RecoveryError      RecoveryPlanStatus = "error"
)

// RecoveryKind is the concrete remediation a desync type maps to.
type RecoveryKind string

const (
	RecoveryStateResync   RecoveryKind = "state_resync"
	RecoveryPhaseReplay   RecoveryKind = "phase_replay"
	RecoveryCascadeReplay RecoveryKind = "cascade_replay"
)

// RecoveryPlan is the remediation the synchronizer hands the client after a
// desync report, keyed by DesyncType.
type RecoveryPlan struct {
	RecoveryID        uuid.UUID          `json:"recoveryId"`
	Kind              RecoveryKind       `json:"kind"`
	DesyncType        DesyncType         `json:"desyncType"`
	StepIndex         int                `json:"stepIndex"`
	EstimatedDuration time.Duration      `json:"estimatedDuration"`
	Status            RecoveryPlanStatus `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`

	// Payload fields: exactly one of these is populated depending on Kind.
	AuthoritativeGridAfter interface{} `json:"authoritativeGridAfter,omitempty"`
	AuthoritativeStep      interface{} `json:"authoritativeStep,omitempty"`
	AuthoritativeTimings   interface{} `json:"authoritativeTimings,omitempty"`
	ReplayFromStep         int         `json:"replayFromStep,omitempty"`
}

// estimatedDurationFor approximates how long a client takes to apply each
// recovery kind; used only for the client-facing progress estimate.
func estimatedDurationFor(kind RecoveryKind) time.Duration {
	switch kind {
	case RecoveryStateResync:
		return 500 * time.Millisecond
	case RecoveryPhaseReplay:
		return 750 * time.Millisecond
	case RecoveryCascadeReplay:
		return 2 * time.Second
	default:
		return time.Second
	}
}

// kindForDesync maps a reported desync type to the remediation kind.
func kindForDesync(t DesyncType) RecoveryKind {
	switch t {
	case DesyncHashMismatch:
		return RecoveryStateResync
	case DesyncTimingError:
		return RecoveryPhaseReplay
	case DesyncGridInconsistency:
		return RecoveryCascadeReplay
	default:
		return RecoveryCascadeReplay
	}
}

// BuildRecoveryPlan constructs the remediation for a desync report and
// transitions the session into recovering. authoritativeGridAfter,
// authoritativeStep, and authoritativeTimings are the server's own records
// for the disputed step; the caller supplies whichever the plan kind needs.
func (s *Session) BuildRecoveryPlan(desyncType DesyncType, stepIndex int, authoritativeGridAfter, authoritativeStep, authoritativeTimings interface{}) (*RecoveryPlan, error) {
	if s.Status != StatusBroadcasting && s.Status != StatusRecovering {
		return nil, &transitionError{From: s.Status, Event: "desyncReport"}
	}

	kind := kindForDesync(desyncType)
	plan := RecoveryPlan{
		RecoveryID:        uuid.New(),
		Kind:              kind,
		DesyncType:        desyncType,
		StepIndex:         stepIndex,
		EstimatedDuration: estimatedDurationFor(kind),
		Status:            RecoveryInProgress,
		CreatedAt:         time.Now(),
	}

	switch kind {
	case RecoveryStateResync:
		plan.AuthoritativeGridAfter = authoritativeGridAfter
		plan.AuthoritativeStep = authoritativeStep
	case RecoveryPhaseReplay:
		plan.AuthoritativeTimings = authoritativeTimings
		plan.AuthoritativeStep = authoritativeStep
	case RecoveryCascadeReplay:
		plan.ReplayFromStep = s.lastAckedStep()
	}

	s.Status = StatusRecovering
	s.RecoveryLog = append(s.RecoveryLog, plan)
	s.Metrics.Recoveries++
	return &s.RecoveryLog[len(s.RecoveryLog)-1], nil
}

func (s *Session) lastAckedStep() int {
	best := 0
	for idx, ack := range s.Acks {
		if !ack.TimedOut && idx > best {
			best = idx
		}
	}
	return best
}

// ApplyRecoveryResult records the client's outcome for the most recent
// recovery plan. ok=true moves the session through synchronized back into
// broadcasting, resuming from the plan's adjusted step; ok=false retries
// the same plan kind up to maxRetries before failing the session outright.
func (s *Session) ApplyRecoveryResult(ok bool, maxRetries int) error {
	if s.Status != StatusRecovering {
		return &transitionError{From: s.Status, Event: "applyRecoveryResult"}
	}
	if len(s.RecoveryLog) == 0 {
		return &transitionError{From: s.Status, Event: "applyRecoveryResult (no plan)"}
	}
	plan := &s.RecoveryLog[len(s.RecoveryLog)-1]

	if ok {
		plan.Status = RecoveryCompleted
		s.Status = StatusSynchronized
		if plan.Kind == RecoveryCascadeReplay {
			s.CurrentStep = plan.ReplayFromStep
		}
		s.Status = StatusBroadcasting
		return nil
	}

	plan.Status = RecoveryError
	if s.Metrics.Recoveries >= maxRetries {
		s.Status = StatusFailed
		return nil
	}
	// Stay in recovering; caller is expected to build a fresh plan for
	// another attempt.
	return nil
}

// ForceResync resets step counters and restarts broadcast from fromStep,
// usable from any non-terminal state.
func (s *Session) ForceResync(fromStep int) error {
	if s.IsTerminal() {
		return &transitionError{From: s.Status, Event: "forceResync"}
	}
	s.Status = StatusResyncing
	s.CurrentStep = fromStep
	s.Acks = make(map[int]Ack)
	s.Retries = make(map[int]int)
	s.BroadcastAt = make(map[int]time.Time)
	s.Status = StatusBroadcasting
	return nil
}
