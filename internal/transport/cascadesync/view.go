package cascadesync

import "github.com/infinitystorm/server/internal/sync"

// sessionView is the only SyncSession shape ever sent to a client — never
// the live *sync.Session itself, so no internal pointers leak onto the
// wire.
type sessionView struct {
	SyncSessionID string               `json:"syncSessionId"`
	SpinID        string               `json:"spinId"`
	Status        sync.Status          `json:"status"`
	CurrentStep   int                  `json:"currentStepIndex"`
	TotalSteps    int                  `json:"totalSteps"`
	Metrics       sync.Metrics         `json:"metrics"`
	RecoveryLog   []sync.RecoveryPlan  `json:"recoveryLog,omitempty"`
}

func viewOf(sess *sync.Session) sessionView {
	return sessionView{
		SyncSessionID: sess.ID.String(),
		SpinID:        sess.SpinID.String(),
		Status:        sess.Status,
		CurrentStep:   sess.CurrentStep,
		TotalSteps:    sess.TotalSteps,
		Metrics:       sess.Metrics,
		RecoveryLog:   sess.RecoveryLog,
	}
}
