package sync

import "time"

// Ack records a matching client acknowledgment for the current step and
// advances currentStepIndex, or transitions to completed if it was the
// final step.
func (s *Session) Ack(stepIndex int, clientHash string) error {
	if s.Status != StatusBroadcasting {
		return &transitionError{From: s.Status, Event: "ack"}
	}
	if stepIndex != s.CurrentStep {
		return &transitionError{From: s.Status, Event: "ack (stale step)"}
	}

	s.Acks[stepIndex] = Ack{StepIndex: stepIndex, ClientHash: clientHash, ReceivedAt: time.Now()}
	s.Metrics.StepsAcked++

	if stepIndex >= s.TotalSteps-1 {
		s.Status = StatusCompleted
		s.Metrics.CompletedAt = time.Now()
		return nil
	}
	s.CurrentStep++
	return nil
}

// Timeout records a missed acknowledgment for the current step. It retries
// up to maxRetries times; on exhaustion it transitions to recovering with a
// cascade_replay plan rooted at the last acknowledged step.
func (s *Session) Timeout(maxRetries int) (timedOut bool, exhausted bool, err error) {
	if s.Status != StatusBroadcasting {
		return false, false, &transitionError{From: s.Status, Event: "acknowledgment_timeout"}
	}

	s.Retries[s.CurrentStep]++
	s.Metrics.Retries++
	ack := s.Acks[s.CurrentStep]
	ack.TimedOut = true
	s.Acks[s.CurrentStep] = ack

	if s.Retries[s.CurrentStep] <= maxRetries {
		return true, false, nil
	}

	plan := RecoveryPlan{
		Kind:           RecoveryCascadeReplay,
		DesyncType:     DesyncTimingError,
		StepIndex:      s.CurrentStep,
		ReplayFromStep: s.lastAckedStep(),
		Status:         RecoveryInProgress,
		CreatedAt:      time.Now(),
	}
	s.Status = StatusRecovering
	s.RecoveryLog = append(s.RecoveryLog, plan)
	s.Metrics.Recoveries++
	return true, true, nil
}

// Pause/Resume implement the cascade_step_control pause/resume actions.
func (s *Session) Pause() error {
	if s.Status != StatusBroadcasting {
		return &transitionError{From: s.Status, Event: "pause"}
	}
	s.Status = StatusPaused
	return nil
}

func (s *Session) Resume() error {
	if s.Status != StatusPaused {
		return &transitionError{From: s.Status, Event: "resume"}
	}
	s.Status = StatusBroadcasting
	return nil
}

// Fail transitions the session into failed from any non-terminal state,
// used on socket disconnect or any fatal condition.
func (s *Session) Fail() {
	if s.IsTerminal() {
		return
	}
	s.Status = StatusFailed
	s.Metrics.CompletedAt = time.Now()
}

// RecordBroadcast increments the broadcast counter and stamps the step's
// send time, called once per step the transport layer actually sends on the
// wire. The timestamp lets a later acknowledgment be timing-validated
// against how long the client actually took.
func (s *Session) RecordBroadcast(stepIndex int) {
	s.Metrics.StepsBroadcast++
	if s.BroadcastAt == nil {
		s.BroadcastAt = make(map[int]time.Time)
	}
	s.BroadcastAt[stepIndex] = time.Now()
}
