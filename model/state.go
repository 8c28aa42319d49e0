package model

import "fmt"

// Phase identifies the lifecycle phase of an execution request.
type Phase int

const (
	PhaseAwaiting Phase = iota
	PhaseApproved
	PhaseRejected
)

// State is the tagged lifecycle state of a request:
// AwaitingStep(n) | Approved | Rejected.
type State struct {
	phase Phase
	step  int
}

// AwaitingStep returns the state of a request waiting on step n (1-based).
func AwaitingStep(n int) State { return State{phase: PhaseAwaiting, step: n} }

// Approved returns the terminal approved state.
func Approved() State { return State{phase: PhaseApproved} }

// Rejected returns the terminal rejected state.
func Rejected() State { return State{phase: PhaseRejected} }

func (s State) Phase() Phase { return s.phase }

// Step returns the awaited step; ok is false for terminal states.
func (s State) Step() (step int, ok bool) {
	return s.step, s.phase == PhaseAwaiting
}

func (s State) Terminal() bool { return s.phase != PhaseAwaiting }

// Status returns the persisted status for the state.
func (s State) Status() RequestStatus {
	switch s.phase {
	case PhaseApproved:
		return RequestApproved
	case PhaseRejected:
		return RequestRejected
	}
	return RequestPending
}

func (s State) String() string {
	switch s.phase {
	case PhaseApproved:
		return "Approved"
	case PhaseRejected:
		return "Rejected"
	}
	return fmt.Sprintf("AwaitingStep(%d)", s.step)
}

// StateOf decodes a persisted status/current-step pair.  Combinations that
// cannot be produced by a legal transition are reported as errors.
func StateOf(status RequestStatus, currentStep, totalSteps int) (State, error) {
	switch status {
	case RequestPending:
		if currentStep < 1 || currentStep > totalSteps {
			return State{}, fmt.Errorf("pending request with step %d outside 1..%d", currentStep, totalSteps)
		}
		return AwaitingStep(currentStep), nil
	case RequestApproved, RequestRejected:
		if currentStep != 0 {
			return State{}, fmt.Errorf("%s request cannot point at step %d", status, currentStep)
		}
		if status == RequestApproved {
			return Approved(), nil
		}
		return Rejected(), nil
	}
	return State{}, fmt.Errorf("unknown request status %q", status)
}
