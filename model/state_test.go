package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOf(t *testing.T) {
	type testCase struct {
		name        string
		status      RequestStatus
		currentStep int
		expected    State
		wantErr     bool
	}

	tests := []testCase{
		{name: "awaiting first", status: RequestPending, currentStep: 1, expected: AwaitingStep(1)},
		{name: "awaiting last", status: RequestPending, currentStep: 3, expected: AwaitingStep(3)},
		{name: "pending past chain", status: RequestPending, currentStep: 4, wantErr: true},
		{name: "pending without step", status: RequestPending, currentStep: 0, wantErr: true},
		{name: "approved", status: RequestApproved, expected: Approved()},
		{name: "rejected", status: RequestRejected, expected: Rejected()},
		{name: "rejected pointing at step", status: RequestRejected, currentStep: 3, wantErr: true},
		{name: "unknown status", status: "ON_HOLD", currentStep: 1, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			state, err := StateOf(tc.status, tc.currentStep, 3)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, state)
			assert.Equal(t, tc.status, state.Status())
		})
	}
}

func TestState_Step(t *testing.T) {
	step, ok := AwaitingStep(2).Step()
	assert.True(t, ok)
	assert.Equal(t, 2, step)
	_, ok = Approved().Step()
	assert.False(t, ok)
	assert.True(t, Rejected().Terminal())
	assert.Equal(t, "AwaitingStep(2)", AwaitingStep(2).String())
}

func TestExecutionRequest_Transition(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	type testCase struct {
		name        string
		status      RequestStatus
		currentStep int
		next        State
		expectStep  int
		expectState RequestStatus
		wantErr     bool
	}

	tests := []testCase{
		{name: "advance", status: RequestPending, currentStep: 1, next: AwaitingStep(2), expectStep: 2, expectState: RequestPending},
		{name: "skip a step", status: RequestPending, currentStep: 1, next: AwaitingStep(3), wantErr: true},
		{name: "move backwards", status: RequestPending, currentStep: 2, next: AwaitingStep(1), wantErr: true},
		{name: "past chain", status: RequestPending, currentStep: 3, next: AwaitingStep(4), wantErr: true},
		{name: "approve", status: RequestPending, currentStep: 3, next: Approved(), expectStep: 0, expectState: RequestApproved},
		{name: "reject mid chain", status: RequestPending, currentStep: 2, next: Rejected(), expectStep: 0, expectState: RequestRejected},
		{name: "terminal is final", status: RequestApproved, currentStep: 0, next: Rejected(), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			request := &ExecutionRequest{RequestNumber: "EXE-2026-0001", Status: tc.status, CurrentStep: tc.currentStep, TotalSteps: 3}
			err := request.Transition(tc.next, at)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tc.status, request.Status)
				assert.Equal(t, tc.currentStep, request.CurrentStep)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectStep, request.CurrentStep)
			assert.Equal(t, tc.expectState, request.Status)
			assert.Equal(t, at, request.UpdatedAt)
			if tc.next.Terminal() {
				require.NotNil(t, request.CompletedAt)
				assert.Equal(t, at, *request.CompletedAt)
			} else {
				assert.Nil(t, request.CompletedAt)
			}
		})
	}
}

func TestExecutionRequest_Clone(t *testing.T) {
	at := time.Now()
	request := &ExecutionRequest{ID: "r1", CompletedAt: &at}
	clone := request.Clone()
	*clone.CompletedAt = at.Add(time.Hour)
	assert.Equal(t, at, *request.CompletedAt)
	assert.Nil(t, (*ExecutionRequest)(nil).Clone())
}
