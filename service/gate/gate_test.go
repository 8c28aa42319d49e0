package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/budgetflow/model"
)

func TestAuthorize(t *testing.T) {
	type testCase struct {
		name     string
		actor    *model.Actor
		step     *model.ApprovalStep
		expected bool
	}

	step := &model.ApprovalStep{Step: 2, ApproverRole: "CFO"}
	tests := []testCase{
		{name: "matching role", actor: &model.Actor{ID: "u1", Role: "CFO"}, step: step, expected: true},
		{name: "case and space insensitive", actor: &model.Actor{ID: "u1", Role: " cfo "}, step: step, expected: true},
		{name: "different role", actor: &model.Actor{ID: "u2", Role: "MANAGER"}, step: step, expected: false},
		{name: "empty role", actor: &model.Actor{ID: "u3"}, step: &model.ApprovalStep{}, expected: false},
		{name: "nil actor", step: step, expected: false},
		{name: "nil step", actor: &model.Actor{ID: "u1", Role: "CFO"}, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Authorize(tc.actor, tc.step))
		})
	}
}

func TestStaticDirectory(t *testing.T) {
	ctx := context.Background()
	directory, err := NewStaticDirectory(
		&model.Actor{ID: "kim", Name: "Kim", Role: "manager"},
		&model.Actor{ID: "lee", Name: "Lee", Role: "CFO"},
	)
	require.NoError(t, err)

	actor, err := directory.Lookup(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", actor.Role)

	actor.Role = "ADMIN"
	again, _ := directory.Lookup(ctx, "kim")
	assert.Equal(t, "MANAGER", again.Role)

	_, err = directory.Lookup(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = NewStaticDirectory(&model.Actor{ID: "x"})
	assert.Error(t, err)
}
