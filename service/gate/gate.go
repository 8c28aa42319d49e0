// Package gate maps actors onto the approval steps they may decide.
package gate

import (
	"context"
	"strings"

	"github.com/viant/budgetflow/model"
)

// Authorize reports whether actor may decide step.  The required role is
// carried on the step record, so chains of any composition work without
// code changes.
func Authorize(actor *model.Actor, step *model.ApprovalStep) bool {
	if actor == nil || step == nil || actor.Role == "" {
		return false
	}
	return NormalizeRole(actor.Role) == NormalizeRole(step.ApproverRole)
}

// NormalizeRole canonicalises a role name.
func NormalizeRole(role string) string {
	return strings.ToUpper(strings.TrimSpace(role))
}

// Directory resolves an authenticated actor id to its identity.
type Directory interface {
	Lookup(ctx context.Context, actorID string) (*model.Actor, error)
}
