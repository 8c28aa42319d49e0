// Package budgetflow tracks construction-project budgets and gates spending
// behind a sequential, role-ordered approval chain.
//
// An execution request reserves part of a budget line item when created and
// walks its chain one step at a time.  The final approval re-checks the
// balance and commits the amount; a rejection skips the remaining steps and
// releases the reservation.  Every decision is a single store transaction.
//
//	srv, _ := budgetflow.New(ctx, budgetflow.WithActors(actors...))
//	created, _ := srv.CreateRequest(ctx, "alice", &intake.Input{...})
//	pending, _ := srv.ListPendingApprovals(ctx, "mike")
//	result, _ := srv.Approve(ctx, pending[0].Step.ID, "mike", "")
package budgetflow
