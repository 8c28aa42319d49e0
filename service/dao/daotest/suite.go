// Package daotest holds behaviour tests shared by every dao.Store
// implementation.
package daotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
)

var base = time.Date(2026, 4, 1, 9, 30, 0, 123456789, time.UTC)

// Fixture seeds one project with one line item and two requests with a
// three step chain each.
type Fixture struct {
	Project  *model.Project
	LineItem *model.LineItem
	Requests []*model.ExecutionRequest
	Steps    map[string][]*model.ApprovalStep
}

// NewFixture builds the rows without persisting them.
func NewFixture() *Fixture {
	ret := &Fixture{
		Project: &model.Project{ID: "p1", Code: "P-1", Name: "Tower", CurrentBudget: model.MustAmount("1000000"),
			RemainingBudget: model.MustAmount("1000000"), CreatedAt: base, UpdatedAt: base},
		LineItem: &model.LineItem{ID: "li1", ProjectID: "p1", Category: "Structure", Name: "Concrete",
			CurrentBudget: model.MustAmount("1000000"), Active: true, CreatedAt: base, UpdatedAt: base},
		Steps: map[string][]*model.ApprovalStep{},
	}
	ret.LineItem.Recompute()
	for i, number := range []string{"EXE-2026-0002", "EXE-2026-0001"} {
		created := base.Add(time.Duration(i) * time.Minute)
		request := &model.ExecutionRequest{
			ID: "r" + number[len(number)-1:], RequestNumber: number, RequestType: "EXECUTION",
			ProjectID: "p1", LineItemID: "li1", Amount: model.MustAmount("1250.50"),
			ExecutionDate: base, Purpose: "pour", Status: model.RequestPending, CurrentStep: 1, TotalSteps: 3,
			RequestedBy: "alice", CreatedAt: created, UpdatedAt: created,
		}
		ret.Requests = append(ret.Requests, request)
		for j, role := range []string{"MANAGER", "CFO", "ADMIN"} {
			ret.Steps[request.ID] = append(ret.Steps[request.ID], &model.ApprovalStep{
				ID: request.ID + "-s" + string(rune('1'+j)), RequestID: request.ID, Step: j + 1,
				ApproverRole: role, Status: model.StepPending, CreatedAt: created,
			})
		}
	}
	return ret
}

// Seed persists the fixture.
func (f *Fixture) Seed(ctx context.Context, store dao.Store) error {
	return store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		if err := tx.InsertProject(ctx, f.Project); err != nil {
			return err
		}
		if err := tx.InsertLineItem(ctx, f.LineItem); err != nil {
			return err
		}
		for _, request := range f.Requests {
			if err := tx.InsertRequest(ctx, request); err != nil {
				return err
			}
			for _, step := range f.Steps[request.ID] {
				if err := tx.InsertStep(ctx, step); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Run executes the suite against stores produced by newStore.
func Run(t *testing.T, newStore func(t *testing.T) dao.Store) {
	tests := []struct {
		name string
		run  func(t *testing.T, store dao.Store, f *Fixture)
	}{
		{name: "round trip", run: testRoundTrip},
		{name: "not found", run: testNotFound},
		{name: "requests", run: testRequests},
		{name: "pending steps", run: testPendingSteps},
		{name: "decide step", run: testDecideStep},
		{name: "skip steps", run: testSkipSteps},
		{name: "rollback", run: testRollback},
		{name: "concurrent decide", run: testConcurrentDecide},
		{name: "concurrent spend", run: testConcurrentSpend},
		{name: "concurrent numbering", run: testConcurrentNumbering},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			f := NewFixture()
			require.NoError(t, f.Seed(context.Background(), store))
			tc.run(t, store, f)
		})
	}
}

func view(t *testing.T, store dao.Store, fn func(ctx context.Context, r dao.Reader) error) {
	t.Helper()
	require.NoError(t, store.View(context.Background(), fn))
}

func testRoundTrip(t *testing.T, store dao.Store, f *Fixture) {
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		project, err := r.Project(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, f.Project.Name, project.Name)
		assert.True(t, f.Project.CurrentBudget.Equal(project.CurrentBudget))
		assert.True(t, base.Equal(project.CreatedAt))

		item, err := r.LineItem(ctx, "li1")
		require.NoError(t, err)
		assert.True(t, item.Active)
		assert.Equal(t, "Structure", item.Category)
		assert.True(t, f.LineItem.RemainingBeforeExec.Equal(item.RemainingBeforeExec))
		assert.True(t, item.PendingExecutionAmount.IsZero())

		items, err := r.LineItems(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, items, 1)

		request, err := r.Request(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, "EXE-2026-0002", request.RequestNumber)
		assert.True(t, model.MustAmount("1250.50").Equal(request.Amount))
		assert.True(t, base.Equal(request.ExecutionDate))
		assert.Nil(t, request.CompletedAt)
		state, err := request.State()
		require.NoError(t, err)
		assert.Equal(t, model.AwaitingStep(1), state)

		steps, err := r.Steps(ctx, "r2")
		require.NoError(t, err)
		require.Len(t, steps, 3)
		for i, step := range steps {
			assert.Equal(t, i+1, step.Step)
			assert.Nil(t, step.DecidedAt)
		}
		return nil
	})

	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		request, err := tx.Request(ctx, "r2")
		if err != nil {
			return err
		}
		request.RejectionReason = "budget concerns"
		if err = request.Transition(model.Rejected(), base.Add(time.Hour)); err != nil {
			return err
		}
		return tx.UpdateRequest(ctx, request)
	}))
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		request, err := r.Request(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, model.RequestRejected, request.Status)
		assert.Equal(t, 0, request.CurrentStep)
		assert.Equal(t, "budget concerns", request.RejectionReason)
		require.NotNil(t, request.CompletedAt)
		assert.True(t, base.Add(time.Hour).Equal(*request.CompletedAt))
		return nil
	})
}

func testNotFound(t *testing.T, store dao.Store, _ *Fixture) {
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		_, err := r.Project(ctx, "x")
		assert.ErrorIs(t, err, model.ErrNotFound)
		_, err = r.LineItem(ctx, "x")
		assert.ErrorIs(t, err, model.ErrNotFound)
		_, err = r.Request(ctx, "x")
		assert.ErrorIs(t, err, model.ErrNotFound)
		_, err = r.Step(ctx, "x")
		assert.ErrorIs(t, err, model.ErrNotFound)
		return nil
	})
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		return tx.UpdateLineItem(ctx, &model.LineItem{ID: "x"})
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testRequests(t *testing.T, store dao.Store, _ *Fixture) {
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		all, err := r.Requests(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "r2", all[0].ID)
		assert.Equal(t, "r1", all[1].ID)

		filtered, err := r.Requests(ctx, dao.NewParameter(dao.ParamProjectID, "p1"), dao.NewParameter(dao.ParamStatus, "REJECTED"))
		require.NoError(t, err)
		assert.Empty(t, filtered)

		count, err := r.CountRequestNumbers(ctx, "EXE-2026-")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		count, err = r.CountRequestNumbers(ctx, "EXE-2025-")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		return nil
	})

	err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		duplicate := NewFixture().Requests[0]
		duplicate.ID = "r9"
		return tx.InsertRequest(ctx, duplicate)
	})
	assert.Error(t, err)
}

func testPendingSteps(t *testing.T, store dao.Store, f *Fixture) {
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		pending, err := r.PendingSteps(ctx, "MANAGER")
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, "r2-s1", pending[0].Step.ID)
		assert.Equal(t, "r1-s1", pending[1].Step.ID)
		assert.Equal(t, "EXE-2026-0002", pending[0].Request.RequestNumber)

		pending, err = r.PendingSteps(ctx, "CFO")
		require.NoError(t, err)
		assert.Empty(t, pending)
		return nil
	})

	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		step := f.Steps["r1"][0].Clone()
		decidedAt := base.Add(time.Hour)
		step.Status, step.ApproverID, step.DecidedAt = model.StepApproved, "mike", &decidedAt
		if err := tx.DecideStep(ctx, step); err != nil {
			return err
		}
		request, err := tx.Request(ctx, "r1")
		if err != nil {
			return err
		}
		if err = request.Transition(model.AwaitingStep(2), decidedAt); err != nil {
			return err
		}
		return tx.UpdateRequest(ctx, request)
	}))
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		pending, err := r.PendingSteps(ctx, "CFO")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "r1-s2", pending[0].Step.ID)
		assert.Equal(t, 2, pending[0].Request.CurrentStep)

		pending, err = r.PendingSteps(ctx, "MANAGER")
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "r2-s1", pending[0].Step.ID)
		return nil
	})
}

func decide(ctx context.Context, store dao.Store, stepID string, status model.StepStatus) error {
	return store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		step, err := tx.Step(ctx, stepID)
		if err != nil {
			return err
		}
		decidedAt := base.Add(time.Hour)
		step.Status, step.ApproverID, step.Decision, step.DecidedAt = status, "mike", "looks fine", &decidedAt
		return tx.DecideStep(ctx, step)
	})
}

func testDecideStep(t *testing.T, store dao.Store, _ *Fixture) {
	ctx := context.Background()
	require.NoError(t, decide(ctx, store, "r1-s1", model.StepApproved))
	err := decide(ctx, store, "r1-s1", model.StepRejected)
	assert.ErrorIs(t, err, model.ErrAlreadyDecided)
	assert.ErrorIs(t, decide(ctx, store, "missing", model.StepApproved), model.ErrNotFound)

	view(t, store, func(ctx context.Context, r dao.Reader) error {
		step, err := r.Step(ctx, "r1-s1")
		require.NoError(t, err)
		assert.Equal(t, model.StepApproved, step.Status)
		assert.Equal(t, "mike", step.ApproverID)
		assert.Equal(t, "looks fine", step.Decision)
		require.NotNil(t, step.DecidedAt)
		assert.True(t, base.Add(time.Hour).Equal(*step.DecidedAt))
		return nil
	})
}

func testSkipSteps(t *testing.T, store dao.Store, _ *Fixture) {
	var skipped int
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) (err error) {
		skipped, err = tx.SkipSteps(ctx, "r1", 1, base)
		return err
	}))
	assert.Equal(t, 2, skipped)
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		steps, err := r.Steps(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, model.StepPending, steps[0].Status)
		assert.Equal(t, model.StepSkipped, steps[1].Status)
		assert.Equal(t, model.StepSkipped, steps[2].Status)
		other, err := r.Steps(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, model.StepPending, other[2].Status)
		return nil
	})
}

func testRollback(t *testing.T, store dao.Store, _ *Fixture) {
	failure := errors.New("abort")
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		item, err := tx.LineItem(ctx, "li1")
		if err != nil {
			return err
		}
		item.ExecutedAmount = model.MustAmount("10")
		if err = tx.UpdateLineItem(ctx, item); err != nil {
			return err
		}
		step, err := tx.Step(ctx, "r1-s1")
		if err != nil {
			return err
		}
		step.Status = model.StepApproved
		if err = tx.DecideStep(ctx, step); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		item, err := r.LineItem(ctx, "li1")
		require.NoError(t, err)
		assert.True(t, item.ExecutedAmount.IsZero())
		step, err := r.Step(ctx, "r1-s1")
		require.NoError(t, err)
		assert.Equal(t, model.StepPending, step.Status)
		return nil
	})
}

func testConcurrentDecide(t *testing.T, store dao.Store, _ *Fixture) {
	const callers = 5
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = decide(context.Background(), store, "r2-s1", model.StepApproved)
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrAlreadyDecided)
	}
	assert.Equal(t, 1, succeeded)
}

// spend debits amount from li1 when the live balance allows it, the way a
// final approval does.
func spend(ctx context.Context, store dao.Store, amount string) error {
	return store.RunInTx(ctx, func(ctx context.Context, tx dao.Tx) error {
		item, err := tx.LineItem(ctx, "li1")
		if err != nil {
			return err
		}
		value := model.MustAmount(amount)
		if value.GreaterThan(item.Available()) {
			return model.NewError(model.KindInsufficientBudget, "amount %s exceeds %s", value, item.Available())
		}
		item.ExecutedAmount = item.ExecutedAmount.Add(value)
		item.RemainingAfterExec = item.Available()
		return tx.UpdateLineItem(ctx, item)
	})
}

func testConcurrentSpend(t *testing.T, store dao.Store, _ *Fixture) {
	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = spend(context.Background(), store, "600000")
		}(i)
	}
	wg.Wait()
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrInsufficientBudget)
	}
	assert.Equal(t, 1, succeeded)
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		item, err := r.LineItem(ctx, "li1")
		require.NoError(t, err)
		assert.True(t, model.MustAmount("600000").Equal(item.ExecutedAmount), item.ExecutedAmount.String())
		return nil
	})
}

func testConcurrentNumbering(t *testing.T, store dao.Store, f *Fixture) {
	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
				count, err := tx.CountRequestNumbers(ctx, "EXE-2026-")
				if err != nil {
					return err
				}
				request := f.Requests[0].Clone()
				request.ID = fmt.Sprintf("n%d", i)
				request.RequestNumber = fmt.Sprintf("EXE-2026-%04d", count+1)
				return tx.InsertRequest(ctx, request)
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	view(t, store, func(ctx context.Context, r dao.Reader) error {
		count, err := r.CountRequestNumbers(ctx, "EXE-2026-")
		require.NoError(t, err)
		assert.Equal(t, 2+callers, count)
		return nil
	})
}
