package intake

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/chain"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/dao/memory"
	"github.com/viant/budgetflow/service/ledger"
)

var requester = &model.Actor{ID: "alice", Role: "STAFF"}

func newIntake(t *testing.T) (*Service, *memory.Service) {
	t.Helper()
	chains, err := chain.NewRegistry(chain.Default(), &chain.Chain{Type: "minor", Roles: []string{"manager"}})
	require.NoError(t, err)
	srv, err := New(ledger.New(), chains)
	require.NoError(t, err)

	store := memory.New()
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		for _, project := range []*model.Project{{ID: "p1", Name: "Tower"}, {ID: "p2", Name: "Bridge"}} {
			if err := tx.InsertProject(ctx, project); err != nil {
				return err
			}
		}
		items := []*model.LineItem{
			{ID: "li1", ProjectID: "p1", Name: "Concrete", CurrentBudget: model.MustAmount("1000"), Active: true},
			{ID: "li2", ProjectID: "p1", Name: "Closed", CurrentBudget: model.MustAmount("1000"), Active: false},
		}
		for _, item := range items {
			item.Recompute()
			if err := tx.InsertLineItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}))
	return srv, store
}

func create(store dao.Store, srv *Service, input *Input) (created *Created, err error) {
	err = store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		created, err = srv.Create(ctx, tx, requester, input)
		return err
	})
	return created, err
}

func validInput() *Input {
	return &Input{ProjectID: "p1", LineItemID: "li1", Amount: model.MustAmount("100"),
		ExecutionDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Purpose: "slab"}
}

func TestService_Create(t *testing.T) {
	restore := clock.Freeze(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC))
	defer restore()
	srv, store := newIntake(t)

	created, err := create(store, srv, validInput())
	require.NoError(t, err)
	request := created.Request
	assert.Equal(t, "EXE-2026-0001", request.RequestNumber)
	assert.Equal(t, model.RequestPending, request.Status)
	assert.Equal(t, 1, request.CurrentStep)
	assert.Equal(t, 3, request.TotalSteps)
	assert.Equal(t, chain.DefaultType, request.RequestType)
	assert.Equal(t, "alice", request.RequestedBy)

	require.Len(t, created.Steps, 3)
	for i, role := range []string{"MANAGER", "CFO", "ADMIN"} {
		assert.Equal(t, i+1, created.Steps[i].Step)
		assert.Equal(t, role, created.Steps[i].ApproverRole)
		assert.Equal(t, model.StepPending, created.Steps[i].Status)
	}
	assert.True(t, model.MustAmount("100").Equal(created.LineItem.PendingExecutionAmount))
	assert.True(t, created.LineItem.ExecutedAmount.IsZero())

	minor := validInput()
	minor.RequestType = "Minor"
	created, err = create(store, srv, minor)
	require.NoError(t, err)
	assert.Equal(t, "EXE-2026-0002", created.Request.RequestNumber)
	assert.Equal(t, 1, created.Request.TotalSteps)
	assert.Equal(t, "MINOR", created.Request.RequestType)
}

func TestService_Create_NumberingResetsEachYear(t *testing.T) {
	srv, store := newIntake(t)
	restore := clock.Freeze(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	for i := 0; i < 2; i++ {
		_, err := create(store, srv, validInput())
		require.NoError(t, err)
	}
	restore()
	restore = clock.Freeze(time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))
	defer restore()

	created, err := create(store, srv, validInput())
	require.NoError(t, err)
	assert.Equal(t, "EXE-2026-0001", created.Request.RequestNumber)
}

func TestService_Create_Failures(t *testing.T) {
	type testCase struct {
		name   string
		mutate func(in *Input)
		kind   model.Kind
	}
	tests := []testCase{
		{name: "missing project", mutate: func(in *Input) { in.ProjectID = "" }, kind: model.KindValidation},
		{name: "missing line item id", mutate: func(in *Input) { in.LineItemID = "" }, kind: model.KindValidation},
		{name: "zero amount", mutate: func(in *Input) { in.Amount = model.MustAmount("0") }, kind: model.KindValidation},
		{name: "negative amount", mutate: func(in *Input) { in.Amount = model.MustAmount("-1") }, kind: model.KindValidation},
		{name: "sub-cent amount", mutate: func(in *Input) { in.Amount = decimal.New(1, -3) }, kind: model.KindValidation},
		{name: "three decimals", mutate: func(in *Input) { in.Amount = decimal.New(10005, -3) }, kind: model.KindValidation},
		{name: "missing date", mutate: func(in *Input) { in.ExecutionDate = time.Time{} }, kind: model.KindValidation},
		{name: "missing purpose", mutate: func(in *Input) { in.Purpose = "" }, kind: model.KindValidation},
		{name: "purpose too long", mutate: func(in *Input) { in.Purpose = strings.Repeat("x", 1001) }, kind: model.KindValidation},
		{name: "unknown line item", mutate: func(in *Input) { in.LineItemID = "nope" }, kind: model.KindNotFound},
		{name: "line item of other project", mutate: func(in *Input) { in.ProjectID = "p2" }, kind: model.KindValidation},
		{name: "inactive line item", mutate: func(in *Input) { in.LineItemID = "li2" }, kind: model.KindValidation},
		{name: "over budget", mutate: func(in *Input) { in.Amount = model.MustAmount("1000.01") }, kind: model.KindInsufficientBudget},
		{name: "unknown type", mutate: func(in *Input) { in.RequestType = "capex" }, kind: model.KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, store := newIntake(t)
			input := validInput()
			tc.mutate(input)
			_, err := create(store, srv, input)
			require.Error(t, err)
			assert.Equal(t, tc.kind, model.KindOf(err))

			// nothing is written on failure
			require.NoError(t, store.View(context.Background(), func(ctx context.Context, r dao.Reader) error {
				requests, err := r.Requests(ctx)
				if err != nil {
					return err
				}
				assert.Empty(t, requests)
				item, err := r.LineItem(ctx, "li1")
				if err != nil {
					return err
				}
				assert.True(t, item.PendingExecutionAmount.IsZero())
				return nil
			}))
		})
	}

	srv, store := newIntake(t)
	err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		_, err := srv.Create(ctx, tx, nil, validInput())
		return err
	})
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestRequestNumber(t *testing.T) {
	assert.Equal(t, "EXE-2026-0001", RequestNumber(2026, 1))
	assert.Equal(t, "EXE-2026-0420", RequestNumber(2026, 420))
	assert.Equal(t, "EXE-2026-12345", RequestNumber(2026, 12345))
	assert.Equal(t, "EXE-2026-", NumberPrefix(2026))
}
