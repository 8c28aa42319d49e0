package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/viant/budgetflow/internal/clock"
	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/dao/memory"
)

func amount(text string) decimal.Decimal { return model.MustAmount(text) }

func seedStore(t *testing.T, items ...*model.LineItem) *memory.Service {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		if err := tx.InsertProject(ctx, &model.Project{ID: "p1", Name: "Tower", CurrentBudget: amount("2000")}); err != nil {
			return err
		}
		for _, item := range items {
			item.Recompute()
			if err := tx.InsertLineItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	}))
	return store
}

func TestCommit(t *testing.T) {
	type testCase struct {
		name           string
		budget         string
		executed       string
		pending        string
		amount         string
		expectExecuted string
		expectPending  string
		expectBefore   string
		expectAfter    string
		expectRate     string
		expectClamped  bool
	}

	tests := []testCase{
		{name: "clears reservation", budget: "1000000", executed: "0", pending: "300000", amount: "300000",
			expectExecuted: "300000", expectPending: "0", expectBefore: "1000000", expectAfter: "700000", expectRate: "30"},
		{name: "keeps other reservations", budget: "1000", executed: "100", pending: "500", amount: "200",
			expectExecuted: "300", expectPending: "300", expectBefore: "900", expectAfter: "700", expectRate: "30"},
		{name: "clamps missing reservation", budget: "1000", executed: "0", pending: "50", amount: "200",
			expectExecuted: "200", expectPending: "0", expectBefore: "1000", expectAfter: "800", expectRate: "20", expectClamped: true},
		{name: "zero budget rate", budget: "0", executed: "0", pending: "0", amount: "0",
			expectExecuted: "0", expectPending: "0", expectBefore: "0", expectAfter: "0", expectRate: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := &model.LineItem{CurrentBudget: amount(tc.budget), ExecutedAmount: amount(tc.executed), PendingExecutionAmount: amount(tc.pending)}
			clamped := commit(item, amount(tc.amount), time.Now())
			assert.Equal(t, tc.expectClamped, clamped)
			assert.True(t, amount(tc.expectExecuted).Equal(item.ExecutedAmount), "executed %s", item.ExecutedAmount)
			assert.True(t, amount(tc.expectPending).Equal(item.PendingExecutionAmount), "pending %s", item.PendingExecutionAmount)
			assert.True(t, amount(tc.expectBefore).Equal(item.RemainingBeforeExec), "before %s", item.RemainingBeforeExec)
			assert.True(t, amount(tc.expectAfter).Equal(item.RemainingAfterExec), "after %s", item.RemainingAfterExec)
			assert.True(t, item.RemainingAfterExec.Equal(item.CurrentBudget.Sub(item.ExecutedAmount)))
			assert.True(t, amount(tc.expectRate).Equal(item.ExecutionRate), "rate %s", item.ExecutionRate)
		})
	}
}

func TestRelease_ClampIsReported(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	service := New(WithLogger(zap.New(core)))
	store := seedStore(t, &model.LineItem{ID: "li1", ProjectID: "p1", CurrentBudget: amount("1000"), PendingExecutionAmount: amount("100"), Active: true})

	var movements []*Movement
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		for _, value := range []string{"60", "60"} {
			movement, err := service.Release(ctx, tx, "li1", amount(value))
			if err != nil {
				return err
			}
			movements = append(movements, movement)
		}
		return nil
	}))

	require.Len(t, movements, 2)
	assert.False(t, movements[0].Clamped)
	assert.True(t, amount("40").Equal(movements[0].LineItem.PendingExecutionAmount))
	assert.True(t, movements[1].Clamped)
	assert.True(t, movements[1].LineItem.PendingExecutionAmount.IsZero())

	entries := logs.FilterMessage("pending execution amount clamped at zero").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "release", entries[0].ContextMap()["operation"])
}

func TestReserve(t *testing.T) {
	type testCase struct {
		name    string
		amount  string
		kind    model.Kind
		pending string
	}
	tests := []testCase{
		{name: "within balance", amount: "400", pending: "400"},
		{name: "exact balance", amount: "800", pending: "800"},
		{name: "over balance", amount: "800.01", kind: model.KindInsufficientBudget},
		{name: "zero", amount: "0", kind: model.KindValidation},
		{name: "negative", amount: "-5", kind: model.KindValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := seedStore(t, &model.LineItem{ID: "li1", ProjectID: "p1", CurrentBudget: amount("1000"), ExecutedAmount: amount("200"), Active: true})
			err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
				movement, err := New().Reserve(ctx, tx, "li1", amount(tc.amount))
				if err != nil {
					return err
				}
				assert.True(t, amount(tc.pending).Equal(movement.LineItem.PendingExecutionAmount))
				assert.True(t, amount("200").Equal(movement.LineItem.ExecutedAmount))
				return nil
			})
			if tc.kind != "" {
				assert.Equal(t, tc.kind, model.KindOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRollup(t *testing.T) {
	restore := clock.Freeze(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	defer restore()
	store := seedStore(t,
		&model.LineItem{ID: "a", ProjectID: "p1", CurrentBudget: amount("1000"), ExecutedAmount: amount("300"), Active: true},
		&model.LineItem{ID: "b", ProjectID: "p1", CurrentBudget: amount("500"), ExecutedAmount: amount("200"), Active: true},
		&model.LineItem{ID: "c", ProjectID: "p1", CurrentBudget: amount("500"), ExecutedAmount: amount("400"), Active: false},
	)
	service := New()
	var first, second *model.Project
	require.NoError(t, store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) (err error) {
		if first, err = service.Rollup(ctx, tx, "p1"); err != nil {
			return err
		}
		second, err = service.Rollup(ctx, tx, "p1")
		return err
	}))
	assert.True(t, amount("500").Equal(first.ExecutedAmount))
	assert.True(t, amount("1500").Equal(first.RemainingBudget))
	assert.True(t, amount("25").Equal(first.ExecutionRate))
	assert.Equal(t, first, second)

	err := store.RunInTx(context.Background(), func(ctx context.Context, tx dao.Tx) error {
		_, err := service.Rollup(ctx, tx, "missing")
		return err
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
