package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/budgetflow/model"
	"github.com/viant/budgetflow/service/dao"
	"github.com/viant/budgetflow/service/dao/daotest"
)

func TestService(t *testing.T) {
	daotest.Run(t, func(t *testing.T) dao.Store { return New() })
}

func TestService_ViewIsReadOnly(t *testing.T) {
	store := New()
	err := store.View(context.Background(), func(ctx context.Context, r dao.Reader) error {
		return r.(dao.Tx).InsertProject(ctx, &model.Project{ID: "p1"})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := New().RunInTx(ctx, func(context.Context, dao.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
