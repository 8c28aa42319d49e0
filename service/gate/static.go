package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/budgetflow/model"
)

// StaticDirectory is a Directory backed by a fixed set of actors, typically
// loaded from configuration.
type StaticDirectory struct {
	mux    sync.RWMutex
	actors map[string]*model.Actor
}

var _ Directory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a directory holding actors.
func NewStaticDirectory(actors ...*model.Actor) (*StaticDirectory, error) {
	ret := &StaticDirectory{actors: make(map[string]*model.Actor, len(actors))}
	for _, actor := range actors {
		if err := ret.Register(actor); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// Register adds or replaces an actor.
func (d *StaticDirectory) Register(actor *model.Actor) error {
	if actor == nil || actor.ID == "" {
		return fmt.Errorf("actor id cannot be empty")
	}
	if NormalizeRole(actor.Role) == "" {
		return fmt.Errorf("actor %s has no role", actor.ID)
	}
	copied := *actor
	copied.Role = NormalizeRole(actor.Role)
	d.mux.Lock()
	d.actors[actor.ID] = &copied
	d.mux.Unlock()
	return nil
}

// Lookup returns a copy of the actor or a NotFound error.
func (d *StaticDirectory) Lookup(_ context.Context, actorID string) (*model.Actor, error) {
	d.mux.RLock()
	actor, ok := d.actors[actorID]
	d.mux.RUnlock()
	if !ok {
		return nil, model.NewError(model.KindNotFound, "actor %s not found", actorID)
	}
	copied := *actor
	return &copied, nil
}
