package dao

import (
	"errors"

	"github.com/viant/budgetflow/model"
)

// Common, reusable DAO errors.  Using sentinel variables allows callers to
// reliably detect error conditions via errors.Is instead of brittle string
// comparisons.
var (
	// ErrInvalidID indicates that the supplied ID/key is empty.
	ErrInvalidID = errors.New("dao: invalid id")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")

	// ErrDuplicate is returned when inserting an entity whose ID exists.
	ErrDuplicate = errors.New("dao: duplicate id")
)

// NotFound reports a missing entity as a classified model error.
func NotFound(entity, id string) error {
	return model.NewError(model.KindNotFound, "%s %s not found", entity, id)
}

// AlreadyDecided reports a lost race on a step decision.
func AlreadyDecided(stepID string) error {
	return model.NewError(model.KindAlreadyDecided, "step %s has already been decided", stepID)
}
