package model

import (
	"errors"
	"fmt"
)

// Kind classifies a budgetflow failure.
type Kind string

const (
	KindNotFound           Kind = "NotFound"
	KindAlreadyDecided     Kind = "AlreadyDecided"
	KindStepOutOfOrder     Kind = "StepOutOfOrder"
	KindRoleMismatch       Kind = "RoleMismatch"
	KindInsufficientBudget Kind = "InsufficientBudget"
	KindValidation         Kind = "ValidationError"
)

// Category is the coarse error surface reported to callers.
type Category string

const (
	CategoryNotFound   Category = "NotFound"
	CategoryBadRequest Category = "BadRequest"
	CategoryForbidden  Category = "Forbidden"
)

// Sentinels usable with errors.Is; matching is by Kind only.
var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAlreadyDecided     = &Error{Kind: KindAlreadyDecided}
	ErrStepOutOfOrder     = &Error{Kind: KindStepOutOfOrder}
	ErrRoleMismatch       = &Error{Kind: KindRoleMismatch}
	ErrInsufficientBudget = &Error{Kind: KindInsufficientBudget}
	ErrValidation         = &Error{Kind: KindValidation}
)

// Error is a classified failure carrying a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Category maps the kind onto the caller-facing error surface.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindNotFound:
		return CategoryNotFound
	case KindRoleMismatch:
		return CategoryForbidden
	default:
		return CategoryBadRequest
	}
}

// NewError creates a classified error.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a classified error with an underlying cause.
func WrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err or an empty Kind when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CategoryOf returns the caller-facing category, or an empty value for
// unclassified (internal) errors.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category()
	}
	return ""
}
