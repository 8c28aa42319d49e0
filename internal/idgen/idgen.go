package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// NewFunc produces identifiers; override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }

// Sequence returns a generator yielding prefix-1, prefix-2, ...
func Sequence(prefix string) func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&n, 1))
	}
}

// Use installs fn as the generator and returns a function restoring the
// previous one.
func Use(fn func() string) (restore func()) {
	prev := NewFunc
	NewFunc = fn
	return func() { NewFunc = prev }
}
