package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Len(t, New(), 36)
	assert.NotEqual(t, New(), New())
}

func TestUse(t *testing.T) {
	restore := Use(Sequence("step"))
	assert.Equal(t, "step-1", New())
	assert.Equal(t, "step-2", New())
	restore()
	assert.Len(t, New(), 36)
}
