package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	type testCase struct {
		name        string
		chains      []*Chain
		lookup      string
		expected    []string
		expectFound bool
		expectError bool
	}

	tests := []testCase{
		{name: "default when empty", lookup: "", expected: []string{"MANAGER", "CFO", "ADMIN"}, expectFound: true},
		{
			name:        "custom chain normalised",
			chains:      []*Chain{{Type: "purchase", Roles: []string{"site_manager", "cfo"}}},
			lookup:      "PURCHASE",
			expected:    []string{"SITE_MANAGER", "CFO"},
			expectFound: true,
		},
		{name: "unknown type", chains: []*Chain{{Type: "purchase", Roles: []string{"cfo"}}}, lookup: "travel"},
		{name: "empty roles", chains: []*Chain{{Type: "x"}}, expectError: true},
		{name: "blank role", chains: []*Chain{{Type: "x", Roles: []string{"CFO", " "}}}, expectError: true},
		{name: "duplicate", chains: []*Chain{{Type: "x", Roles: []string{"A"}}, {Type: "X", Roles: []string{"B"}}}, expectError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			registry, err := NewRegistry(tc.chains...)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			c, ok := registry.Lookup(tc.lookup)
			assert.Equal(t, tc.expectFound, ok)
			if ok {
				assert.Equal(t, tc.expected, c.Roles)
				assert.Equal(t, len(tc.expected), c.Len())
			}
		})
	}
}
