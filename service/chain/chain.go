// Package chain holds the configured approval chains, one per request type.
package chain

import (
	"fmt"
	"strings"

	"github.com/viant/budgetflow/service/gate"
)

// DefaultType is the request type used when a request does not name one.
const DefaultType = "EXECUTION"

// Chain is an ordered list of approver roles; position i is step i+1.
type Chain struct {
	Type  string   `json:"type" yaml:"type" toml:"type"`
	Roles []string `json:"roles" yaml:"roles" toml:"roles"`
}

// Default returns the standard three step chain.
func Default() *Chain {
	return &Chain{Type: DefaultType, Roles: []string{"MANAGER", "CFO", "ADMIN"}}
}

// Len returns the number of steps.
func (c *Chain) Len() int { return len(c.Roles) }

// Registry resolves request types to chains.
type Registry struct {
	chains map[string]*Chain
}

// NewRegistry validates and indexes chains.  Role names are normalised.
func NewRegistry(chains ...*Chain) (*Registry, error) {
	ret := &Registry{chains: make(map[string]*Chain, len(chains))}
	for _, c := range chains {
		if c == nil {
			continue
		}
		key := normalizeType(c.Type)
		if key == "" {
			return nil, fmt.Errorf("chain type cannot be empty")
		}
		if len(c.Roles) == 0 {
			return nil, fmt.Errorf("chain %s has no steps", key)
		}
		if _, ok := ret.chains[key]; ok {
			return nil, fmt.Errorf("duplicate chain %s", key)
		}
		normalized := &Chain{Type: key, Roles: make([]string, len(c.Roles))}
		for i, role := range c.Roles {
			if normalized.Roles[i] = gate.NormalizeRole(role); normalized.Roles[i] == "" {
				return nil, fmt.Errorf("chain %s step %d has no role", key, i+1)
			}
		}
		ret.chains[key] = normalized
	}
	if len(ret.chains) == 0 {
		ret.chains[DefaultType] = Default()
	}
	return ret, nil
}

// Lookup returns the chain for requestType; an empty type selects
// DefaultType.
func (r *Registry) Lookup(requestType string) (*Chain, bool) {
	key := normalizeType(requestType)
	if key == "" {
		key = DefaultType
	}
	c, ok := r.chains[key]
	return c, ok
}

func normalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
