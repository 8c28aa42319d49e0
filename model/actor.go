package model

// Actor is an already authenticated identity acting on the workflow.
type Actor struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name"`
	Role string `json:"role" yaml:"role" toml:"role"`
}
