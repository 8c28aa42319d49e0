// Package idgen generates identifiers for projects, line items, requests and
// approval steps.  Identifiers are opaque strings; tests swap the generator
// for a deterministic sequence.
package idgen
