// Package model contains the persisted representation of budgets, execution
// requests and their approval chains used by the budgetflow engine.
//
// Projects aggregate budget line items; an execution request spends against a
// single line item and moves through an ordered chain of approval steps.  The
// request lifecycle is exposed as an explicit State so that callers never have
// to interpret the raw status/current-step pair themselves.
package model
