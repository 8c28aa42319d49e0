// Package ledger owns the per line item and per project financial
// aggregates.  Every operation runs inside a caller supplied dao.Tx so that
// ledger effects commit or abort together with the workflow decision that
// caused them.
package ledger
