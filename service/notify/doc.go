// Package notify delivers best-effort workflow notifications.  Delivery
// happens after the owning transaction committed; failures are logged and
// never propagate back into the workflow.
package notify
