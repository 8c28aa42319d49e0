// Package tracing wraps OpenTelemetry so budgetflow operations can open and
// close spans without importing the upstream packages directly.  When no
// provider is installed spans are no-ops.
package tracing
