// Package workflow drives execution requests through their approval chain.
//
// Every decision runs as a single store transaction: all checks happen
// before the first write, so a failed approve or reject leaves no trace.
// Notifications are sent after commit and never affect the outcome.
package workflow
