// Package session provides the in-memory UI state store for one kitbag run.
//
// # Overview
//
// The store is the single shared mutable resource between the UI loop, the
// dispatch goroutines, and the health poller. It owns four things: the
// active modal identifier, the set of services with a request in flight,
// the latest result per service, and the toolbox health snapshot. Nothing
// here is persisted; the whole store dies with the session.
//
// # Invariants
//
//   - At most one modal is active at a time. Opening a second closes the
//     first, resetting that service's loading/result state and releasing
//     its artifact handles.
//   - Closing a modal always clears the service's result and loading state
//     and releases outstanding handles.
//   - Replacing a result releases the prior result's handles before the new
//     ones are stored, so handles are never silently dropped.
//   - Operations naming an unknown service identifier are no-ops, not
//     errors.
//
// # Late Responses
//
// In-flight requests are never cancelled. A response that arrives after its
// modal was closed still lands in the store keyed by service id; the UI
// renders whatever the store holds the next time that modal opens, and the
// handle lifecycle is unaffected.
//
// # Concurrency
//
// Dispatch closures finish on their own goroutines and the poller updates
// health from another, so every accessor is mutex-protected. The store is
// constructed per run (and per test) with an explicit service list; there
// are no package-level globals to leak between tests.
package session
