// Package notify implements the transient notice queue (toasts).
//
// # Overview
//
// Orchestrators report validation failures, request outcomes, and artifact
// lifecycle events here; the UI renders whatever Active returns on its
// refresh tick. Posting is fire-and-forget: no caller consumes a return
// value, no deduplication happens, and ordering is insertion order only.
//
// # Lifetime
//
// Each notice self-removes once its duration elapses (default 4s). A zero
// duration makes a notice persistent until the user dismisses it. Expiry is
// evaluated lazily inside Active so the queue needs no timer goroutine of
// its own; the UI's once-a-second tick is the only clock.
//
// # Thread Safety
//
// The queue is mutex-protected because dispatch closures complete on
// goroutines other than the UI loop. Active returns a defensive copy, the
// same discipline the session store uses for its snapshots.
package notify
