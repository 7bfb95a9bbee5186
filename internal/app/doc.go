// Package app wires the Kitbag application together.
//
// Run loads configuration and user preferences, opens the log file, resolves
// the toolbox origin, and builds the shared pieces every tool works against:
// the session store, the notification queue, the artifact staging registry,
// and the orchestrator. A background poller keeps the toolbox health status
// fresh for the UI header, backing off while the service stays unreachable.
//
// Shutdown is driven by context cancellation: the UI returns, the deferred
// registry close releases every staged artifact, and the log file is closed
// last.
package app
