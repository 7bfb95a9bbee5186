// Package artifact manages revocable handles for rendered binary results.
//
// # Overview
//
// Every successful service call produces a binary artifact (video, PNG,
// MP3) that the UI displays and can save to disk. The browser front end
// this design comes from wrapped those in object URLs and revoked them by
// hand; here each artifact is staged as a temp file wrapped in a Handle
// with scoped-acquisition semantics: every handle is released on every exit
// path, never left to garbage collection.
//
// # Lifetime Contract
//
// A handle is released exactly once, by whichever of these fires first:
//
//   - explicit Release (modal close, service reset, result replaced)
//   - the short post-save timer (ReleaseAfter, 10s after a save)
//   - the grace window expiring unused (5 minutes by default)
//   - Registry.Close at shutdown
//
// Release is idempotent; double releases are safe no-ops. Creating a new
// result for a service goes through Registry.ReleaseService first, so no
// two handles for the same artifact slot are ever live together.
//
// # Concurrency
//
// Grace timers fire on timer goroutines while the UI touches handles from
// its own loop, so Handle and Registry are mutex-protected. The registry
// drops released handles from its open set via a callback, which keeps
// OpenCount an accurate leak check for tests.
package artifact
