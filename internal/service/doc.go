// Package service implements the per-service orchestrators: the
// validate -> dispatch -> render lifecycle behind each of kitbag's four
// tools (video download, QR generation, text-to-speech, background
// removal).
//
// # Lifecycle
//
// Every submission walks one state machine:
//
//	Idle -> Validating -> Idle            (input rejected, notice posted)
//	                   -> Loading         (request in flight, resubmission blocked)
//	Loading -> Rendered                   (binary staged behind a handle)
//	        -> ErrorRendered              (message surfaced inline + notice)
//	Rendered/ErrorRendered -> Idle        (reset, save short-release, or close)
//
// Validating is transient: Submit either rejects synchronously or hands
// back a dispatch closure and the service is already Loading. The closure
// runs off the UI goroutine (a Bubble Tea command), performs exactly one
// client call — the client owns all retrying — and its Result is fed to
// Finish on the UI loop. Orchestrators never retry; by the time Finish sees
// an error the client's attempts are exhausted.
//
// # Validation
//
// Rules enforced before any network call:
//
//   - video: non-empty, parseable absolute http(s) URL
//   - qr: non-blank text, at most 2000 characters, known error-correction
//     level
//   - tts: non-blank text, at most 5000 characters, supported language code
//   - background-removal: readable file, image/* content type, at most 10MB
//
// A violation posts one error notice and nothing is dispatched; the server
// stays the final authority on everything else.
//
// # Results and Handles
//
// Finish stages successful payloads in the artifact registry and stores the
// handle in the session keyed by service id, so a response that arrives
// after its modal closed still lands somewhere consistent. Background
// removal stages a second handle for the original upload so the UI can show
// both side by side. Save copies the artifact into the downloads directory
// (timestamped name on collision) and shortens the staged copy's release
// window to ten seconds.
package service
