// Package api provides an HTTP client for the Multi-Service Toolbox API.
//
// # Overview
//
// The toolbox exposes four single-purpose tools behind a thin REST surface:
// video download, QR code generation, text-to-speech, and image background
// removal. Every tool is one POST that returns a binary artifact on success
// or a JSON {"detail": "..."} body on failure. This package owns the whole
// round trip: target origin resolution, request encoding, bounded retry,
// and error normalization.
//
// # Endpoints
//
//   - GET  /health               reachability probe
//   - POST /api/download-video   JSON {url, quality} -> video stream
//   - POST /api/generate-qr     JSON {text, size, border, error_correction} -> PNG
//   - POST /api/text-to-speech  JSON {text, language, slow, voice_style} -> MP3
//   - POST /api/remove-background multipart {file} -> PNG
//
// # Origin Resolution
//
// The target origin is resolved once when the client is built. Loopback
// hosts without an explicit port are pointed at the fixed local development
// port (10000, the upstream server's default), so the same build works
// against a local toolbox and a deployed one without reconfiguration. Any
// other host is addressed directly, defaulting to https.
//
// # Retry Policy
//
// Failed calls are reissued up to three attempts total, waiting the Backoff
// series between attempts (2s, 4s, 8s with the default one-second base,
// capped at 30s). Retries are strictly sequential; there is never more than
// one in-flight request per call. Transport failures and 5xx responses
// retry; 4xx responses fail fast because the server's answer will not
// change. After the final attempt the last error propagates unchanged.
//
// # Error Handling
//
// Failures are normalized into two types:
//
//   - *NetworkError: the request never produced a response (DNS,
//     connection, timeout, cancelled context)
//   - *HTTPError: the server answered outside 2xx; Message() prefers the
//     JSON detail field and falls back to a status-derived string
//
// ErrorMessage flattens either into the text shown to the user.
//
// # Thread Safety
//
// The Client is safe for concurrent use; independent service calls may be
// in flight at the same time. The client itself holds no session state.
package api
