package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestResolveBaseURL_LoopbackGetsDevPort(t *testing.T) {
	tests := []struct {
		name string
		bind string
		want string
	}{
		{"empty defaults to loopback dev port", "", "http://127.0.0.1:10000"},
		{"localhost gets dev port", "localhost", "http://localhost:10000"},
		{"loopback ip gets dev port", "127.0.0.1", "http://127.0.0.1:10000"},
		{"explicit port kept", "127.0.0.1:8080", "http://127.0.0.1:8080"},
		{"remote host gets https", "toolbox.example.com", "https://toolbox.example.com"},
		{"remote host with port", "toolbox.example.com:9000", "https://toolbox.example.com:9000"},
		{"explicit scheme kept", "http://toolbox.example.com", "http://toolbox.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := resolveBaseURL(tt.bind, 0)
			if err != nil {
				t.Fatalf("resolveBaseURL(%q) returned error: %v", tt.bind, err)
			}
			if u.String() != tt.want {
				t.Fatalf("resolveBaseURL(%q) = %q, want %q", tt.bind, u.String(), tt.want)
			}
		})
	}
}

func TestResolveBaseURL_StripsPathQueryFragment(t *testing.T) {
	u, err := resolveBaseURL("http://example.com:1234/path?x=1#frag", 0)
	if err != nil {
		t.Fatalf("resolveBaseURL returned error: %v", err)
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestBackoff_Series(t *testing.T) {
	base := time.Second

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{"attempt below one clamps", 0, 2 * time.Second},
		{"first attempt", 1, 2 * time.Second},
		{"second attempt", 2, 4 * time.Second},
		{"third attempt", 3, 8 * time.Second},
		{"fourth attempt", 4, 16 * time.Second},
		{"fifth attempt capped", 5, 30 * time.Second},
		{"many attempts capped", 20, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Backoff(tt.attempt, base)
			if got != tt.want {
				t.Errorf("Backoff(%d, %v) = %v, want %v", tt.attempt, base, got, tt.want)
			}
		})
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Bind:        serverURL,
		BackoffBase: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return c
}

func TestClient_DownloadVideoSuccess(t *testing.T) {
	t.Parallel()

	var gotReq VideoRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/download-video" {
			http.NotFound(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Disposition", `attachment; filename=clip.mp4`)
		_, _ = w.Write([]byte("binary-video"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	payload, err := c.DownloadVideo(context.Background(), VideoRequest{URL: "https://example.com/v", Quality: "best"})
	if err != nil {
		t.Fatalf("DownloadVideo returned error: %v", err)
	}
	if gotReq.URL != "https://example.com/v" || gotReq.Quality != "best" {
		t.Fatalf("server saw request %+v, want url and quality forwarded", gotReq)
	}
	if string(payload.Data) != "binary-video" {
		t.Fatalf("payload data = %q, want binary body", payload.Data)
	}
	if payload.Filename != "clip.mp4" {
		t.Fatalf("payload filename = %q, want clip.mp4 from Content-Disposition", payload.Filename)
	}
	if payload.MIME != "video/mp4" {
		t.Fatalf("payload mime = %q, want video/mp4", payload.MIME)
	}
}

func TestClient_FilenameFallsBackPerEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	payload, err := c.GenerateQR(context.Background(), QRRequest{Text: "hello"})
	if err != nil {
		t.Fatalf("GenerateQR returned error: %v", err)
	}
	if payload.Filename != "qrcode.png" {
		t.Fatalf("payload filename = %q, want qrcode.png fallback", payload.Filename)
	}
}

func TestClient_RetriesToExhaustionWithBackoff(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var stamps []time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"tool unavailable"}`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{
		Bind:        server.URL,
		BackoffBase: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.Synthesize(context.Background(), SpeechRequest{Text: "hi", Language: "en"})
	if err == nil {
		t.Fatal("Synthesize succeeded, want error after exhausted retries")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error type = %T, want *HTTPError", err)
	}
	if httpErr.Message() != "tool unavailable" {
		t.Fatalf("message = %q, want detail from error body", httpErr.Message())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(stamps) != 3 {
		t.Fatalf("server saw %d attempts, want exactly 3", len(stamps))
	}
	// Delay floors follow the 2^n series scaled by the test base.
	if gap := stamps[1].Sub(stamps[0]); gap < 40*time.Millisecond {
		t.Fatalf("gap between attempts 1 and 2 = %v, want >= 40ms", gap)
	}
	if gap := stamps[2].Sub(stamps[1]); gap < 80*time.Millisecond {
		t.Fatalf("gap between attempts 2 and 3 = %v, want >= 80ms", gap)
	}
}

func TestClient_ClientErrorFailsFast(t *testing.T) {
	t.Parallel()

	var attempts int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Error downloading video: unsupported URL"}`))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	_, err := c.DownloadVideo(context.Background(), VideoRequest{URL: "https://example.com/v", Quality: "best"})
	if err == nil {
		t.Fatal("DownloadVideo succeeded, want error")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Fatalf("server saw %d attempts, want 1 (4xx must not retry)", attempts)
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error type = %T, want *HTTPError", err)
	}
	if httpErr.Detail != "Error downloading video: unsupported URL" {
		t.Fatalf("detail = %q, want server detail preserved", httpErr.Detail)
	}
}

func TestClient_NetworkErrorAfterRetries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	c := newTestClient(t, server.URL)

	_, err := c.GenerateQR(context.Background(), QRRequest{Text: "hello"})
	if err == nil {
		t.Fatal("GenerateQR succeeded, want network error")
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error type = %T, want *NetworkError", err)
	}
}

func TestClient_RemoveBackgroundSendsMultipart(t *testing.T) {
	t.Parallel()

	var gotName string
	var gotData []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		gotName = header.Filename
		buf := make([]byte, header.Size)
		_, _ = file.Read(buf)
		gotData = buf

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("cutout"))
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	payload, err := c.RemoveBackground(context.Background(), CutoutRequest{
		Filename: "photo.jpg",
		MIME:     "image/jpeg",
		Data:     []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("RemoveBackground returned error: %v", err)
	}
	if gotName != "photo.jpg" {
		t.Fatalf("uploaded filename = %q, want photo.jpg", gotName)
	}
	if string(gotData) != "jpeg-bytes" {
		t.Fatalf("uploaded data = %q, want original bytes", gotData)
	}
	if payload.Filename != "no_bg_image.png" {
		t.Fatalf("payload filename = %q, want no_bg_image.png fallback", payload.Filename)
	}
}

func TestClient_HealthSingleAttempt(t *testing.T) {
	t.Parallel()

	var attempts int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	c := newTestClient(t, server.URL)

	if err := c.Health(context.Background()); err == nil {
		t.Fatal("Health succeeded, want error")
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Fatalf("server saw %d attempts, want 1 (health does not retry)", attempts)
	}
}
