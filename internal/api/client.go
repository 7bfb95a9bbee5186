package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Toolbox defines the interface for issuing requests to the toolbox API.
// This interface is implemented by *Client and can be used for testing.
type Toolbox interface {
	Health(ctx context.Context) error
	DownloadVideo(ctx context.Context, req VideoRequest) (*Payload, error)
	GenerateQR(ctx context.Context, req QRRequest) (*Payload, error)
	Synthesize(ctx context.Context, req SpeechRequest) (*Payload, error)
	RemoveBackground(ctx context.Context, req CutoutRequest) (*Payload, error)
}

// Ensure Client implements Toolbox at compile time.
var _ Toolbox = (*Client)(nil)

// Client talks to the Multi-Service Toolbox HTTP API.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	userAgent   string
	logger      zerolog.Logger
	maxAttempts int
	backoffBase time.Duration
}

const (
	defaultDevPort   = 10000
	defaultUserAgent = "kitbag/0.1"
	requestTimeout   = 120 * time.Second

	// maxAttempts bounds the retry loop; the final failure propagates.
	defaultMaxAttempts = 3

	// maxBackoff caps the wait between attempts.
	maxBackoff = 30 * time.Second
)

// Options configure a Client. The zero value of every field has a usable
// default.
type Options struct {
	// Bind is the host[:port] or URL of the toolbox. Loopback hosts without
	// an explicit port target DevPort; other hosts are addressed directly.
	Bind    string
	DevPort int

	HTTPClient  *http.Client
	Logger      *zerolog.Logger
	MaxAttempts int
	// BackoffBase scales the wait between attempts; one second yields the
	// 2s/4s/8s series. Tests shrink it to keep the retry loop fast.
	BackoffBase time.Duration
}

// NewClient builds a Client from the provided options.
func NewClient(opts Options) (*Client, error) {
	base, err := resolveBaseURL(opts.Bind, opts.DevPort)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = time.Second
	}

	return &Client{
		baseURL:     base,
		http:        httpClient,
		userAgent:   defaultUserAgent,
		logger:      logger,
		maxAttempts: attempts,
		backoffBase: backoffBase,
	}, nil
}

// BaseURL returns the resolved target origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Health checks that the toolbox service is reachable. It performs a single
// attempt; the caller owns the polling cadence.
func (c *Client) Health(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	_, err := c.once(ctx, http.MethodGet, "/health", "", nil, "")
	return err
}

// DownloadVideo fetches a video through the toolbox downloader.
func (c *Client) DownloadVideo(ctx context.Context, req VideoRequest) (*Payload, error) {
	return c.postJSON(ctx, "/api/download-video", req, "video.mp4")
}

// GenerateQR renders text as a QR code PNG.
func (c *Client) GenerateQR(ctx context.Context, req QRRequest) (*Payload, error) {
	return c.postJSON(ctx, "/api/generate-qr", req, "qrcode.png")
}

// Synthesize converts text to spoken MP3 audio.
func (c *Client) Synthesize(ctx context.Context, req SpeechRequest) (*Payload, error) {
	return c.postJSON(ctx, "/api/text-to-speech", req, "speech.mp3")
}

// RemoveBackground uploads an image and returns it with the background cut
// out.
func (c *Client) RemoveBackground(ctx context.Context, req CutoutRequest) (*Payload, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(req.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	return c.call(ctx, http.MethodPost, "/api/remove-background", writer.FormDataContentType(), body.Bytes(), "no_bg_image.png")
}

func (c *Client) postJSON(ctx context.Context, path string, req any, fallbackName string) (*Payload, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.call(ctx, http.MethodPost, path, "application/json", body, fallbackName)
}

// call performs a request with bounded retry. Retries are sequential, one
// in-flight request at a time, waiting the Backoff series between attempts.
func (c *Client) call(ctx context.Context, method, path, contentType string, body []byte, fallbackName string) (*Payload, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		payload, err := c.once(ctx, method, path, contentType, body, fallbackName)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		if !Retryable(err) {
			c.logger.Debug().Str("path", path).Err(err).Msg("request failed, not retryable")
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := Backoff(attempt, c.backoffBase)
		c.logger.Warn().
			Str("path", path).
			Int("attempt", attempt).
			Dur("delay", delay).
			Err(err).
			Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, &NetworkError{Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	c.logger.Error().Str("path", path).Int("attempts", c.maxAttempts).Err(lastErr).Msg("request failed, attempts exhausted")
	return nil, lastErr
}

// once performs a single round trip and classifies the outcome.
func (c *Client) once(ctx context.Context, method, path, contentType string, body []byte, fallbackName string) (*Payload, error) {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}

	return &Payload{
		Data:     data,
		MIME:     resp.Header.Get("Content-Type"),
		Filename: responseFilename(resp, fallbackName),
	}, nil
}

// decodeError builds an HTTPError from a non-2xx response, preferring the
// JSON detail field when the body carries one.
func decodeError(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return httpErr
	}
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		httpErr.Detail = strings.TrimSpace(parsed.Detail)
	}
	return httpErr
}

// responseFilename extracts the attachment filename from Content-Disposition,
// falling back to the per-endpoint default.
func responseFilename(resp *http.Response, fallback string) string {
	disposition := resp.Header.Get("Content-Disposition")
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := strings.TrimSpace(params["filename"]); name != "" {
				return name
			}
		}
	}
	return fallback
}

// Backoff returns the wait before reissuing attempt+1. The series doubles
// per attempt (2s, 4s, 8s with a one-second base) and never exceeds
// maxBackoff.
func Backoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = time.Second
	}
	// Cap the shift before multiplying so large attempt counts cannot
	// overflow.
	if attempt > 10 {
		attempt = 10
	}
	delay := base * time.Duration(1<<uint(attempt))
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

// resolveBaseURL turns a configured bind value into the target origin.
// Loopback hosts without an explicit port get the fixed local development
// port; any other host is addressed as-is, defaulting to https.
func resolveBaseURL(bind string, devPort int) (*url.URL, error) {
	if devPort <= 0 {
		devPort = defaultDevPort
	}

	trimmed := strings.TrimSpace(bind)
	if trimmed == "" {
		trimmed = "127.0.0.1"
	}
	hadScheme := strings.Contains(trimmed, "://")
	if !hadScheme {
		trimmed = "http://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api bind %q: %w", bind, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api bind %q: missing host", bind)
	}

	if isLoopbackHost(u.Hostname()) {
		if u.Port() == "" {
			u.Host = net.JoinHostPort(u.Hostname(), fmt.Sprintf("%d", devPort))
		}
	} else if !hadScheme {
		u.Scheme = "https"
	}

	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}
