package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kitbag/internal/api"
	"kitbag/internal/service"
	"kitbag/internal/session"
)

type stubToolbox struct {
	health func(context.Context) error
}

func (s *stubToolbox) Health(ctx context.Context) error { return s.health(ctx) }

func (s *stubToolbox) DownloadVideo(context.Context, api.VideoRequest) (*api.Payload, error) {
	return nil, errors.New("not implemented")
}

func (s *stubToolbox) GenerateQR(context.Context, api.QRRequest) (*api.Payload, error) {
	return nil, errors.New("not implemented")
}

func (s *stubToolbox) Synthesize(context.Context, api.SpeechRequest) (*api.Payload, error) {
	return nil, errors.New("not implemented")
}

func (s *stubToolbox) RemoveBackground(context.Context, api.CutoutRequest) (*api.Payload, error) {
	return nil, errors.New("not implemented")
}

func TestPollDelay_HealthyUsesBaseInterval(t *testing.T) {
	t.Parallel()

	if got := pollDelay(10*time.Second, 0); got != 10*time.Second {
		t.Fatalf("pollDelay(10s, 0) = %v, want 10s", got)
	}
}

func TestPollDelay_FailuresStretchTheWait(t *testing.T) {
	t.Parallel()

	cases := []struct {
		failures int
		want     time.Duration
	}{
		{1, 20 * time.Second},
		{2, 30 * time.Second}, // capped
		{5, 30 * time.Second},
	}
	for _, tc := range cases {
		if got := pollDelay(10*time.Second, tc.failures); got != tc.want {
			t.Fatalf("pollDelay(10s, %d) = %v, want %v", tc.failures, got, tc.want)
		}
	}
}

func TestProbe_RecordsHealthTransitions(t *testing.T) {
	t.Parallel()

	store := session.NewStore(service.IDs())
	var fail atomic.Bool
	client := &stubToolbox{health: func(context.Context) error {
		if fail.Load() {
			return errors.New("connection refused")
		}
		return nil
	}}

	ctx := context.Background()
	probe(ctx, store, client, zerolog.Nop())
	if h := store.Health(); !h.Reachable || h.Offline() {
		t.Fatalf("after successful probe: %+v", h)
	}

	fail.Store(true)
	probe(ctx, store, client, zerolog.Nop())
	probe(ctx, store, client, zerolog.Nop())
	h := store.Health()
	if h.Reachable {
		t.Fatal("store still reachable after failed probes")
	}
	if !h.Offline() {
		t.Fatalf("two consecutive failures should read as offline: %+v", h)
	}
	if h.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", h.ConsecutiveFailures)
	}
}

func TestStartHealthPoller_StopsOnCancel(t *testing.T) {
	t.Parallel()

	store := session.NewStore(service.IDs())
	var calls atomic.Int32
	client := &stubToolbox{health: func(context.Context) error {
		calls.Add(1)
		return nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	StartHealthPoller(ctx, store, client, 5*time.Millisecond, zerolog.Nop())

	deadline := time.Now().Add(time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 2 {
		t.Fatal("poller never reached a second probe")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := calls.Load()
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != settled {
		t.Fatal("poller kept probing after cancellation")
	}
}
