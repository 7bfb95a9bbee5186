package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"kitbag/internal/api"
	"kitbag/internal/session"
)

const defaultPollInterval = 10 * time.Second

// StartHealthPoller launches a background goroutine that probes the toolbox
// health endpoint and records the outcome in the session store. It returns
// immediately.
//
// While the service is reachable the probe runs at a fixed cadence. After a
// failure the next probe is pushed out on the consecutive-failure count, so a
// toolbox that is down for a while is not hammered every interval.
func StartHealthPoller(ctx context.Context, store *session.Store, client api.Toolbox, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			probe(ctx, store, client, logger)

			wait := pollDelay(interval, store.Health().ConsecutiveFailures)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

func probe(ctx context.Context, store *session.Store, client api.Toolbox, logger zerolog.Logger) {
	err := client.Health(ctx)
	store.SetHealth(err)
	if err != nil {
		logger.Warn().Err(err).Msg("health probe failed")
	}
}

// pollDelay returns the wait before the next health probe. A healthy service
// polls at the base interval; consecutive failures stretch the wait on the
// same doubling series the API client uses between retries.
func pollDelay(base time.Duration, failures int) time.Duration {
	if failures <= 0 {
		return base
	}
	return api.Backoff(failures, base)
}
