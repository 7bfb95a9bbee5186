package app

import (
	"context"
	"fmt"
	"time"

	"kitbag/internal/api"
	"kitbag/internal/artifact"
	"kitbag/internal/config"
	"kitbag/internal/logging"
	"kitbag/internal/notify"
	"kitbag/internal/prefs"
	"kitbag/internal/service"
	"kitbag/internal/session"
	"kitbag/internal/ui"
)

// Options configure the Kitbag application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/kitbag/prefs.toml
	PollEvery  int    // seconds; zero uses default
}

// Run boots the Kitbag TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	logger, closeLog, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	client, err := api.NewClient(api.Options{
		Bind:    cfg.APIBind,
		DevPort: cfg.DevPort,
		Logger:  &logger,
	})
	if err != nil {
		return fmt.Errorf("init toolbox client: %w", err)
	}
	logger.Info().Str("origin", client.BaseURL()).Msg("toolbox resolved")

	store := session.NewStore(service.IDs())
	notices := notify.NewQueue()

	registry, err := artifact.NewRegistry(artifact.Options{Logger: &logger})
	if err != nil {
		return fmt.Errorf("init artifact staging: %w", err)
	}
	defer registry.Close()

	orch := service.New(service.Options{
		Client:      client,
		Session:     store,
		Notices:     notices,
		Artifacts:   registry,
		Logger:      &logger,
		DownloadDir: cfg.DownloadDir,
	})

	interval := defaultPollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Probe once before the UI starts so the header opens with a real status,
	// then keep polling in the background.
	probe(ctx, store, client, logger)
	StartHealthPoller(ctx, store, client, interval, logger)

	return ui.Run(ui.Options{
		Context:      ctx,
		Orchestrator: orch,
		Session:      store,
		Notices:      notices,
		Client:       client,
		Config:       &cfg,
		Logger:       logger,
		ThemeName:    userPrefs.Theme,
		Prefs:        userPrefs,
		PrefsPath:    prefsPath,
	})
}
