package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the fields kitbag needs to reach the toolbox and place
// its outputs.
type Config struct {
	APIBind     string
	DevPort     int
	DownloadDir string
	LogFile     string
	Debug       bool
}

const (
	defaultConfigPath  = "~/.config/kitbag/config.toml"
	defaultDownloadDir = "~/Downloads"
	defaultLogFile     = "~/.local/state/kitbag/kitbag.log"
)

// Load locates and parses the kitbag config, falling back to defaults when
// the file is missing. Environment variables (KITBAG_API_BIND,
// KITBAG_DEV_PORT, KITBAG_DOWNLOAD_DIR, KITBAG_LOG_FILE, KITBAG_DEBUG)
// override file values; a .env file loaded at startup feeds them too.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DownloadDir: defaultDownloadDir,
		LogFile:     defaultLogFile,
	}

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		defer func() { _ = file.Close() }()

		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		var raw struct {
			APIBind     string `toml:"api_bind"`
			DevPort     int    `toml:"dev_port"`
			DownloadDir string `toml:"download_dir"`
			LogFile     string `toml:"log_file"`
			Debug       bool   `toml:"debug"`
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}

		cfg.APIBind = strings.TrimSpace(raw.APIBind)
		cfg.DevPort = raw.DevPort
		cfg.Debug = raw.Debug
		if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
			cfg.DownloadDir = dir
		}
		if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
			cfg.LogFile = logFile
		}
	}

	applyEnv(&cfg)

	cfg.DownloadDir = mustExpand(cfg.DownloadDir)
	cfg.LogFile = mustExpand(cfg.LogFile)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if bind := strings.TrimSpace(os.Getenv("KITBAG_API_BIND")); bind != "" {
		cfg.APIBind = bind
	}
	if port := strings.TrimSpace(os.Getenv("KITBAG_DEV_PORT")); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.DevPort = n
		}
	}
	if dir := strings.TrimSpace(os.Getenv("KITBAG_DOWNLOAD_DIR")); dir != "" {
		cfg.DownloadDir = dir
	}
	if logFile := strings.TrimSpace(os.Getenv("KITBAG_LOG_FILE")); logFile != "" {
		cfg.LogFile = logFile
	}
	if debug := strings.TrimSpace(os.Getenv("KITBAG_DEBUG")); debug != "" {
		cfg.Debug = debug == "1" || strings.EqualFold(debug, "true")
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
