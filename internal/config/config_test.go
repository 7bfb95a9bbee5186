package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if cfg.APIBind != "" {
		t.Fatalf("APIBind = %q, want empty (client defaults to loopback)", cfg.APIBind)
	}
	if cfg.DownloadDir == "" || strings.HasPrefix(cfg.DownloadDir, "~") {
		t.Fatalf("DownloadDir = %q, want expanded default", cfg.DownloadDir)
	}
	if cfg.LogFile == "" || strings.HasPrefix(cfg.LogFile, "~") {
		t.Fatalf("LogFile = %q, want expanded default", cfg.LogFile)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
api_bind = "toolbox.example.com"
dev_port = 9000
download_dir = "` + dir + `/out"
debug = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "toolbox.example.com" {
		t.Fatalf("APIBind = %q", cfg.APIBind)
	}
	if cfg.DevPort != 9000 {
		t.Fatalf("DevPort = %d, want 9000", cfg.DevPort)
	}
	if cfg.DownloadDir != filepath.Join(dir, "out") {
		t.Fatalf("DownloadDir = %q", cfg.DownloadDir)
	}
	if !cfg.Debug {
		t.Fatal("Debug not set from file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`api_bind = "from-file.example.com"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KITBAG_API_BIND", "from-env.example.com")
	t.Setenv("KITBAG_DEV_PORT", "12345")
	t.Setenv("KITBAG_DEBUG", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "from-env.example.com" {
		t.Fatalf("APIBind = %q, want env value", cfg.APIBind)
	}
	if cfg.DevPort != 12345 {
		t.Fatalf("DevPort = %d, want env value", cfg.DevPort)
	}
	if !cfg.Debug {
		t.Fatal("Debug not set from env")
	}
}

func TestLoad_BadTOMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_bind = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestLoad_InvalidEnvPortIgnored(t *testing.T) {
	t.Setenv("KITBAG_DEV_PORT", "not-a-number")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DevPort != 0 {
		t.Fatalf("DevPort = %d, want 0 (bad env ignored)", cfg.DevPort)
	}
}
