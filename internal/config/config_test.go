package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7856" {
		t.Fatalf("unexpected default listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Viewport.Width != 1920 || cfg.Viewport.Height != 1080 {
		t.Fatalf("unexpected default viewport: %+v", cfg.Viewport)
	}
}

func TestLoadFromPath_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: "0.0.0.0:9000"
viewport:
  width: 2560
  height: 1440
animations:
  mount_delay_ms: 10
  exit_duration_ms: 150
persistence:
  flush_interval_ms: 500
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("listen addr not overridden: %s", cfg.ListenAddr)
	}
	if cfg.Viewport.Width != 2560 {
		t.Fatalf("viewport not overridden: %+v", cfg.Viewport)
	}
	if cfg.ExitDuration().Milliseconds() != 150 {
		t.Fatalf("exit duration wrong: %v", cfg.ExitDuration())
	}
}

func TestLoadFromPath_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(`listen_addr: "1.2.3.4:1"`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOFIDECK_LISTEN", "127.0.0.1:4242")

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:4242" {
		t.Fatalf("env override lost: %s", cfg.ListenAddr)
	}
}

func TestValidate_RejectsBadViewport(t *testing.T) {
	cfg := Default()
	cfg.Viewport.Width = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero-width viewport")
	}
}
