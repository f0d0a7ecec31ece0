package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/microsync/internal/apps"
	"github.com/danmuck/microsync/internal/router"
	"github.com/danmuck/microsync/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadTemplate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "microsync" || cfg.Addr != ":9300" {
		t.Fatalf("unexpected identity: %+v", cfg)
	}
	if cfg.RoutingMode != router.ModeAuto {
		t.Fatalf("unexpected routing mode: %q", cfg.RoutingMode)
	}
	if len(cfg.Apps) != 2 || cfg.Apps[1].Name != "dashboard" || !cfg.Apps[1].Prefetch {
		t.Fatalf("unexpected apps: %+v", cfg.Apps)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !apps.IsEffective(reg, "app1") || apps.IsEffective(reg, "dashboard") {
		t.Fatalf("seeded registry flags mismatch: %+v", reg.List())
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, "name = \"x\"\n")
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected existing file to be kept")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
routing_mode = "HASH"
max_decode_rounds = 4
cors_origins = [" https://host.example ", ""]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "microsync" || cfg.Addr != ":9300" || cfg.LogLevel != "" {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if cfg.RoutingMode != router.ModeHash {
		t.Fatalf("unexpected routing mode: %q", cfg.RoutingMode)
	}
	if cfg.Codec().MaxRounds != 4 {
		t.Fatalf("unexpected codec rounds: %d", cfg.Codec().MaxRounds)
	}
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != "https://host.example" {
		t.Fatalf("unexpected cors origins: %v", cfg.CorsOrigins)
	}
}

func TestLoadFailures(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"mode":      `routing_mode = "memory"`,
		"rounds":    `max_decode_rounds = 0`,
		"level":     `log_level = "loud"`,
		"name":      `name = "  "`,
		"unknown":   `colour = "blue"`,
		"app name":  "[[apps]]\nname = \"a=b\"\n",
		"duplicate": "[[apps]]\nname = \"a\"\n[[apps]]\nname = \"a\"\n",
	}
	for label, body := range cases {
		if _, err := Load(writeConfig(t, body)); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", label, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateDefaults(t *testing.T) {
	testlog.Start(t)
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRenderLoadsBack(t *testing.T) {
	testlog.Start(t)
	cfg, err := Load(writeConfig(t, Template()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.AdminToken = "s3cret"
	cfg.RoutingMode = router.ModeSearch

	data, err := Render(cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(data), "s3cret") {
		t.Fatalf("admin token leaked into rendered config:\n%s", data)
	}

	back, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load rendered: %v\n%s", err, data)
	}
	if back.RoutingMode != router.ModeSearch || back.MaxDecodeRounds != cfg.MaxDecodeRounds {
		t.Fatalf("rendered config mismatch: %+v", back)
	}
	if len(back.Apps) != 2 || back.Apps[1] != cfg.Apps[1] {
		t.Fatalf("rendered apps mismatch: %+v", back.Apps)
	}
	if back.AdminToken != "<redacted>" {
		t.Fatalf("unexpected admin token: %q", back.AdminToken)
	}
}

func TestRenderEmptyLists(t *testing.T) {
	testlog.Start(t)
	data, err := Render(DefaultConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	back, err := Load(writeConfig(t, string(data)))
	if err != nil {
		t.Fatalf("load rendered defaults: %v\n%s", err, data)
	}
	if len(back.Apps) != 0 || back.AdminToken != "" {
		t.Fatalf("unexpected defaults after render: %+v", back)
	}
}
