package main

import (
	"testing"

	"github.com/danmuck/microsync/internal/config"
	"github.com/danmuck/microsync/internal/logging"
	"github.com/danmuck/microsync/internal/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLoadConfigExample(t *testing.T) {
	cfg, err := loadConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "microsync.local" {
		t.Fatalf("unexpected name: %q", cfg.Name)
	}
	if cfg.Addr != "127.0.0.1:9300" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.RoutingMode != router.ModeSearch {
		t.Fatalf("unexpected routing mode: %q", cfg.RoutingMode)
	}
	if cfg.MaxDecodeRounds != 16 {
		t.Fatalf("unexpected decode rounds: %d", cfg.MaxDecodeRounds)
	}
	if len(cfg.Apps) != 2 || !cfg.Apps[1].Prefetch {
		t.Fatalf("unexpected apps: %+v", cfg.Apps)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Addr != ":9300" || cfg.RoutingMode != router.ModeAuto {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestSetupLoggingEnvLevelWins(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	cfg, err := loadConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config level: %q", cfg.LogLevel)
	}

	t.Setenv(logging.EnvLogLevel, "error")
	logging.ConfigureRuntime()
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	setupLogging(cfg)
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("config level overrode env level: %v", zerolog.GlobalLevel())
	}

	t.Setenv(logging.EnvLogLevel, "")
	setupLogging(cfg)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("config level not applied without env: %v", zerolog.GlobalLevel())
	}
}

func TestSetupLoggingWithoutConfigLevelKeepsProfile(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevLogger := log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	t.Setenv(logging.EnvLogLevel, "")
	logging.ConfigureRuntime()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	setupLogging(config.DefaultConfig())
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("default config should not touch the level: %v", zerolog.GlobalLevel())
	}
}
