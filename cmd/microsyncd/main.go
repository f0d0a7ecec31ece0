package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danmuck/microsync/internal/config"
	"github.com/danmuck/microsync/internal/logging"
	"github.com/danmuck/microsync/internal/observability"
	"github.com/danmuck/microsync/internal/server"
	"github.com/rs/zerolog"
)

func main() {
	path := flag.String("config", "", "config path (defaults apply when empty)")
	flag.Parse()

	cfg, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "microsyncd: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	observability.RegisterMetrics()

	srv, err := server.New(cfg, nil, logger)
	if err != nil {
		logger.Error().Err(err).Msg("server setup failed")
		os.Exit(1)
	}
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// setupLogging applies the runtime profile and env overrides, then the
// config level when MICROSYNC_LOG_LEVEL is unset.
func setupLogging(cfg config.Config) zerolog.Logger {
	logging.ConfigureRuntime()
	logger := observability.InitLogger(cfg.Name)
	logging.ApplyConfigLevel(cfg.LogLevel)
	return logger
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}
