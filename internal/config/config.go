package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/microsync/internal/apps"
	"github.com/danmuck/microsync/internal/logging"
	"github.com/danmuck/microsync/internal/pathcodec"
	"github.com/danmuck/microsync/internal/router"
)

var ErrInvalidConfig = errors.New("invalid config")

const MaxDecodeRoundsLimit = 1024

// Config is the sync service configuration.
type Config struct {
	Name            string
	Addr            string
	RoutingMode     router.Mode
	MaxDecodeRounds int
	CorsOrigins     []string
	// LogLevel is empty unless log_level is set; the logging profile and
	// MICROSYNC_LOG_LEVEL decide otherwise.
	LogLevel        string
	AdminToken      string
	Apps            []AppConfig
}

// AppConfig seeds one registry entry at startup.
type AppConfig struct {
	Name     string `toml:"name"`
	Prefetch bool   `toml:"prefetch"`
}

type fileConfig struct {
	Name            string      `toml:"name"`
	Addr            string      `toml:"addr"`
	RoutingMode     string      `toml:"routing_mode"`
	MaxDecodeRounds int         `toml:"max_decode_rounds"`
	CorsOrigins     []string    `toml:"cors_origins"`
	LogLevel        string      `toml:"log_level"`
	AdminToken      string      `toml:"admin_token"`
	Apps            []AppConfig `toml:"apps"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "microsync",
		Addr:            ":9300",
		RoutingMode:     router.ModeAuto,
		MaxDecodeRounds: pathcodec.DefaultMaxDecodeRounds,
		CorsOrigins:     []string{},
		Apps:            []AppConfig{},
	}
}

// Load reads path over DefaultConfig; keys absent from the file keep their
// defaults.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}

	cfg := DefaultConfig()
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("routing_mode") {
		mode, err := router.ParseMode(raw.RoutingMode)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		cfg.RoutingMode = mode
	}
	if meta.IsDefined("max_decode_rounds") {
		cfg.MaxDecodeRounds = raw.MaxDecodeRounds
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeList(raw.CorsOrigins)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("admin_token") {
		cfg.AdminToken = strings.TrimSpace(raw.AdminToken)
	}
	if meta.IsDefined("apps") {
		cfg.Apps = raw.Apps
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("%w: missing addr", ErrInvalidConfig)
	}
	if _, err := router.ParseMode(string(cfg.RoutingMode)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if cfg.MaxDecodeRounds < 1 || cfg.MaxDecodeRounds > MaxDecodeRoundsLimit {
		return fmt.Errorf("%w: max_decode_rounds must be within 1..%d", ErrInvalidConfig, MaxDecodeRoundsLimit)
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok && cfg.LogLevel != "" {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, cfg.LogLevel)
	}
	seen := make(map[string]struct{}, len(cfg.Apps))
	for i, app := range cfg.Apps {
		if err := apps.ValidateName(app.Name); err != nil {
			return fmt.Errorf("%w: apps[%d]: %w", ErrInvalidConfig, i, err)
		}
		if _, dup := seen[app.Name]; dup {
			return fmt.Errorf("%w: apps[%d]: duplicate name %q", ErrInvalidConfig, i, app.Name)
		}
		seen[app.Name] = struct{}{}
	}
	return nil
}

// Registry builds an app registry seeded from cfg.Apps.
func (c Config) Registry() (*apps.Registry, error) {
	reg := apps.NewRegistry()
	for _, app := range c.Apps {
		if err := reg.Register(apps.Entry{Name: app.Name, Prefetch: app.Prefetch}); err != nil {
			return nil, fmt.Errorf("seed app %q: %w", app.Name, err)
		}
	}
	return reg, nil
}

// Codec returns the path codec configured by MaxDecodeRounds.
func (c Config) Codec() pathcodec.Codec {
	return pathcodec.New(c.MaxDecodeRounds)
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
