package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func Template() string {
	return serviceTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(serviceTemplate), 0o600)
}

// Render encodes cfg back into the file format. A set admin token is
// written as "<redacted>".
func Render(cfg Config) ([]byte, error) {
	out := fileConfig{
		Name:            cfg.Name,
		Addr:            cfg.Addr,
		RoutingMode:     string(cfg.RoutingMode),
		MaxDecodeRounds: cfg.MaxDecodeRounds,
		CorsOrigins:     cfg.CorsOrigins,
		LogLevel:        cfg.LogLevel,
		Apps:            cfg.Apps,
	}
	if cfg.AdminToken != "" {
		out.AdminToken = "<redacted>"
	}
	if out.CorsOrigins == nil {
		out.CorsOrigins = []string{}
	}
	if out.Apps == nil {
		out.Apps = []AppConfig{}
	}
	data, err := toml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("config render failed: %w", err)
	}
	return data, nil
}

const serviceTemplate = `name = "microsync"
addr = ":9300"
# auto: hash query when the host URL has a hash and no search
routing_mode = "auto"
max_decode_rounds = 32
cors_origins = ["http://localhost:3000"]
log_level = "info"
# bearer token for PUT/DELETE /v1/apps; empty leaves them open
admin_token = ""

[[apps]]
name = "app1"
prefetch = false

[[apps]]
name = "dashboard"
prefetch = true
`
