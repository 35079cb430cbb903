package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

type Config struct {
	Addr         string `env:"BACKEND_ADDR"`
	Port         string `env:"PORT"`
	DatabasePath string `env:"DATABASE_PATH"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTIssuer string        `env:"JWT_ISSUER,default=setback"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=12h"`

	AppEnv                string `env:"APP_ENV,default=development"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
	RawAllowedOrigins     string `env:"WS_ALLOWED_ORIGINS"`
	WSAllowedOrigins      []string
	DevWebSocketsAllowAll bool `env:"DEV_WEBSOCKETS_ALLOW_ALL,default=false"`

	DebugRoutes  bool   `env:"DEBUG_ROUTES,default=false"`
	DebugKeyHash string `env:"DEBUG_KEY_HASH"`

	TracesExporter string `env:"OTEL_TRACES_EXPORTER,default=stdout"`
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func LoadFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode env: %w", err)
	}

	cfg.AppEnv = strings.TrimSpace(cfg.AppEnv)
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	for _, p := range strings.Split(cfg.RawAllowedOrigins, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			cfg.WSAllowedOrigins = append(cfg.WSAllowedOrigins, p)
		}
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.JWTTTL <= 0 {
		missing = append(missing, "JWT_TTL (must be positive)")
	}
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if cfg.DebugRoutes && cfg.DebugKeyHash == "" {
		missing = append(missing, "DEBUG_KEY_HASH (required with DEBUG_ROUTES)")
	}
	// BACKEND_ADDR is optional if PORT is set by the hosting environment.
	if cfg.Addr == "" {
		if port := strings.TrimSpace(cfg.Port); port != "" {
			// If PORT is a bare port, accept ":<port>". If it already includes host, keep it.
			if strings.Contains(port, ":") {
				cfg.Addr = port
			} else {
				cfg.Addr = ":" + port
			}
		}
	}
	if cfg.Addr == "" {
		missing = append(missing, "BACKEND_ADDR (or PORT)")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
