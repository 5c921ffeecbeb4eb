// Package config assembles server settings from the process environment and
// an optional dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	applog "github.com/janisto/greeting-service/internal/platform/logging"
	greetingsvc "github.com/janisto/greeting-service/internal/service/greeting"
)

const (
	DefaultPort            = "8000"
	DefaultEnvFile         = ".env"
	DefaultShutdownTimeout = 10 * time.Second

	DocsPath    = "/api-docs"
	OpenAPIPath = "/openapi"
	SchemasPath = "/schemas"
)

// Config holds server settings. GREETING_TARGET is deliberately absent: it is
// resolved through Lookup on every request.
type Config struct {
	Host            string
	Port            string
	APIDocs         bool
	ShutdownTimeout time.Duration
	LogLevel        zapcore.Level

	// Lookup consults the process environment first and the dotenv file second.
	Lookup greetingsvc.LookupFunc
}

// Addr returns the listen address, e.g. ":8000".
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Load reads ENV_FILE (default .env) if it exists and builds a Config. Values
// already present in env take precedence over the file. The file is never
// written into the process environment.
func Load(env greetingsvc.LookupFunc) (Config, error) {
	file := DefaultEnvFile
	if v, ok := env("ENV_FILE"); ok && strings.TrimSpace(v) != "" {
		file = v
	}
	dotenv, err := godotenv.Read(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		dotenv = nil
	case err != nil:
		return Config{}, fmt.Errorf("read env file %s: %w", file, err)
	}

	lookup := layered(env, dotenv)
	cfg := Config{
		Host:            value(lookup, "HOST", ""),
		Port:            value(lookup, "PORT", DefaultPort),
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        zapcore.InfoLevel,
		Lookup:          lookup,
	}

	if err := validatePort(cfg.Port); err != nil {
		return Config{}, err
	}
	if v := value(lookup, "GREETER_API_DOCS", ""); v != "" {
		if cfg.APIDocs, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("invalid GREETER_API_DOCS %q: %w", v, err)
		}
	}
	if v := value(lookup, "GREETER_SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GREETER_SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid GREETER_SHUTDOWN_TIMEOUT %q: must be positive", v)
		}
		cfg.ShutdownTimeout = d
	}
	if cfg.LogLevel, err = applog.ParseLevel(value(lookup, "LOG_LEVEL", "")); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func layered(env greetingsvc.LookupFunc, dotenv map[string]string) greetingsvc.LookupFunc {
	return func(key string) (string, bool) {
		if v, ok := env(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
}

func value(lookup greetingsvc.LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid PORT %q: must be an integer between 1 and 65535", port)
	}
	return nil
}
