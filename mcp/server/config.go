package server

import (
	"log/slog"
	"time"
)

// Config holds configuration for the MCP tool server.
type Config struct {
	// Name and Version are reported to clients during initialization.
	Name    string
	Version string

	// Logger receives one line per tool call. Defaults to slog.Default().
	Logger *slog.Logger

	// Timeout bounds a single tool call. Zero disables it.
	Timeout time.Duration

	// Stateless serves HTTP without session tracking, for deployments behind
	// a load balancer.
	Stateless bool
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() *Config {
	return &Config{
		Name:    "signcore",
		Version: "0.1.0",
		Timeout: 10 * time.Second,
	}
}
