package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config stores environment-driven settings.
type Config struct {
	// LogLevel sets the logger level.
	LogLevel string `env:"AUTOINSTALL_LOG_LEVEL" envDefault:"info"`
	// Lang selects message language for reports.
	Lang string `env:"AUTOINSTALL_LANG" envDefault:"en"`
	// Transport selects the MCP transport ("stdio" or "http").
	Transport string `env:"AUTOINSTALL_MCP_TRANSPORT" envDefault:"stdio"`
	// HTTP configures the streamable HTTP transport.
	HTTP HTTPConfig
	// RatePerMinute limits MCP tool calls, 0 disables the limit.
	RatePerMinute int `env:"AUTOINSTALL_MCP_RATE_PER_MINUTE" envDefault:"0"`
	// CacheTTL keeps MCP tool responses for repeated content, 0 disables the cache.
	CacheTTL time.Duration `env:"AUTOINSTALL_MCP_CACHE_TTL" envDefault:"0s"`
	// CacheMaxEntries bounds the response cache.
	CacheMaxEntries int `env:"AUTOINSTALL_MCP_CACHE_MAX_ENTRIES" envDefault:"1000"`
	// ShutdownTimeout controls graceful shutdown duration.
	ShutdownTimeout time.Duration `env:"AUTOINSTALL_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// HTTPConfig configures the MCP HTTP transport.
type HTTPConfig struct {
	// Listen is the HTTP listen address.
	Listen string `env:"AUTOINSTALL_MCP_LISTEN" envDefault:":8080"`
	// Path is the MCP HTTP endpoint path.
	Path string `env:"AUTOINSTALL_MCP_PATH" envDefault:"/mcp"`
	// Stateless disables session tracking.
	Stateless bool `env:"AUTOINSTALL_MCP_STATELESS" envDefault:"false"`
	// ReadTimeout limits request read time.
	ReadTimeout time.Duration `env:"AUTOINSTALL_MCP_READ_TIMEOUT" envDefault:"15s"`
	// WriteTimeout limits response write time.
	WriteTimeout time.Duration `env:"AUTOINSTALL_MCP_WRITE_TIMEOUT" envDefault:"15s"`
	// IdleTimeout controls idle connections.
	IdleTimeout time.Duration `env:"AUTOINSTALL_MCP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}
