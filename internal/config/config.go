// Package config loads the proxy's TOML settings and merges command-line and
// environment overrides on top of them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/backend-proxy/config.toml",
	"configs/config.toml",
}

// reservedRoutes are served by the proxy itself; metrics.path may not shadow them.
var reservedRoutes = []string{"/api", "/orders", "/users", "/status", "/healthz"}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Defaults applied to settings left unset.
const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = 3000
	DefaultBodyMaxBytes     = 10 << 20
	DefaultKeepAliveSeconds = 120
	DefaultIdleConnections  = 100
	DefaultMetricsPath      = "/metrics"
)

// CLI holds command-line arguments parsed by Kong. The environment variable
// names match the ones the service was deployed with before.
type CLI struct {
	Config           string           `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host             string           `kong:"help='Listen host (overrides config).',env='HOST,HOSTNAME'"`
	Port             int              `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	KeepAliveTimeout int              `kong:"help='Keep-alive idle timeout in milliseconds (overrides config).',env='KEEP_ALIVE_TIMEOUT'"`
	LogLevel         string           `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
	LogFormat        string           `kong:"help='Log format: json|text (overrides config).',env='LOG_FORMAT'"`
	Version          kong.VersionFlag `kong:"help='Print version and exit.'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	// Env holds fallback values for the upstream resolution variables.
	// The process environment wins over anything set here.
	Env map[string]string `toml:"env"`

	filePath string
}

// ServerConfig holds inbound HTTP server settings. Zero numeric values mean
// "unset" and are replaced by defaults.
type ServerConfig struct {
	Host                    string          `toml:"host"`
	Port                    int             `toml:"port"`
	BodyMaxBytes            int64           `toml:"body_max_bytes"`
	KeepAliveTimeoutSeconds int             `toml:"keep_alive_timeout_seconds"`
	RateLimit               RateLimitConfig `toml:"rate_limit"`

	keepAlive time.Duration
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UpstreamConfig holds outbound connection settings. The upstream address
// itself is resolved per request from the environment.
type UpstreamConfig struct {
	TimeoutSeconds  int `toml:"timeout_seconds"` // 0 disables the client timeout
	IdleConnections int `toml:"idle_connections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the config file, if one exists, then applies CLI and
// environment overrides, validates and fills in defaults.
//
// Without --config or CONFIG_PATH the search paths are tried in order.
// Finding no file is not an error.
func Load(cli *CLI) (*Config, error) {
	cfg, err := readFile(cli.Config)
	if err != nil {
		return nil, err
	}

	cfg.override(cli)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	if cli.KeepAliveTimeout < 0 {
		return nil, fmt.Errorf("config: validate: keep-alive timeout must be non-negative; got %dms", cli.KeepAliveTimeout)
	}

	cfg.setDefaults()

	cfg.Server.keepAlive = time.Duration(cfg.Server.KeepAliveTimeoutSeconds) * time.Second
	if cli.KeepAliveTimeout > 0 {
		cfg.Server.keepAlive = time.Duration(cli.KeepAliveTimeout) * time.Millisecond
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	if path == "" {
		path = findConfig()
	}
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.filePath = path
	return cfg, nil
}

func (c *Config) override(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		c.Log.Format = cli.LogFormat
	}
}

// validate reports every invalid setting at once.
func (c *Config) validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	nonNegative := func(key string, v int64) {
		if v < 0 {
			fail("%s must be non-negative; got %d", key, v)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		fail("server.port must be 0-65535; got %d", c.Server.Port)
	}
	nonNegative("server.body_max_bytes", c.Server.BodyMaxBytes)
	nonNegative("server.keep_alive_timeout_seconds", int64(c.Server.KeepAliveTimeoutSeconds))
	nonNegative("upstream.timeout_seconds", int64(c.Upstream.TimeoutSeconds))
	nonNegative("upstream.idle_connections", int64(c.Upstream.IdleConnections))

	if rl := c.Server.RateLimit; rl.Enabled && rl.RequestsPerSecond <= 0 {
		fail("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", rl.RequestsPerSecond)
	}

	if l := strings.ToLower(c.Log.Level); l != "" && !slices.Contains(logLevels, l) {
		fail("log.level must be one of: %s; got %q", strings.Join(logLevels, ", "), c.Log.Level)
	}
	if f := strings.ToLower(c.Log.Format); f != "" && !slices.Contains(logFormats, f) {
		fail("log.format must be one of: %s; got %q", strings.Join(logFormats, ", "), c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Path != "" {
		if err := checkMetricsPath(c.Metrics.Path); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func checkMetricsPath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("metrics.path must start with '/'; got %q", p)
	}
	for _, reserved := range reservedRoutes {
		if p == reserved || strings.HasPrefix(p, reserved+"/") {
			return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
		}
	}
	return nil
}

// setDefaults fills unset fields. The upstream timeout has no default:
// zero keeps the client timeout disabled.
func (c *Config) setDefaults() {
	setIfZero(&c.Server.Host, DefaultHost)
	setIfZero(&c.Server.Port, DefaultPort)
	setIfZero(&c.Server.BodyMaxBytes, DefaultBodyMaxBytes)
	setIfZero(&c.Server.KeepAliveTimeoutSeconds, DefaultKeepAliveSeconds)
	setIfZero(&c.Upstream.IdleConnections, DefaultIdleConnections)
	setIfZero(&c.Log.Level, "info")
	setIfZero(&c.Log.Format, "json")
	setIfZero(&c.Metrics.Path, DefaultMetricsPath)
	if c.Env == nil {
		c.Env = map[string]string{}
	}
}

func setIfZero[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeepAlive returns the idle timeout for inbound keep-alive connections.
// A KEEP_ALIVE_TIMEOUT override is given in milliseconds and takes
// precedence over keep_alive_timeout_seconds.
func (c *ServerConfig) KeepAlive() time.Duration {
	if c.keepAlive > 0 {
		return c.keepAlive
	}
	return time.Duration(c.KeepAliveTimeoutSeconds) * time.Second
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
