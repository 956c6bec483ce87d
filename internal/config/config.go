// Package config handles configuration loading, validation and persistence
// for the colorlightd daemon and colorlightctl client.
package config

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// stateDecodeHook parses the RFC3339Nano timestamps that Save writes for
// API key bookkeeping fields.
var stateDecodeHook = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
	mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	mapstructure.StringToTimeDurationHookFunc(),
))

// APIKey is a persisted API key for the HTTP API.
type APIKey struct {
	Key        string    `json:"key" mapstructure:"key"`
	Name       string    `json:"name" mapstructure:"name"`
	CreatedAt  time.Time `json:"created_at" mapstructure:"created_at"`
	ExpiresAt  time.Time `json:"expires_at" mapstructure:"expires_at"`
	LastUsedAt time.Time `json:"last_used_at" mapstructure:"last_used_at"`
	Disabled   bool      `json:"disabled" mapstructure:"disabled"`
}

// IsDisabled reports whether the key has been administratively disabled.
func (k *APIKey) IsDisabled() bool {
	return k.Disabled
}

// IsExpired reports whether the key has an expiry in the past.
func (k *APIKey) IsExpired() bool {
	return !k.ExpiresAt.IsZero() && time.Now().After(k.ExpiresAt)
}

// Group is a persisted accessory group.
type Group struct {
	ID     string   `json:"id" mapstructure:"id"`
	Name   string   `json:"name" mapstructure:"name"`
	Lights []string `json:"lights" mapstructure:"lights"`
}

// DeviceConfig is a statically configured color-light controller.
type DeviceConfig struct {
	Name    string `json:"name" mapstructure:"name"`
	Address string `json:"address" mapstructure:"address"`
	Mode    string `json:"mode" mapstructure:"mode"` // "rgb" or "rgbw"
}

// HostPort splits the configured address into host and port. A bare host
// gets the controllers' default HTTP port.
func (d DeviceConfig) HostPort() (string, int, error) {
	if d.Address == "" {
		return "", 0, fmt.Errorf("device address is empty")
	}
	host, portStr, err := net.SplitHostPort(d.Address)
	if err != nil {
		return d.Address, 80, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid device port %q: %w", portStr, err)
	}
	return host, port, nil
}

// ServerConfig represents the socket server configuration
type ServerConfig struct {
	UnixSocket string `mapstructure:"unix_socket"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	ListenAddress     string `mapstructure:"listen_address"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// DiscoveryConfig represents the discovery configuration
type DiscoveryConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	Interval        int  `mapstructure:"interval"`         // mDNS browse interval in seconds
	PollInterval    int  `mapstructure:"poll_interval"`    // device state poll interval in seconds
	CleanupInterval int  `mapstructure:"cleanup_interval"` // interval for running cleanup worker in seconds
	CleanupTimeout  int  `mapstructure:"cleanup_timeout"`  // timeout for considering a device stale in seconds
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// State holds persisted daemon state (API keys and groups). It lives in the
// config file so a restart keeps keys and group definitions.
type State struct {
	APIKeys []APIKey `mapstructure:"api_keys"`
	Groups  []Group  `mapstructure:"groups"`
}

// Config represents the application configuration.
// All accessors are safe for concurrent use; mutations to State are
// serialized by the embedded mutex.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Discovery DiscoveryConfig
	Logging   LoggingConfig
	Devices   []DeviceConfig
	State     State

	mu sync.RWMutex
	v  *viper.Viper
}

// Load loads configuration from a file and environment variables.
// If configFile is empty the default XDG path is used; missing files fall
// back to defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set default values
	v.SetDefault("server.unix_socket", GetRuntimeSocketPath())
	v.SetDefault("api.listen_address", DefaultAPIListenAddress)
	v.SetDefault("api.requests_per_minute", 120)
	v.SetDefault("discovery.enabled", true)
	v.SetDefault("discovery.interval", int(DefaultDiscoveryInterval.Seconds()))
	v.SetDefault("discovery.poll_interval", int(DefaultPollInterval.Seconds()))
	v.SetDefault("discovery.cleanup_interval", int(DefaultCleanupInterval.Seconds()))
	v.SetDefault("discovery.cleanup_timeout", int(DefaultStateTimeout.Seconds()))
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)

	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Info("Using config file from command line", "path", configFile)
	} else {
		configPath := GetDaemonConfigPath()
		v.SetConfigFile(configPath)

		// Create config directory if it doesn't exist
		if err := os.MkdirAll(GetConfigBaseDir(), 0o755); err != nil {
			return nil, fmt.Errorf("error creating config directory: %w", err)
		}

		// Only log if config file exists
		if _, err := os.Stat(configPath); err == nil {
			slog.Info("Using default config file", "path", configPath)
		}
	}

	// Read config file - Viper will use defaults if file not found
	v.ReadInConfig()

	// Bind environment variables
	v.SetEnvPrefix("COLORLIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := cfg.reload(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// reload re-populates the typed sections from the underlying viper instance.
func (c *Config) reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Server = ServerConfig{UnixSocket: c.v.GetString("server.unix_socket")}
	c.API = APIConfig{
		ListenAddress:     c.v.GetString("api.listen_address"),
		RequestsPerMinute: c.v.GetInt("api.requests_per_minute"),
	}
	c.Discovery = DiscoveryConfig{
		Enabled:         c.v.GetBool("discovery.enabled"),
		Interval:        ValidateDiscoveryInterval(c.v.GetInt("discovery.interval")),
		PollInterval:    ValidatePollInterval(c.v.GetInt("discovery.poll_interval")),
		CleanupInterval: c.v.GetInt("discovery.cleanup_interval"),
		CleanupTimeout:  c.v.GetInt("discovery.cleanup_timeout"),
	}
	c.Logging = LoggingConfig{
		Level:  c.v.GetString("logging.level"),
		Format: c.v.GetString("logging.format"),
	}

	var devices []DeviceConfig
	if err := c.v.UnmarshalKey("devices", &devices); err != nil {
		return fmt.Errorf("error parsing devices section: %w", err)
	}
	c.Devices = devices

	var state State
	if err := c.v.UnmarshalKey("state", &state, stateDecodeHook); err != nil {
		return fmt.Errorf("error parsing state section: %w", err)
	}
	c.State = state

	return nil
}

// Watch starts watching the config file for changes. On every change the
// typed sections are reloaded and onChange is invoked. Persisted state is
// deliberately not reloaded from disk here; the daemon owns it at runtime.
func (c *Config) Watch(logger *slog.Logger, onChange func()) {
	c.v.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Config file changed, reloading", "path", e.Name, "op", e.Op.String())

		c.mu.Lock()
		c.Logging = LoggingConfig{
			Level:  c.v.GetString("logging.level"),
			Format: c.v.GetString("logging.format"),
		}
		c.Discovery.Interval = ValidateDiscoveryInterval(c.v.GetInt("discovery.interval"))
		c.Discovery.PollInterval = ValidatePollInterval(c.v.GetInt("discovery.poll_interval"))
		c.mu.Unlock()

		if onChange != nil {
			onChange()
		}
	})
	c.v.WatchConfig()
}

// Save writes the current configuration, including persisted state, back to
// the config file.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.v.Set("server", map[string]any{"unix_socket": c.Server.UnixSocket})
	c.v.Set("api", map[string]any{
		"listen_address":      c.API.ListenAddress,
		"requests_per_minute": c.API.RequestsPerMinute,
	})
	c.v.Set("discovery", map[string]any{
		"enabled":          c.Discovery.Enabled,
		"interval":         c.Discovery.Interval,
		"poll_interval":    c.Discovery.PollInterval,
		"cleanup_interval": c.Discovery.CleanupInterval,
		"cleanup_timeout":  c.Discovery.CleanupTimeout,
	})
	c.v.Set("logging", map[string]any{
		"level":  c.Logging.Level,
		"format": c.Logging.Format,
	})
	// Viper's YAML writer does not honor mapstructure tags on structs, so
	// persisted sections are flattened to plain maps with matching keys.
	devices := make([]map[string]any, len(c.Devices))
	for i, d := range c.Devices {
		devices[i] = map[string]any{"name": d.Name, "address": d.Address, "mode": d.Mode}
	}
	c.v.Set("devices", devices)

	apiKeys := make([]map[string]any, len(c.State.APIKeys))
	for i, k := range c.State.APIKeys {
		apiKeys[i] = map[string]any{
			"key":          k.Key,
			"name":         k.Name,
			"created_at":   k.CreatedAt.Format(time.RFC3339Nano),
			"expires_at":   k.ExpiresAt.Format(time.RFC3339Nano),
			"last_used_at": k.LastUsedAt.Format(time.RFC3339Nano),
			"disabled":     k.Disabled,
		}
	}
	groups := make([]map[string]any, len(c.State.Groups))
	for i, g := range c.State.Groups {
		groups[i] = map[string]any{"id": g.ID, "name": g.Name, "lights": g.Lights}
	}
	c.v.Set("state", map[string]any{
		"api_keys": apiKeys,
		"groups":   groups,
	})

	if err := c.v.WriteConfig(); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// Get retrieves a raw value from the configuration
func (c *Config) Get(key string) any {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}

// Set sets a raw value in the configuration
func (c *Config) Set(key string, value any) {
	if c.v == nil {
		return
	}
	c.v.Set(key, value)
}

// --- API key state ---

// GetAPIKeys returns a copy of all persisted API keys.
func (c *Config) GetAPIKeys() []APIKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]APIKey, len(c.State.APIKeys))
	copy(keys, c.State.APIKeys)
	return keys
}

// AddAPIKey appends a new API key to the persisted state.
func (c *Config) AddAPIKey(key APIKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.State.APIKeys {
		if existing.Key == key.Key {
			return fmt.Errorf("API key already exists")
		}
	}
	c.State.APIKeys = append(c.State.APIKeys, key)
	return nil
}

// DeleteAPIKey removes an API key by its key string. Returns false if the
// key was not found.
func (c *Config) DeleteAPIKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.State.APIKeys {
		if existing.Key == key {
			c.State.APIKeys = append(c.State.APIKeys[:i], c.State.APIKeys[i+1:]...)
			return true
		}
	}
	return false
}

// FindAPIKey looks up an API key by its key string.
// The returned pointer must be treated as read-only by callers.
func (c *Config) FindAPIKey(key string) (*APIKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.State.APIKeys {
		if c.State.APIKeys[i].Key == key {
			return &c.State.APIKeys[i], true
		}
	}
	return nil, false
}

// UpdateAPIKeyLastUsed sets the LastUsedAt timestamp for a key.
func (c *Config) UpdateAPIKeyLastUsed(key string, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.State.APIKeys {
		if c.State.APIKeys[i].Key == key {
			c.State.APIKeys[i].LastUsedAt = t
			return nil
		}
	}
	return fmt.Errorf("API key not found")
}

// SetAPIKeyDisabledStatus updates the disabled flag of a key identified by
// its key string or name.
func (c *Config) SetAPIKeyDisabledStatus(keyOrName string, disabled bool) (*APIKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.State.APIKeys {
		if c.State.APIKeys[i].Key == keyOrName || c.State.APIKeys[i].Name == keyOrName {
			c.State.APIKeys[i].Disabled = disabled
			return &c.State.APIKeys[i], nil
		}
	}
	return nil, fmt.Errorf("API key '%s' not found", keyOrName)
}

// --- Group state ---

// GetGroups returns a copy of all persisted groups.
func (c *Config) GetGroups() []Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	groups := make([]Group, len(c.State.Groups))
	copy(groups, c.State.Groups)
	return groups
}

// SetGroups replaces the persisted group list.
func (c *Config) SetGroups(groups []Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.State.Groups = groups
}

// GenerateKey produces a random key string of the given length drawn from
// DefaultKeyCharset using crypto/rand.
func GenerateKey(length int) (string, error) {
	if length <= 0 {
		length = DefaultKeyLength
	}
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(DefaultKeyCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b.WriteByte(DefaultKeyCharset[n.Int64()])
	}
	return b.String(), nil
}
