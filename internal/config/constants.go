package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "colorlight"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "colorlightd.yaml"

	// ClientConfigFilename is the base filename for client config
	ClientConfigFilename = "colorlightctl.yaml"

	// SocketFilename is the base filename for the Unix socket
	SocketFilename = "colorlightd.sock"

	// DefaultKeyLength is the default length for generated API keys
	DefaultKeyLength = 32

	// DefaultKeyCharset is the characters used for API key generation
	DefaultKeyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// DefaultAPIListenAddress is the default HTTP API listen address
	DefaultAPIListenAddress = ":9188"
)

// Default timeouts and intervals
const (
	// DefaultDiscoveryInterval is the default interval for mDNS discovery
	DefaultDiscoveryInterval = 30 * time.Second

	// DefaultPollInterval is the default interval for polling device state
	DefaultPollInterval = 5 * time.Second

	// DefaultCleanupInterval is the default interval for cleaning up stale devices
	DefaultCleanupInterval = 60 * time.Second

	// DefaultStateTimeout is the default timeout for considering a device stale
	DefaultStateTimeout = 180 * time.Second

	// MinDiscoveryInterval is the minimum allowed discovery interval
	MinDiscoveryInterval = 5 * time.Second

	// MinPollInterval is the minimum allowed device poll interval
	MinPollInterval = time.Second
)

// Characteristic constraints
const (
	// MinBrightness is the minimum allowed brightness percent
	MinBrightness = 0

	// MaxBrightness is the maximum allowed brightness percent
	MaxBrightness = 100

	// MinHue is the minimum allowed hue in degrees
	MinHue = 0

	// MaxHue is the maximum allowed hue in degrees
	MaxHue = 359

	// MinSaturation is the minimum allowed saturation percent
	MinSaturation = 0

	// MaxSaturation is the maximum allowed saturation percent
	MaxSaturation = 100
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
