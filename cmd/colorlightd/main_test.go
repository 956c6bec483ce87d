package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/server"
	"github.com/jmylchreest/colorlightd/internal/utils"
)

func TestSetupFlagBindings(t *testing.T) {
	// Create a test command and viper instance
	cmd := &cobra.Command{Use: "test"}
	v := viper.New()

	cmd.PersistentFlags().String("log-level", "info", "Log level")
	cmd.PersistentFlags().String("log-format", "text", "Log format")
	cmd.PersistentFlags().String("config", "", "Config path")

	// Bind flags (simulating what happens in main)
	v.SetEnvPrefix("COLORLIGHT")
	v.AutomaticEnv()
	v.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	assert.Equal(t, "info", v.GetString("logging.level"))
	assert.Equal(t, "text", v.GetString("logging.format"))
	assert.Equal(t, "", v.GetString("config"))
}

func TestCreateConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	// Attempt to load config (will use defaults since file doesn't exist)
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 30, cfg.Discovery.Interval)
	assert.True(t, cfg.Discovery.Enabled)
}

func TestCreateServer(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	logger := utils.SetupLogger(config.LogLevelError, config.LogFormatText)
	srv := server.New(logger, cfg, server.BuildInfo{Version: "test"})
	assert.NotNil(t, srv)
}
