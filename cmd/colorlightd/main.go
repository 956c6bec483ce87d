package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/server"
	"github.com/jmylchreest/colorlightd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set up Viper for flag handling; the config file itself is loaded by
	// config.Load with its own environment binding.
	v := viper.New()
	v.SetEnvPrefix("COLORLIGHT")
	v.AutomaticEnv()

	pflag.String("log-level", "", "Log level (debug, info, warn, error)")
	pflag.String("log-format", "", "Log format (text, json)")
	pflag.String("config", "", "Path to config file")
	pflag.Parse()

	// Bind flags to Viper - this ensures flags take precedence
	v.BindPFlag("logging.level", pflag.Lookup("log-level"))
	v.BindPFlag("logging.format", pflag.Lookup("log-format"))
	v.BindPFlag("config", pflag.Lookup("config"))

	cfg, err := config.Load(v.GetString("config"))
	if err != nil {
		logger := utils.SetupErrorLogger()
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override the file-configured logging settings
	level := cfg.Logging.Level
	if flagLevel := v.GetString("logging.level"); flagLevel != "" {
		level = flagLevel
	}
	format := cfg.Logging.Format
	if flagFormat := v.GetString("logging.format"); flagFormat != "" {
		format = flagFormat
	}

	logger := utils.SetupLogger(level, format)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting colorlightd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)

	// Pick up log level changes from the config file at runtime.
	cfg.Watch(logger, func() {
		if utils.IsValidLogLevel(cfg.Logging.Level) {
			utils.SetLevel(utils.GetLogLevel(cfg.Logging.Level))
			logger.Info("log level updated from config", "level", cfg.Logging.Level)
		}
	})

	srv := server.New(logger, cfg, server.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    buildDate,
	})

	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down...")

	srv.Stop()
}
