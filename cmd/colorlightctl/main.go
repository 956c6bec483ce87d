package main

import (
	"context"
	"os"

	"github.com/jmylchreest/colorlightd/cmd/colorlightctl/commands"
	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/utils"
	"github.com/jmylchreest/colorlightd/pkg/client"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Parse persistent flags up front on a throwaway command so logging and
	// the socket path are settled before the real command tree executes.
	bootstrap := commands.NewRootCommand(nil, version, commit, buildDate)
	_ = bootstrap.PersistentFlags().Parse(os.Args[1:])

	logLevel, _ := bootstrap.PersistentFlags().GetString("log-level")
	logFormat, _ := bootstrap.PersistentFlags().GetString("log-format")

	logger := utils.SetupLogger(logLevel, logFormat)
	utils.SetAsDefaultLogger(logger)

	socket := config.GetRuntimeSocketPath()
	if socketFlag, _ := bootstrap.PersistentFlags().GetString("socket"); socketFlag != "" {
		socket = socketFlag
	}

	rootCmd := commands.NewRootCommand(logger, version, commit, buildDate)

	apiClient := client.New(logger, socket)

	// Get the context initialized by NewRootCommand and add the client to it.
	ctx := rootCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, commands.ClientContextKey, apiClient)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
