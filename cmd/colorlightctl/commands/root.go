package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorlightd/pkg/client"
)

// loggerContextKey is a custom type for context keys to avoid collisions
type loggerContextKey struct{}

// NewRootCommand creates the root command
func NewRootCommand(logger *slog.Logger, version, commit, buildDate string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colorlightctl",
		Short: "Control RGBW light controllers",
	}

	// Add global flags
	cmd.PersistentFlags().String("socket", "", "Path to colorlightd socket")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	// Add commands
	cmd.AddCommand(newVersionCommand(version, commit, buildDate))
	cmd.AddCommand(NewLightCommand(logger))
	cmd.AddCommand(NewGroupCommand(logger))
	cmd.AddCommand(NewAPIKeyCommand(logger))
	cmd.AddCommand(NewLoggingCommand(logger))

	if logger != nil {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		cmd.SetContext(context.WithValue(parent, loggerContextKey{}, logger))
	}

	return cmd
}

// getLoggerFromCmd returns the slog.Logger from the root command context
func getLoggerFromCmd(cmd *cobra.Command) *slog.Logger {
	if root := cmd.Root(); root != nil {
		if ctx := root.Context(); ctx != nil {
			if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
				return logger
			}
		}
	}
	return slog.Default()
}

// clientFromCmd retrieves the daemon client from the command context.
func clientFromCmd(cmd *cobra.Command) (client.Interface, error) {
	c, ok := cmd.Context().Value(ClientContextKey).(client.Interface)
	if !ok {
		return nil, fmt.Errorf("client not found in context")
	}
	return c, nil
}

// newVersionCommand creates the version command
func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Client:\n")
			fmt.Printf("  Version:    %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)

			// Try to query the daemon for its version
			if c, ok := cmd.Context().Value(ClientContextKey).(client.Interface); ok {
				resp, err := c.GetVersion()
				if err == nil {
					fmt.Printf("\nDaemon:\n")
					if v, ok := resp["version"].(string); ok {
						fmt.Printf("  Version:    %s\n", v)
					}
					if c, ok := resp["commit"].(string); ok {
						fmt.Printf("  Commit:     %s\n", c)
					}
					if d, ok := resp["date"].(string); ok {
						fmt.Printf("  Build Date: %s\n", d)
					}
				} else {
					fmt.Printf("\nDaemon: not reachable\n")
				}
			}
		},
	}
}
