package commands

import (
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/colorlightd/internal/utils"
)

// NewLoggingCommand creates the logging command group.
func NewLoggingCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logging",
		Short: "Inspect and change the daemon's logging configuration",
	}

	cmd.AddCommand(newLoggingLevelCommand())

	return cmd
}

// newLoggingLevelCommand creates the logging level command. Without an
// argument it prints the daemon's current level; with one it sets it.
func newLoggingLevelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "level [debug|info|warn|error]",
		Short: "Get or set the daemon's log level at runtime",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				level, err := c.GetLogLevel()
				if err != nil {
					return fmt.Errorf("failed to get log level: %w", err)
				}
				fmt.Println(level)
				return nil
			}

			level := args[0]
			if !utils.IsValidLogLevel(level) {
				return fmt.Errorf("invalid log level: %s. Must be one of: debug, info, warn, error", level)
			}
			if err := c.SetLogLevel(level); err != nil {
				return fmt.Errorf("failed to set log level: %w", err)
			}

			pterm.Success.Printf("Daemon log level set to %s\n", level)
			return nil
		},
	}
	return cmd
}
