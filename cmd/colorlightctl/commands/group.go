package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewGroupCommand creates the group command
func NewGroupCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage groups of lights",
	}

	cmd.AddCommand(
		newGroupCreateCommand(),
		newGroupListCommand(),
		newGroupGetCommand(),
		newGroupDeleteCommand(),
		newGroupSetCommand(),
		newGroupSetLightsCommand(),
	)

	return cmd
}

// newGroupCreateCommand creates the group create command
func newGroupCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name> [light-id...]",
		Short: "Create a new group of lights",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			name := args[0]
			group, err := c.CreateGroup(name, args[1:])
			if err != nil {
				return fmt.Errorf("failed to create group: %w", err)
			}

			pterm.Success.Printf("Created group %s (%v)\n", name, group["id"])
			return nil
		},
	}

	return cmd
}

// newGroupListCommand creates the group list command
func newGroupListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			groups, err := c.GetGroups()
			if err != nil {
				return fmt.Errorf("failed to list groups: %w", err)
			}

			if len(groups) == 0 {
				if parseable {
					return nil
				}
				pterm.Info.Println("No groups found")
				return nil
			}

			if parseable {
				for _, group := range groups {
					fmt.Println(GroupParseable(group))
				}
				return nil
			}

			table := pterm.TableData{{"ID", "Name", "Lights"}}
			for _, group := range groups {
				table = append(table, []string{
					fmt.Sprintf("%v", group["id"]),
					fmt.Sprintf("%v", group["name"]),
					joinLightIDs(group["lights"]),
				})
			}
			pterm.DefaultTable.WithHasHeader().WithData(table).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// joinLightIDs renders a group's lights field as a comma-separated string.
func joinLightIDs(lights any) string {
	raw, _ := lights.([]any)
	ids := make([]string, 0, len(raw))
	for _, l := range raw {
		if s, ok := l.(string); ok {
			ids = append(ids, s)
		}
	}
	return strings.Join(ids, ",")
}

// newGroupGetCommand creates the group get command
func newGroupGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get <id-or-name>",
		Short: "Get a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			group, err := c.GetGroup(args[0])
			if err != nil {
				return fmt.Errorf("failed to get group: %w", err)
			}

			if parseable {
				fmt.Println(GroupParseable(group))
				return nil
			}

			table := pterm.TableData{
				[]string{pterm.Bold.Sprint("ID"), fmt.Sprintf("%v", group["id"])},
				[]string{"Name", fmt.Sprintf("%v", group["name"])},
				[]string{"Lights", joinLightIDs(group["lights"])},
			}
			pterm.DefaultTable.WithData(table).Render()
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newGroupDeleteCommand creates the group delete command
func newGroupDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id-or-name>",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteGroup(args[0]); err != nil {
				return fmt.Errorf("failed to delete group: %w", err)
			}

			pterm.Success.Printf("Deleted group %s\n", args[0])
			return nil
		},
	}

	return cmd
}

// newGroupSetCommand creates the group set command
func newGroupSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <id-or-name> <property> <value>",
		Short: "Set a property for all lights in a group",
		Long: `Set a property for all lights in a group.
Properties:
  on: true/false or on/off
  brightness: 0-100
  hue: 0-359
  saturation: 0-100`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			property := strings.ToLower(args[1])
			value, err := parseLightValue(property, args[2])
			if err != nil {
				return err
			}

			if err := c.SetGroupState(args[0], property, value); err != nil {
				return fmt.Errorf("failed to set group state: %w", err)
			}

			pterm.Success.Printf("Set %s to %v\n", property, value)
			return nil
		},
	}

	return cmd
}

// newGroupSetLightsCommand creates the group set-lights command
func newGroupSetLightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-lights <id> [light-id...]",
		Short: "Replace the lights in a group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := c.SetGroupLights(args[0], args[1:]); err != nil {
				return fmt.Errorf("failed to set group lights: %w", err)
			}

			pterm.Success.Printf("Updated lights for group %s\n", args[0])
			return nil
		},
	}

	return cmd
}
