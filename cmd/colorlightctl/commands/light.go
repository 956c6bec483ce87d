package commands

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// orderedProperties defines the order of properties in parseable output
var orderedProperties = []string{
	"id",
	"name",
	"mode",
	"product",
	"firmware",
	"on",
	"brightness",
	"hue",
	"saturation",
	"ip",
	"port",
}

// formatLightProperties formats light properties in a consistent order
func formatLightProperties(id string, light map[string]any) string {
	var parts []string
	// Always add ID first
	parts = append(parts, fmt.Sprintf("id=%q", id))

	// Add properties in defined order
	for _, prop := range orderedProperties {
		if prop == "id" {
			continue
		}
		if val, ok := light[prop]; ok {
			switch v := val.(type) {
			case string:
				parts = append(parts, fmt.Sprintf("%s=%q", prop, v))
			default:
				parts = append(parts, fmt.Sprintf("%s=%v", prop, v))
			}
		}
	}

	return strings.Join(parts, " ")
}

// selectLightID shows an interactive dropdown over the known lights and
// returns the chosen ID.
func selectLightID(lights map[string]any) (string, error) {
	ids := make([]string, 0, len(lights))
	for id := range lights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	options := make([]string, len(ids))
	for i, id := range ids {
		lightMap, _ := lights[id].(map[string]any)
		options[i] = fmt.Sprintf("%s (%v)", id, lightMap["name"])
	}

	selected, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		Show("Select a light")
	if err != nil {
		return "", fmt.Errorf("failed to select light: %w", err)
	}

	return strings.Split(selected, " (")[0], nil
}

// NewLightCommand creates the light command
func NewLightCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "light",
		Short: "Manage individual lights",
	}

	cmd.AddCommand(
		newLightListCommand(),
		newLightGetCommand(),
		newLightSetCommand(logger),
	)

	return cmd
}

// newLightListCommand creates the light list command
func newLightListCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known lights",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}
			lights, err := c.GetLights()
			if err != nil {
				return fmt.Errorf("failed to get lights: %w", err)
			}

			if len(lights) == 0 {
				if parseable {
					return nil
				}
				pterm.Info.Println("No lights discovered")
				return nil
			}

			if parseable {
				// Print one line per light in key=value format
				for id, light := range lights {
					lightMap, _ := light.(map[string]any)
					fmt.Println(formatLightProperties(id, lightMap))
				}
				return nil
			}

			for id, light := range lights {
				lightMap, _ := light.(map[string]any)
				pterm.DefaultTable.WithData(LightTableData(id, lightMap)).Render()
				pterm.Println() // Add a blank line between lights
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// newLightGetCommand creates the light get command
func newLightGetCommand() *cobra.Command {
	var parseable bool
	cmd := &cobra.Command{
		Use:   "get [id] [property]",
		Short: "Get information about a light",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			var lightID string
			if len(args) > 0 {
				lightID = args[0]
			} else {
				lights, err := c.GetLights()
				if err != nil {
					return fmt.Errorf("failed to get lights: %w", err)
				}
				lightID, err = selectLightID(lights)
				if err != nil {
					return err
				}
			}

			light, err := c.GetLight(lightID)
			if err != nil {
				return fmt.Errorf("failed to get light: %w", err)
			}

			// If a specific property was requested, only show that
			if len(args) > 1 {
				property := strings.ToLower(args[1])
				value, ok := light[property]
				if !ok {
					return fmt.Errorf("invalid property: %s", property)
				}
				if parseable {
					fmt.Printf("%s=%v\n", property, value)
				} else {
					fmt.Println(value)
				}
				return nil
			}

			if parseable {
				fmt.Println(formatLightProperties(lightID, light))
			} else {
				pterm.DefaultTable.WithData(LightTableData(lightID, light)).Render()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&parseable, "parseable", "p", false, "Output in parseable format (key=value)")
	return cmd
}

// parseLightValue converts a CLI value string into the typed value for a
// property, enforcing the characteristic ranges.
func parseLightValue(property, valueStr string) (any, error) {
	switch property {
	case "on":
		return valueStr == "true" || valueStr == "on", nil
	case "brightness", "saturation":
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", property, err)
		}
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("%s must be between 0 and 100", property)
		}
		return v, nil
	case "hue":
		v, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, fmt.Errorf("invalid hue value: %w", err)
		}
		if v < 0 || v > 359 {
			return nil, fmt.Errorf("hue must be between 0 and 359")
		}
		return v, nil
	}
	return nil, fmt.Errorf("invalid property: %s. Must be one of: on, brightness, hue, saturation", property)
}

// newLightSetCommand creates the light set command
func newLightSetCommand(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [id] [property] [value]",
		Short: "Set a light property",
		Long: `Set a light property.
Properties:
  on: true/false or on/off
  brightness: 0-100
  hue: 0-359
  saturation: 0-100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := clientFromCmd(cmd)
			if err != nil {
				return err
			}

			var lightID string
			if len(args) > 0 {
				lightID = args[0]
			} else {
				lights, err := c.GetLights()
				if err != nil {
					return fmt.Errorf("failed to get lights: %w", err)
				}
				lightID, err = selectLightID(lights)
				if err != nil {
					return err
				}
			}

			var property string
			if len(args) > 1 {
				property = strings.ToLower(args[1])
			} else {
				selected, err := pterm.DefaultInteractiveSelect.
					WithOptions([]string{"On", "Brightness", "Hue", "Saturation"}).
					Show("Select property to set")
				if err != nil {
					return fmt.Errorf("failed to select property: %w", err)
				}
				property = strings.ToLower(selected)
			}

			var valueStr string
			if len(args) > 2 {
				valueStr = args[2]
			} else {
				switch property {
				case "on":
					selected, err := pterm.DefaultInteractiveSelect.
						WithOptions([]string{"On", "Off"}).
						Show("Select power state")
					if err != nil {
						return fmt.Errorf("failed to get power state: %w", err)
					}
					if selected == "On" {
						valueStr = "on"
					} else {
						valueStr = "off"
					}
				case "brightness", "saturation":
					valueStr, err = pterm.DefaultInteractiveTextInput.
						WithMultiLine(false).
						Show(fmt.Sprintf("Enter %s (0-100)", property))
					if err != nil {
						return fmt.Errorf("failed to get %s value: %w", property, err)
					}
				case "hue":
					valueStr, err = pterm.DefaultInteractiveTextInput.
						WithMultiLine(false).
						Show("Enter hue in degrees (0-359)")
					if err != nil {
						return fmt.Errorf("failed to get hue value: %w", err)
					}
				}
			}

			value, err := parseLightValue(property, valueStr)
			if err != nil {
				return err
			}

			if err := c.SetLightState(lightID, property, value); err != nil {
				return fmt.Errorf("failed to set light state: %w", err)
			}

			pterm.Success.Println("Light state updated successfully")
			return nil
		},
	}
	return cmd
}
