package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

// LightTableData returns the table data for a light, with bold ID and value
func LightTableData(id string, light map[string]any) pterm.TableData {
	return pterm.TableData{
		[]string{pterm.Bold.Sprint("ID"), pterm.Bold.Sprint(id)},
		[]string{"Name", fmt.Sprintf("%v", light["name"])},
		[]string{"Mode", fmt.Sprintf("%v", light["mode"])},
		[]string{"Product", fmt.Sprintf("%v", light["product"])},
		[]string{"Firmware", fmt.Sprintf("%v", light["firmware"])},
		[]string{"On", fmt.Sprintf("%v", light["on"])},
		[]string{"Brightness", fmt.Sprintf("%v", light["brightness"])},
		[]string{"Hue", fmt.Sprintf("%v", light["hue"])},
		[]string{"Saturation", fmt.Sprintf("%v", light["saturation"])},
		[]string{"IP", fmt.Sprintf("%v", light["ip"])},
		[]string{"Port", fmt.Sprintf("%v", light["port"])},
		[]string{"Last Seen", formatLastSeen(light["last_seen"])},
	}
}

// formatLastSeen formats the last_seen field for display. The socket API
// serializes times as RFC3339 strings.
func formatLastSeen(lastSeen any) string {
	if t := parseTimeField(lastSeen); !t.IsZero() {
		return t.Format(time.RFC1123Z)
	}
	return "N/A"
}

// parseTimeField accepts a time.Time or an RFC3339 string and returns the
// parsed time, or the zero time if neither applies.
func parseTimeField(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// LightParseable returns the parseable key=value string for a light
func LightParseable(id string, light map[string]any) string {
	lastSeenUnix := "0"
	if t := parseTimeField(light["last_seen"]); !t.IsZero() {
		lastSeenUnix = fmt.Sprintf("%d", t.Unix())
	}
	return fmt.Sprintf(
		"id=\"%s\" name=\"%v\" mode=\"%v\" product=\"%v\" firmware=\"%v\" on=%v brightness=%v hue=%v saturation=%v ip=\"%v\" port=%v last_seen=%s",
		id,
		light["name"],
		light["mode"],
		light["product"],
		light["firmware"],
		light["on"],
		light["brightness"],
		light["hue"],
		light["saturation"],
		light["ip"],
		light["port"],
		lastSeenUnix,
	)
}

// GroupParseable returns the parseable string for a group (id, name, lights as comma-separated)
func GroupParseable(group map[string]any) string {
	id, _ := group["id"].(string)
	name, _ := group["name"].(string)
	lights, _ := group["lights"].([]any)
	lightIDs := make([]string, 0, len(lights))
	for _, light := range lights {
		if s, ok := light.(string); ok {
			lightIDs = append(lightIDs, s)
		}
	}
	return fmt.Sprintf("id=%q name=%q lights=%q", id, name, strings.Join(lightIDs, ","))
}
