// Package handlers provides typed Huma request/response structs and handler
// implementations for the colorlightd HTTP API.
package handlers

import (
	"time"

	"github.com/jmylchreest/colorlightd/internal/group"
	"github.com/jmylchreest/colorlightd/internal/lights"
)

// --- Light types ---

// LightResponse is the API representation of a discovered light.
type LightResponse struct {
	ID         string    `json:"id" doc:"Unique light identifier"`
	Name       string    `json:"name" doc:"Display name of the light"`
	Mode       string    `json:"mode" doc:"Channel mode: rgb or rgbw"`
	Product    string    `json:"product,omitempty" doc:"Controller product identifier"`
	Firmware   string    `json:"firmware,omitempty" doc:"Firmware version string"`
	IP         string    `json:"ip,omitempty" doc:"IP address of the controller"`
	Port       int       `json:"port,omitempty" doc:"Port number of the controller"`
	LastSeen   time.Time `json:"last_seen" doc:"Last time the controller responded"`
	On         bool      `json:"on" doc:"Whether the light is currently on"`
	Brightness int       `json:"brightness" doc:"Brightness level (0-100)"`
	Hue        int       `json:"hue" doc:"Hue in degrees (0-359)"`
	Saturation int       `json:"saturation" doc:"Saturation percent (0-100)"`
}

// LightFromService converts a lights.Light to a LightResponse.
func LightFromService(l *lights.Light) LightResponse {
	return LightResponse{
		ID:         l.ID,
		Name:       l.Name,
		Mode:       l.Mode,
		Product:    l.Product,
		Firmware:   l.Firmware,
		IP:         l.IP,
		Port:       l.Port,
		LastSeen:   l.LastSeen,
		On:         l.On,
		Brightness: l.Brightness,
		Hue:        l.Hue,
		Saturation: l.Saturation,
	}
}

// LightsMapFromService converts the light service's map to the API map
// keyed by light ID.
func LightsMapFromService(all map[string]*lights.Light) map[string]LightResponse {
	result := make(map[string]LightResponse, len(all))
	for id, l := range all {
		result[id] = LightFromService(l)
	}
	return result
}

// --- Group types ---

// GroupResponse is the API representation of a light group.
type GroupResponse struct {
	ID     string   `json:"id" doc:"Unique group identifier (UUID)"`
	Name   string   `json:"name" doc:"Display name of the group"`
	Lights []string `json:"lights" doc:"List of light IDs in this group"`
}

// GroupFromInternal converts a group.Group to a GroupResponse.
func GroupFromInternal(g *group.Group) GroupResponse {
	lightIDs := g.Lights
	if lightIDs == nil {
		lightIDs = []string{}
	}
	return GroupResponse{
		ID:     g.ID,
		Name:   g.Name,
		Lights: lightIDs,
	}
}

// GroupsFromInternal converts a slice of group.Group to GroupResponses.
func GroupsFromInternal(groups []*group.Group) []GroupResponse {
	result := make([]GroupResponse, len(groups))
	for i, g := range groups {
		result[i] = GroupFromInternal(g)
	}
	return result
}

// --- API Key types ---

// APIKeyResponse is the API representation of an API key.
type APIKeyResponse struct {
	ID        string    `json:"id" doc:"Key identifier"`
	Name      string    `json:"name" doc:"Display name of the key"`
	Key       string    `json:"key,omitempty" doc:"Full key string (only present on creation)"`
	CreatedAt time.Time `json:"created_at" doc:"When the key was created"`
	ExpiresAt time.Time `json:"expires_at" doc:"When the key expires"`
}

// --- Common response types ---

// StatusResponse is a simple status response.
type StatusResponse struct {
	Status string `json:"status" doc:"Operation status"`
}

// PartialStatusResponse is returned when some operations in a batch succeed and others fail.
type PartialStatusResponse struct {
	Status string   `json:"status" doc:"Operation status (partial)"`
	Errors []string `json:"errors" doc:"List of errors for failed operations"`
}
