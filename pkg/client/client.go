// Package client provides Go clients for the colorlightd unix socket and
// HTTP APIs. The socket client is what colorlightctl uses; the HTTP client
// serves remote administration.
package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
)

var dial = net.Dial

// Interface defines the methods for interacting with colorlightd.
// Used for testability and mocking in the CLI.
type Interface interface {
	Ping() error
	GetVersion() (map[string]any, error)
	GetLights() (map[string]any, error)
	GetLight(id string) (map[string]any, error)
	SetLightState(id string, property string, value any) error
	CreateGroup(name string, lightIDs []string) (map[string]any, error)
	GetGroup(id string) (map[string]any, error)
	GetGroups() ([]map[string]any, error)
	SetGroupState(id string, property string, value any) error
	DeleteGroup(id string) error
	SetGroupLights(groupID string, lightIDs []string) error
	AddAPIKey(name string, expiresIn string) (map[string]any, error)
	ListAPIKeys() ([]map[string]any, error)
	DeleteAPIKey(key string) error
	SetAPIKeyDisabledStatus(keyOrName string, disabled bool) (map[string]any, error)
	GetLogLevel() (string, error)
	SetLogLevel(level string) error
}

// Client is a unix socket connection to colorlightd.
type Client struct {
	logger *slog.Logger
	socket string
}

// New creates a new client. An empty socket path falls back to the XDG
// runtime directory, matching the daemon's default.
func New(logger *slog.Logger, socket string) *Client {
	if socket == "" {
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			socket = filepath.Join(dir, "colorlightd.sock")
			logger.Debug("Using XDG runtime directory for socket", "dir", dir, "socket", socket)
		} else {
			uid := os.Getuid()
			socket = filepath.Join("/run/user", fmt.Sprintf("%d", uid), "colorlightd.sock")
			logger.Debug("Using /run/user for socket", "uid", uid, "socket", socket)
		}
	} else {
		logger.Debug("Using provided socket path", "socket", socket)
	}

	return &Client{
		logger: logger,
		socket: socket,
	}
}

// request sends one newline-delimited JSON request and decodes the response.
// A response carrying an "error" key is surfaced as a Go error.
func (c *Client) request(action string, data map[string]any) (map[string]any, error) {
	c.logger.Debug("Connecting to socket", "socket", c.socket)
	conn, err := dial("unix", c.socket)
	if err != nil {
		c.logger.Error("Failed to connect to socket", "error", err, "socket", c.socket)
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	req := map[string]any{"action": action}
	if data != nil {
		req["data"] = data
	}

	c.logger.Debug("Encoding request", "request", req)
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		c.logger.Error("Failed to encode request", "error", err)
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp map[string]any
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		c.logger.Error("Failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	c.logger.Debug("Received response", "response", resp)

	if errMsg, ok := resp["error"].(string); ok {
		c.logger.Error("Server returned error", "error", errMsg)
		return nil, fmt.Errorf("server error: %s", errMsg)
	}

	return resp, nil
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() error {
	_, err := c.request("ping", nil)
	return err
}

// GetVersion returns the running daemon's build information.
func (c *Client) GetVersion() (map[string]any, error) {
	return c.request("version", nil)
}

// GetLights returns all known lights keyed by ID.
func (c *Client) GetLights() (map[string]any, error) {
	resp, err := c.request("list_lights", nil)
	if err != nil {
		return nil, err
	}
	lights, _ := resp["lights"].(map[string]any)
	if lights == nil {
		lights = map[string]any{}
	}
	return lights, nil
}

// GetLight returns the state of a specific light.
func (c *Client) GetLight(id string) (map[string]any, error) {
	resp, err := c.request("get_light", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	light, ok := resp["light"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing light")
	}
	return light, nil
}

// SetLightState sets one property (on, brightness, hue or saturation) on a
// light.
func (c *Client) SetLightState(id string, property string, value any) error {
	_, err := c.request("set_light_state", map[string]any{
		"id":       id,
		"property": property,
		"value":    value,
	})
	return err
}

// CreateGroup creates a group with an optional initial set of lights and
// returns it.
func (c *Client) CreateGroup(name string, lightIDs []string) (map[string]any, error) {
	data := map[string]any{"name": name}
	if len(lightIDs) > 0 {
		data["lights"] = lightIDs
	}
	resp, err := c.request("create_group", data)
	if err != nil {
		return nil, err
	}
	group, ok := resp["group"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing group")
	}
	return group, nil
}

// GetGroup returns a group by ID or name.
func (c *Client) GetGroup(id string) (map[string]any, error) {
	resp, err := c.request("get_group", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	group, ok := resp["group"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing group")
	}
	return group, nil
}

// GetGroups returns all groups.
func (c *Client) GetGroups() ([]map[string]any, error) {
	resp, err := c.request("list_groups", nil)
	if err != nil {
		return nil, err
	}
	raw, _ := resp["groups"].([]any)
	groups := make([]map[string]any, 0, len(raw))
	for _, g := range raw {
		if groupMap, ok := g.(map[string]any); ok {
			groups = append(groups, groupMap)
		}
	}
	return groups, nil
}

// SetGroupState sets one property on all lights in a group, addressed by ID
// or name.
func (c *Client) SetGroupState(id string, property string, value any) error {
	_, err := c.request("set_group_state", map[string]any{
		"id":       id,
		"property": property,
		"value":    value,
	})
	return err
}

// DeleteGroup deletes a group.
func (c *Client) DeleteGroup(id string) error {
	_, err := c.request("delete_group", map[string]any{"id": id})
	return err
}

// SetGroupLights replaces the membership of a group.
func (c *Client) SetGroupLights(groupID string, lightIDs []string) error {
	_, err := c.request("set_group_lights", map[string]any{
		"id":     groupID,
		"lights": lightIDs,
	})
	return err
}

// AddAPIKey creates a new API key. expiresIn is a Go duration string such as
// "720h"; empty means no expiry.
func (c *Client) AddAPIKey(name string, expiresIn string) (map[string]any, error) {
	data := map[string]any{"name": name}
	if expiresIn != "" {
		data["expires_in"] = expiresIn
	}
	resp, err := c.request("apikey_add", data)
	if err != nil {
		return nil, err
	}
	key, ok := resp["key"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing key")
	}
	return key, nil
}

// ListAPIKeys returns all API keys.
func (c *Client) ListAPIKeys() ([]map[string]any, error) {
	resp, err := c.request("apikey_list", nil)
	if err != nil {
		return nil, err
	}
	raw, _ := resp["keys"].([]any)
	keys := make([]map[string]any, 0, len(raw))
	for _, k := range raw {
		if keyMap, ok := k.(map[string]any); ok {
			keys = append(keys, keyMap)
		}
	}
	return keys, nil
}

// DeleteAPIKey deletes an API key by its key string.
func (c *Client) DeleteAPIKey(key string) error {
	_, err := c.request("apikey_delete", map[string]any{"key": key})
	return err
}

// SetAPIKeyDisabledStatus enables or disables an API key by key or name and
// returns the updated key.
func (c *Client) SetAPIKeyDisabledStatus(keyOrName string, disabled bool) (map[string]any, error) {
	resp, err := c.request("apikey_set_disabled_status", map[string]any{
		"key_or_name": keyOrName,
		"disabled":    disabled,
	})
	if err != nil {
		return nil, err
	}
	key, ok := resp["key"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed response: missing key")
	}
	return key, nil
}

// GetLogLevel returns the daemon's current log level.
func (c *Client) GetLogLevel() (string, error) {
	resp, err := c.request("get_level", nil)
	if err != nil {
		return "", err
	}
	level, _ := resp["level"].(string)
	return level, nil
}

// SetLogLevel changes the daemon's log level at runtime.
func (c *Client) SetLogLevel(level string) error {
	_, err := c.request("set_level", map[string]any{"level": level})
	return err
}
