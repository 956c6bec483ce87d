package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPClient represents an HTTP connection to colorlightd.
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTP creates a new HTTP client.
func NewHTTP(logger *slog.Logger, baseURL string, apiKey string) *HTTPClient {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &HTTPClient{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// request performs an HTTP request and decodes the JSON response
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	url := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", url)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Error("HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return fmt.Errorf("HTTP error %d: %s", httpResp.StatusCode, string(respBody))
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			c.logger.Error("Failed to decode response", "error", err, "body", string(respBody))
			return fmt.Errorf("failed to decode response: %w", err)
		}
		c.logger.Debug("Received response", "response", resp)
	}

	return nil
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion() (map[string]any, error) {
	var resp map[string]any
	if err := c.request("GET", "/api/v1/version", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLights returns all lights keyed by ID.
func (c *HTTPClient) GetLights() (map[string]any, error) {
	var resp map[string]any
	if err := c.request("GET", "/api/v1/lights", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLight returns a specific light.
func (c *HTTPClient) GetLight(id string) (map[string]any, error) {
	var resp map[string]any
	if err := c.request("GET", "/api/v1/lights/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetLightState sets a property on a light.
func (c *HTTPClient) SetLightState(id string, property string, value any) error {
	body := map[string]any{
		property: value,
	}
	return c.request("POST", "/api/v1/lights/"+id+"/state", body, nil)
}

// CreateGroup creates a new group with an optional initial set of lights.
func (c *HTTPClient) CreateGroup(name string, lightIDs []string) (map[string]any, error) {
	body := map[string]any{
		"name": name,
	}
	if len(lightIDs) > 0 {
		body["light_ids"] = lightIDs
	}
	var resp map[string]any
	if err := c.request("POST", "/api/v1/groups", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetGroup returns a specific group.
func (c *HTTPClient) GetGroup(id string) (map[string]any, error) {
	var resp map[string]any
	if err := c.request("GET", "/api/v1/groups/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetGroups returns all groups.
func (c *HTTPClient) GetGroups() ([]map[string]any, error) {
	var resp []map[string]any
	if err := c.request("GET", "/api/v1/groups", nil, &resp); err != nil {
		return nil, err
	}
	// Ensure we return an empty slice instead of nil
	if resp == nil {
		return []map[string]any{}, nil
	}
	return resp, nil
}

// SetGroupState sets a property on all lights in a group. The daemon answers
// 207 Multi-Status when only part of the group could be updated; that is
// surfaced as an error carrying the per-light failures.
func (c *HTTPClient) SetGroupState(id string, property string, value any) error {
	body := map[string]any{
		property: value,
	}
	var resp map[string]any
	if err := c.request("PUT", "/api/v1/groups/"+id+"/state", body, &resp); err != nil {
		return err
	}
	if status, _ := resp["status"].(string); status == "partial" {
		errs, _ := resp["errors"].([]any)
		parts := make([]string, 0, len(errs))
		for _, e := range errs {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			}
		}
		return fmt.Errorf("partial group update: %s", strings.Join(parts, "; "))
	}
	return nil
}

// DeleteGroup deletes a group.
func (c *HTTPClient) DeleteGroup(id string) error {
	return c.request("DELETE", "/api/v1/groups/"+id, nil, nil)
}

// SetGroupLights sets the lights in a group.
func (c *HTTPClient) SetGroupLights(groupID string, lightIDs []string) error {
	body := map[string]any{
		"light_ids": lightIDs,
	}
	return c.request("PUT", "/api/v1/groups/"+groupID+"/lights", body, nil)
}

// AddAPIKey creates a new API key. expiresIn is a Go duration string such as
// "720h"; empty means no expiry.
func (c *HTTPClient) AddAPIKey(name string, expiresIn string) (map[string]any, error) {
	body := map[string]any{
		"name": name,
	}
	if expiresIn != "" {
		body["expires_in"] = expiresIn
	}
	var resp map[string]any
	if err := c.request("POST", "/api/v1/apikeys", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListAPIKeys returns all API keys.
func (c *HTTPClient) ListAPIKeys() ([]map[string]any, error) {
	var resp []map[string]any
	if err := c.request("GET", "/api/v1/apikeys", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAPIKey deletes an API key.
func (c *HTTPClient) DeleteAPIKey(key string) error {
	return c.request("DELETE", "/api/v1/apikeys/"+key, nil, nil)
}

// SetAPIKeyDisabledStatus enables or disables an API key.
func (c *HTTPClient) SetAPIKeyDisabledStatus(keyOrName string, disabled bool) (map[string]any, error) {
	body := map[string]any{
		"disabled": disabled,
	}
	var resp map[string]any
	if err := c.request("PUT", "/api/v1/apikeys/"+keyOrName+"/disabled", body, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLogLevel returns the daemon's current log level.
func (c *HTTPClient) GetLogLevel() (string, error) {
	var resp map[string]any
	if err := c.request("GET", "/api/v1/logging/level", nil, &resp); err != nil {
		return "", err
	}
	level, _ := resp["level"].(string)
	return level, nil
}

// SetLogLevel changes the daemon's log level at runtime.
func (c *HTTPClient) SetLogLevel(level string) error {
	body := map[string]any{
		"level": level,
	}
	return c.request("PUT", "/api/v1/logging/level", body, nil)
}
