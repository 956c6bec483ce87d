package rgbw

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmylchreest/colorlightd/internal/color"
)

// Client handles HTTP communication with a single color-light controller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for a controller at host:port.
func NewClient(host string, port int, logger *slog.Logger, httpClient ...*http.Client) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var hc *http.Client
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	} else {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		httpClient: hc,
		logger:     logger,
	}
}

// GetInfo retrieves controller identity from the /shelly endpoint.
func (c *Client) GetInfo(ctx context.Context) (*Info, error) {
	var info Info
	if err := c.getJSON(ctx, "/shelly", &info); err != nil {
		return nil, fmt.Errorf("failed to get device info: %w", err)
	}
	return &info, nil
}

// GetState retrieves the current color channel state from /color/0.
func (c *Client) GetState(ctx context.Context) (State, error) {
	var status struct {
		IsOn  bool `json:"ison"`
		Gain  *int `json:"gain"`
		Red   *int `json:"red"`
		Green *int `json:"green"`
		Blue  *int `json:"blue"`
		White *int `json:"white"`
	}
	if err := c.getJSON(ctx, "/color/0", &status); err != nil {
		return State{}, fmt.Errorf("failed to get color state: %w", err)
	}

	state := State{
		Output:     status.IsOn,
		Brightness: status.Gain,
		White:      status.White,
	}
	if status.Red != nil && status.Green != nil && status.Blue != nil {
		state.RGB = &color.RGB{R: *status.Red, G: *status.Green, B: *status.Blue}
	}
	return state, nil
}

// SetState applies a partial update via /color/0 query parameters. Only the
// fields present in cmd are sent; the controller leaves the rest untouched.
func (c *Client) SetState(ctx context.Context, cmd Command) error {
	if cmd.Empty() {
		return nil
	}

	params := url.Values{}
	if cmd.On != nil {
		if *cmd.On {
			params.Set("turn", "on")
		} else {
			params.Set("turn", "off")
		}
	}
	if cmd.Brightness != nil {
		params.Set("gain", strconv.Itoa(*cmd.Brightness))
	}
	if cmd.RGB != nil {
		params.Set("red", strconv.Itoa(cmd.RGB.R))
		params.Set("green", strconv.Itoa(cmd.RGB.G))
		params.Set("blue", strconv.Itoa(cmd.RGB.B))
	}
	if cmd.White != nil {
		params.Set("white", strconv.Itoa(*cmd.White))
	}

	reqURL := c.baseURL + "/color/0?" + params.Encode()
	c.logger.Debug("setting device state", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to set device state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("device request failed", "url", reqURL, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		c.logger.Error("device request failed", "url", reqURL, "error", err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("device response decode failed", "url", reqURL, "error", err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
