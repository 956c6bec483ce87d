package rgbw

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colorlightd/internal/color"
)

// mockControllerServer creates a test server answering like a color-light
// controller. lastQuery captures the query values of the most recent
// /color/0 request that carried parameters.
func mockControllerServer(t *testing.T, lastQuery *map[string][]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/shelly":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"type": "SHRGBW2",
				"mac":  "AABBCCDDEEFF",
				"fw":   "20230913-112003",
				"name": "bench-strip",
			})
		case r.Method == http.MethodGet && r.URL.Path == "/color/0":
			if len(r.URL.Query()) > 0 && lastQuery != nil {
				*lastQuery = r.URL.Query()
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"ison":  true,
				"gain":  75,
				"red":   255,
				"green": 128,
				"blue":  0,
				"white": 10,
			})
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.50", 80, testLogger())
	assert.NotNil(t, client)
	assert.Equal(t, "http://192.168.1.50:80", client.baseURL)
	assert.NotNil(t, client.httpClient)

	custom := &http.Client{}
	client = NewClient("192.168.1.50", 80, testLogger(), custom)
	assert.Equal(t, custom, client.httpClient)
}

func TestGetInfo(t *testing.T) {
	server := mockControllerServer(t, nil)
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	info, err := client.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SHRGBW2", info.Product)
	assert.Equal(t, "AABBCCDDEEFF", info.MAC)
	assert.Equal(t, "20230913-112003", info.Firmware)
	assert.Equal(t, "bench-strip", info.Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GetInfo(ctx)
	assert.Error(t, err)
}

func TestGetState(t *testing.T) {
	server := mockControllerServer(t, nil)
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	state, err := client.GetState(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Output)
	require.NotNil(t, state.Brightness)
	assert.Equal(t, 75, *state.Brightness)
	require.NotNil(t, state.RGB)
	assert.Equal(t, color.RGB{R: 255, G: 128, B: 0}, *state.RGB)
	require.NotNil(t, state.White)
	assert.Equal(t, 10, *state.White)
}

func TestGetStatePartialFields(t *testing.T) {
	// A fixture without a white channel omits white, and a fixture that
	// reports no color channels yields a nil RGB.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ison": false,
			"gain": 40,
		})
	}))
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	state, err := client.GetState(context.Background())
	require.NoError(t, err)
	assert.False(t, state.Output)
	require.NotNil(t, state.Brightness)
	assert.Equal(t, 40, *state.Brightness)
	assert.Nil(t, state.RGB)
	assert.Nil(t, state.White)
}

func TestSetState(t *testing.T) {
	var lastQuery map[string][]string
	server := mockControllerServer(t, &lastQuery)
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	on := true
	brightness := 60
	rgb := color.RGB{R: 10, G: 20, B: 30}
	err := client.SetState(context.Background(), Command{
		On:         &on,
		Brightness: &brightness,
		RGB:        &rgb,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"on"}, lastQuery["turn"])
	assert.Equal(t, []string{"60"}, lastQuery["gain"])
	assert.Equal(t, []string{"10"}, lastQuery["red"])
	assert.Equal(t, []string{"20"}, lastQuery["green"])
	assert.Equal(t, []string{"30"}, lastQuery["blue"])
	assert.NotContains(t, lastQuery, "white")
}

func TestSetStateOffOnly(t *testing.T) {
	var lastQuery map[string][]string
	server := mockControllerServer(t, &lastQuery)
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	off := false
	require.NoError(t, client.SetState(context.Background(), Command{On: &off}))
	assert.Equal(t, []string{"off"}, lastQuery["turn"])
	assert.NotContains(t, lastQuery, "gain")
	assert.NotContains(t, lastQuery, "red")
}

func TestSetStateEmptyCommandIsNoop(t *testing.T) {
	// No server at all; an empty command must not touch the network.
	client := NewClient("203.0.113.1", 80, testLogger())
	assert.NoError(t, client.SetState(context.Background(), Command{}))
}

func TestClientServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	_, err := client.GetInfo(context.Background())
	assert.Error(t, err)
	_, err = client.GetState(context.Background())
	assert.Error(t, err)
	on := true
	assert.Error(t, client.SetState(context.Background(), Command{On: &on}))
}

func TestClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{not valid json"))
	}))
	defer server.Close()

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	_, err := client.GetState(context.Background())
	assert.Error(t, err)
}
