package server

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupSocketTest starts a server with one fake device and returns it with
// its socket path.
func setupSocketTest(t *testing.T) (*Server, string) {
	t.Helper()

	cfg := setupTestConfig(t)
	srv := New(testLogger(), cfg, BuildInfo{Version: "1.2.3", Commit: "abc", Date: "2026-01-01"})

	require.NoError(t, srv.Start())
	t.Cleanup(srv.Stop)

	fc := &fakeController{ison: true, gain: 50, red: 0, green: 128, blue: 0}
	ts := httptest.NewServer(fc.handler())
	t.Cleanup(ts.Close)

	_, err := srv.Devices().AddDevice(t.Context(), recordForServer(t, "strip-1", ts))
	require.NoError(t, err)

	return srv, cfg.Server.UnixSocket
}

// socketRequest sends a JSON request and reads the JSON response.
func socketRequest(t *testing.T, socketPath string, req map[string]any) map[string]any {
	t.Helper()
	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, json.NewEncoder(conn).Encode(req))

	var resp map[string]any
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	return resp
}

// --- Ping / health / version ---

func TestSocketAction_Ping(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "ping"})
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "pong", resp["message"])
}

func TestSocketAction_PingWithID(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "ping", "id": "req-123"})
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "req-123", resp["id"])
}

func TestSocketAction_Health(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "health"})
	assert.Equal(t, "ok", resp["health"])
}

func TestSocketAction_Version(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "version"})
	assert.Equal(t, "1.2.3", resp["version"])
	assert.Equal(t, "abc", resp["commit"])
}

func TestSocketAction_Unknown(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "bogus"})
	assert.Contains(t, resp["error"], "unknown action")
}

// --- Lights ---

func TestSocketAction_ListLights(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{"action": "list_lights"})
	lights, ok := resp["lights"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, lights, "strip-1")

	light := lights["strip-1"].(map[string]any)
	assert.Equal(t, true, light["on"])
	assert.Equal(t, float64(50), light["brightness"])
	assert.Equal(t, float64(120), light["hue"])
}

func TestSocketAction_GetLight(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "get_light",
		"data":   map[string]any{"id": "strip-1"},
	})
	light, ok := resp["light"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "strip-1", light["id"])
}

func TestSocketAction_GetLight_NotFound(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "get_light",
		"data":   map[string]any{"id": "no-such"},
	})
	assert.Contains(t, resp["error"], "failed to get light")
}

func TestSocketAction_SetLightState_SingleProperty(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_light_state",
		"data":   map[string]any{"id": "strip-1", "property": "brightness", "value": 80},
	})
	assert.Equal(t, "ok", resp["status"])

	get := socketRequest(t, socketPath, map[string]any{
		"action": "get_light",
		"data":   map[string]any{"id": "strip-1"},
	})
	light := get["light"].(map[string]any)
	assert.Equal(t, float64(80), light["brightness"])
}

func TestSocketAction_SetLightState_MultiProperty(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_light_state",
		"data":   map[string]any{"id": "strip-1", "hue": 240, "saturation": 100},
	})
	assert.Equal(t, "ok", resp["status"])

	get := socketRequest(t, socketPath, map[string]any{
		"action": "get_light",
		"data":   map[string]any{"id": "strip-1"},
	})
	light := get["light"].(map[string]any)
	assert.Equal(t, float64(240), light["hue"])
	assert.Equal(t, float64(100), light["saturation"])
}

func TestSocketAction_SetLightState_MissingProperties(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_light_state",
		"data":   map[string]any{"id": "strip-1"},
	})
	assert.Contains(t, resp["error"], "missing property/value")
}

// --- Groups ---

func TestSocketAction_GroupLifecycle(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	created := socketRequest(t, socketPath, map[string]any{
		"action": "create_group",
		"data":   map[string]any{"name": "office", "lights": []any{"strip-1"}},
	})
	grp, ok := created["group"].(map[string]any)
	require.True(t, ok)
	groupID := grp["id"].(string)
	require.NotEmpty(t, groupID)

	listed := socketRequest(t, socketPath, map[string]any{"action": "list_groups"})
	groups := listed["groups"].([]any)
	require.Len(t, groups, 1)

	got := socketRequest(t, socketPath, map[string]any{
		"action": "get_group",
		"data":   map[string]any{"id": groupID},
	})
	gotGroup := got["group"].(map[string]any)
	assert.Equal(t, "office", gotGroup["name"])

	deleted := socketRequest(t, socketPath, map[string]any{
		"action": "delete_group",
		"data":   map[string]any{"id": groupID},
	})
	assert.Equal(t, "ok", deleted["status"])

	relisted := socketRequest(t, socketPath, map[string]any{"action": "list_groups"})
	assert.Empty(t, relisted["groups"])
}

func TestSocketAction_SetGroupState(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	created := socketRequest(t, socketPath, map[string]any{
		"action": "create_group",
		"data":   map[string]any{"name": "office", "lights": []any{"strip-1"}},
	})
	groupID := created["group"].(map[string]any)["id"].(string)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_group_state",
		"data":   map[string]any{"id": groupID, "on": false},
	})
	assert.Equal(t, "ok", resp["status"])

	get := socketRequest(t, socketPath, map[string]any{
		"action": "get_light",
		"data":   map[string]any{"id": "strip-1"},
	})
	light := get["light"].(map[string]any)
	assert.Equal(t, false, light["on"])
}

func TestSocketAction_SetGroupState_ByName(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	socketRequest(t, socketPath, map[string]any{
		"action": "create_group",
		"data":   map[string]any{"name": "office", "lights": []any{"strip-1"}},
	})

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_group_state",
		"data":   map[string]any{"id": "office", "brightness": 25},
	})
	assert.Equal(t, "ok", resp["status"])
}

func TestSocketAction_SetGroupState_NotFound(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_group_state",
		"data":   map[string]any{"id": "no-such", "on": true},
	})
	assert.Contains(t, resp["error"], "no groups found")
}

// --- API keys ---

func TestSocketAction_APIKeyLifecycle(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	created := socketRequest(t, socketPath, map[string]any{
		"action": "apikey_add",
		"data":   map[string]any{"name": "cli"},
	})
	require.Equal(t, "ok", created["status"])
	key := created["key"].(map[string]any)
	keyStr := key["key"].(string)
	require.NotEmpty(t, keyStr)

	listed := socketRequest(t, socketPath, map[string]any{"action": "apikey_list"})
	keys := listed["keys"].([]any)
	require.Len(t, keys, 1)

	disabled := socketRequest(t, socketPath, map[string]any{
		"action": "apikey_set_disabled_status",
		"data":   map[string]any{"key_or_name": "cli", "disabled": true},
	})
	assert.Equal(t, "ok", disabled["status"])
	assert.Equal(t, true, disabled["key"].(map[string]any)["disabled"])

	deleted := socketRequest(t, socketPath, map[string]any{
		"action": "apikey_delete",
		"data":   map[string]any{"key": keyStr},
	})
	assert.Equal(t, "ok", deleted["status"])
}

func TestSocketAction_APIKeyAdd_WithExpiry(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	created := socketRequest(t, socketPath, map[string]any{
		"action": "apikey_add",
		"data":   map[string]any{"name": "short-lived", "expires_in": "720h"},
	})
	require.Equal(t, "ok", created["status"])
	key := created["key"].(map[string]any)
	expires, err := time.Parse(time.RFC3339Nano, key["expires_at"].(string))
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))
}

func TestSocketAction_APIKeyAdd_InvalidExpiry(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "apikey_add",
		"data":   map[string]any{"name": "bad", "expires_in": "soon"},
	})
	assert.Contains(t, resp["error"], "invalid expires_in")
}

// --- Log level ---

func TestSocketAction_SetLevel(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_level",
		"data":   map[string]any{"level": "debug"},
	})
	assert.Equal(t, "debug", resp["level"])

	got := socketRequest(t, socketPath, map[string]any{"action": "get_level"})
	assert.Equal(t, "debug", got["level"])

	// restore
	socketRequest(t, socketPath, map[string]any{
		"action": "set_level",
		"data":   map[string]any{"level": "info"},
	})
}

func TestSocketAction_SetLevel_Invalid(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	resp := socketRequest(t, socketPath, map[string]any{
		"action": "set_level",
		"data":   map[string]any{"level": "loud"},
	})
	assert.Contains(t, resp["error"], "invalid log level")
}

// --- Malformed requests ---

func TestSocket_InvalidJSON(t *testing.T) {
	_, socketPath := setupSocketTest(t)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = conn.Write([]byte("not json\n"))
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(conn).Decode(&resp))
	assert.Contains(t, resp["error"], "invalid JSON")
}
