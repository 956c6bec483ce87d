package client

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"
)

type mockConn struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	closed   bool
}

func (m *mockConn) Read(b []byte) (int, error)         { return m.readBuf.Read(b) }
func (m *mockConn) Write(b []byte) (int, error)        { return m.writeBuf.Write(b) }
func (m *mockConn) Close() error                       { m.closed = true; return nil }
func (m *mockConn) LocalAddr() net.Addr                { return nil }
func (m *mockConn) RemoteAddr() net.Addr               { return nil }
func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func mockDialer(conn *mockConn) func(network, address string) (net.Conn, error) {
	return func(network, address string) (net.Conn, error) {
		return conn, nil
	}
}

// withResponse swaps dial so the next request reads the given canned response
// and returns the connection so the test can inspect what was written.
func withResponse(t *testing.T, resp map[string]any) *mockConn {
	t.Helper()
	buf := &bytes.Buffer{}
	_ = json.NewEncoder(buf).Encode(resp)
	conn := &mockConn{readBuf: buf, writeBuf: &bytes.Buffer{}}
	oldDial := dial
	dial = mockDialer(conn)
	t.Cleanup(func() { dial = oldDial })
	return conn
}

// sentRequest decodes the request the client wrote to the connection.
func sentRequest(t *testing.T, conn *mockConn) map[string]any {
	t.Helper()
	var req map[string]any
	if err := json.Unmarshal(conn.writeBuf.Bytes(), &req); err != nil {
		t.Fatalf("failed to decode sent request: %v", err)
	}
	return req
}

func TestClient_AllMethods(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(logger, "/tmp/fake.sock")

	t.Run("Ping", func(t *testing.T) {
		conn := withResponse(t, map[string]any{"status": "ok", "message": "pong"})

		if err := c.Ping(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req := sentRequest(t, conn); req["action"] != "ping" {
			t.Fatalf("unexpected request: %v", req)
		}
	})

	t.Run("GetVersion", func(t *testing.T) {
		withResponse(t, map[string]any{"status": "ok", "version": "1.2.3", "commit": "abc"})

		info, err := c.GetVersion()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info["version"] != "1.2.3" {
			t.Fatalf("unexpected result: %v", info)
		}
	})

	t.Run("GetLights", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"lights": map[string]any{"strip-1": map[string]any{"id": "strip-1", "hue": 120}},
		})

		lights, err := c.GetLights()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lights["strip-1"].(map[string]any)["id"] != "strip-1" {
			t.Fatalf("unexpected result: %v", lights)
		}
	})

	t.Run("GetLight", func(t *testing.T) {
		conn := withResponse(t, map[string]any{
			"status": "ok",
			"light":  map[string]any{"id": "strip-1", "on": true},
		})

		light, err := c.GetLight("strip-1")
		if err != nil || light["id"] != "strip-1" {
			t.Fatalf("unexpected result: %v %v", light, err)
		}
		req := sentRequest(t, conn)
		if req["data"].(map[string]any)["id"] != "strip-1" {
			t.Fatalf("unexpected request: %v", req)
		}
	})

	t.Run("SetLightState", func(t *testing.T) {
		conn := withResponse(t, map[string]any{"status": "ok"})

		if err := c.SetLightState("strip-1", "hue", 240); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data := sentRequest(t, conn)["data"].(map[string]any)
		if data["property"] != "hue" || data["value"] != float64(240) {
			t.Fatalf("unexpected request data: %v", data)
		}
	})

	t.Run("CreateGroup", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"group":  map[string]any{"id": "g1", "name": "office", "lights": []any{"strip-1"}},
		})

		group, err := c.CreateGroup("office", []string{"strip-1"})
		if err != nil || group["id"] != "g1" {
			t.Fatalf("unexpected result: %v %v", group, err)
		}
	})

	t.Run("GetGroup", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"group":  map[string]any{"id": "g1", "name": "office"},
		})

		group, err := c.GetGroup("g1")
		if err != nil || group["name"] != "office" {
			t.Fatalf("unexpected result: %v %v", group, err)
		}
	})

	t.Run("GetGroups", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"groups": []any{
				map[string]any{"id": "g1", "name": "office", "lights": []any{}},
				map[string]any{"id": "g2", "name": "hall", "lights": []any{}},
			},
		})

		groups, err := c.GetGroups()
		if err != nil || len(groups) != 2 {
			t.Fatalf("unexpected result: %v %v", groups, err)
		}
	})

	t.Run("SetGroupState", func(t *testing.T) {
		conn := withResponse(t, map[string]any{"status": "ok"})

		if err := c.SetGroupState("office", "on", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data := sentRequest(t, conn)["data"].(map[string]any)
		if data["id"] != "office" || data["value"] != false {
			t.Fatalf("unexpected request data: %v", data)
		}
	})

	t.Run("DeleteGroup", func(t *testing.T) {
		withResponse(t, map[string]any{"status": "ok"})

		if err := c.DeleteGroup("g1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SetGroupLights", func(t *testing.T) {
		conn := withResponse(t, map[string]any{"status": "ok"})

		if err := c.SetGroupLights("g1", []string{"l1", "l2"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data := sentRequest(t, conn)["data"].(map[string]any)
		if len(data["lights"].([]any)) != 2 {
			t.Fatalf("unexpected request data: %v", data)
		}
	})

	t.Run("AddAPIKey", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"key": map[string]any{
				"name":         "test-key",
				"key":          "abcd1234",
				"created_at":   time.Now().Format(time.RFC3339Nano),
				"expires_at":   time.Now().Add(time.Hour * 24).Format(time.RFC3339Nano),
				"last_used_at": time.Time{}.Format(time.RFC3339Nano),
				"disabled":     false,
			},
		})

		key, err := c.AddAPIKey("test-key", "24h")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key["name"] != "test-key" || key["key"] != "abcd1234" {
			t.Fatalf("unexpected result: %v", key)
		}
	})

	t.Run("ListAPIKeys", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"keys": []any{
				map[string]any{"name": "key1", "key": "abcd1234", "disabled": false},
				map[string]any{"name": "key2", "key": "efgh5678", "disabled": true},
			},
		})

		keys, err := c.ListAPIKeys()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(keys) != 2 {
			t.Fatalf("expected 2 keys, got %d", len(keys))
		}
		if keys[0]["name"] != "key1" || keys[1]["name"] != "key2" {
			t.Fatalf("unexpected keys: %v", keys)
		}
	})

	t.Run("DeleteAPIKey", func(t *testing.T) {
		withResponse(t, map[string]any{"status": "ok"})

		if err := c.DeleteAPIKey("abcd1234"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("SetAPIKeyDisabledStatus", func(t *testing.T) {
		withResponse(t, map[string]any{
			"status": "ok",
			"key":    map[string]any{"name": "test-key", "key": "abcd1234", "disabled": true},
		})

		key, err := c.SetAPIKeyDisabledStatus("test-key", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key["name"] != "test-key" || key["disabled"] != true {
			t.Fatalf("unexpected result: %v", key)
		}
	})

	t.Run("GetLogLevel", func(t *testing.T) {
		withResponse(t, map[string]any{"status": "ok", "level": "info"})

		level, err := c.GetLogLevel()
		if err != nil || level != "info" {
			t.Fatalf("unexpected result: %q %v", level, err)
		}
	})

	t.Run("SetLogLevel", func(t *testing.T) {
		conn := withResponse(t, map[string]any{"status": "ok", "level": "debug"})

		if err := c.SetLogLevel("debug"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data := sentRequest(t, conn)["data"].(map[string]any)
		if data["level"] != "debug" {
			t.Fatalf("unexpected request data: %v", data)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		withResponse(t, map[string]any{"error": "light no-such not found: resource not found"})

		_, err := c.GetLight("no-such")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestNew_DefaultSocketPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Setenv("XDG_RUNTIME_DIR", "/tmp/xdg-test")
	c := New(logger, "")
	if c.socket != "/tmp/xdg-test/colorlightd.sock" {
		t.Fatalf("unexpected socket path: %s", c.socket)
	}

	c = New(logger, "/custom/path.sock")
	if c.socket != "/custom/path.sock" {
		t.Fatalf("unexpected socket path: %s", c.socket)
	}
}
