package rgbw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colorlightd/internal/color"
)

// stateServer serves a mutable controller state and accepts writes.
type stateServer struct {
	mu    sync.Mutex
	ison  bool
	gain  int
	rgb   color.RGB
	white int
}

func (s *stateServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/color/0" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		q := r.URL.Query()
		if turn := q.Get("turn"); turn != "" {
			s.ison = turn == "on"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ison":  s.ison,
			"gain":  s.gain,
			"red":   s.rgb.R,
			"green": s.rgb.G,
			"blue":  s.rgb.B,
			"white": s.white,
		})
	}
}

func (s *stateServer) set(ison bool, gain int, rgb color.RGB, white int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ison = ison
	s.gain = gain
	s.rgb = rgb
	s.white = white
}

func newTestController(t *testing.T, srv *stateServer, mode color.Mode) (*Controller, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(srv.handler())
	t.Cleanup(server.Close)

	client := NewClient("ignored", 0, testLogger(), server.Client())
	client.baseURL = server.URL

	initial, err := client.GetState(context.Background())
	require.NoError(t, err)
	return NewController("dev-1", "bench", mode, client, initial, testLogger()), server
}

func TestControllerLocalEcho(t *testing.T) {
	srv := &stateServer{ison: false, gain: 50, rgb: color.RGB{R: 255, G: 0, B: 0}}
	ctrl, _ := newTestController(t, srv, color.ModeRGB)

	var gotOutput []bool
	var gotBrightness []int
	ctrl.Subscribe(EventOutput, func(s State) { gotOutput = append(gotOutput, s.Output) })
	ctrl.Subscribe(EventBrightness, func(s State) { gotBrightness = append(gotBrightness, *s.Brightness) })

	on := true
	brightness := 80
	require.NoError(t, ctrl.Set(context.Background(), Command{On: &on, Brightness: &brightness}))

	// The command succeeded, so the cached state reflects it without a poll
	// and change handlers fired for both fields.
	state := ctrl.State()
	assert.True(t, state.Output)
	assert.Equal(t, 80, *state.Brightness)
	assert.Equal(t, []bool{true}, gotOutput)
	assert.Equal(t, []int{80}, gotBrightness)
}

func TestControllerSetUnchangedFieldNoEvent(t *testing.T) {
	srv := &stateServer{ison: true, gain: 50}
	ctrl, _ := newTestController(t, srv, color.ModeRGB)

	fired := 0
	ctrl.Subscribe(EventOutput, func(State) { fired++ })

	on := true
	require.NoError(t, ctrl.Set(context.Background(), Command{On: &on}))
	assert.Zero(t, fired)
}

func TestControllerRefreshEmitsDiffs(t *testing.T) {
	srv := &stateServer{ison: false, gain: 50, rgb: color.RGB{R: 0, G: 0, B: 255}, white: 0}
	ctrl, _ := newTestController(t, srv, color.ModeRGBW)

	var events []string
	for _, ev := range []string{EventOutput, EventBrightness, EventRGB, EventWhite} {
		ev := ev
		ctrl.Subscribe(ev, func(State) { events = append(events, ev) })
	}

	// External actor changes output and color; gain and white stay put.
	srv.set(true, 50, color.RGB{R: 255, G: 255, B: 0}, 0)
	require.NoError(t, ctrl.Refresh(context.Background()))

	assert.ElementsMatch(t, []string{EventOutput, EventRGB}, events)
	state := ctrl.State()
	assert.True(t, state.Output)
	assert.Equal(t, color.RGB{R: 255, G: 255, B: 0}, *state.RGB)
}

func TestControllerWhiteEventOnlyInRGBWMode(t *testing.T) {
	srv := &stateServer{ison: true, gain: 50, white: 0}
	ctrl, _ := newTestController(t, srv, color.ModeRGB)

	fired := 0
	ctrl.Subscribe(EventWhite, func(State) { fired++ })

	srv.set(true, 50, color.RGB{}, 90)
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.Zero(t, fired)
}

func TestControllerUnsubscribe(t *testing.T) {
	srv := &stateServer{ison: false}
	ctrl, _ := newTestController(t, srv, color.ModeRGB)

	fired := 0
	unsub := ctrl.Subscribe(EventOutput, func(State) { fired++ })
	unsub()
	unsub() // second call is a no-op

	srv.set(true, 0, color.RGB{}, 0)
	require.NoError(t, ctrl.Refresh(context.Background()))
	assert.Zero(t, fired)
}

func TestControllerSetFailureLeavesStateUntouched(t *testing.T) {
	srv := &stateServer{ison: false, gain: 50}
	ctrl, server := newTestController(t, srv, color.ModeRGB)
	server.Close()

	fired := 0
	ctrl.Subscribe(EventOutput, func(State) { fired++ })

	on := true
	err := ctrl.Set(context.Background(), Command{On: &on})
	assert.Error(t, err)
	assert.False(t, ctrl.State().Output)
	assert.Zero(t, fired)
}

func TestControllerStateIsACopy(t *testing.T) {
	srv := &stateServer{ison: true, gain: 50, rgb: color.RGB{R: 1, G: 2, B: 3}}
	ctrl, _ := newTestController(t, srv, color.ModeRGB)

	state := ctrl.State()
	*state.Brightness = 99
	state.RGB.R = 99
	assert.Equal(t, 50, *ctrl.State().Brightness)
	assert.Equal(t, 1, ctrl.State().RGB.R)
}
