// Package server wires the daemon together: device discovery, the accessory
// registry, and the socket and HTTP control APIs.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/colorlightd/internal/accessory"
	"github.com/jmylchreest/colorlightd/internal/apikey"
	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/events"
	"github.com/jmylchreest/colorlightd/internal/group"
	"github.com/jmylchreest/colorlightd/internal/http/handlers"
	"github.com/jmylchreest/colorlightd/internal/http/mw"
	"github.com/jmylchreest/colorlightd/internal/http/routes"
	"github.com/jmylchreest/colorlightd/internal/lights"
	"github.com/jmylchreest/colorlightd/internal/utils"
	"github.com/jmylchreest/colorlightd/internal/ws"
	"github.com/jmylchreest/colorlightd/pkg/rgbw"
)

// BuildInfo carries version details shown on the version endpoints.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Server manages the colorlightd daemon: device manager, accessory registry,
// groups, API keys, and the socket/HTTP APIs.
type Server struct {
	logger        *slog.Logger
	cfg           *config.Config
	build         BuildInfo
	devices       *rgbw.Manager
	registry      *accessory.Registry
	lights        lights.Service
	groups        *group.Manager
	apikeyManager *apikey.Manager
	eventBus      *events.Bus

	socketPath string
	listener   net.Listener
	httpServer *http.Server
	shutdown   chan struct{}
	wg         sync.WaitGroup
	rootCtx    context.Context
	rootCancel context.CancelFunc
	unsubBus   func()
}

// New creates a new server instance with all managers wired to the shared
// event bus.
func New(logger *slog.Logger, cfg *config.Config, build BuildInfo) *Server {
	eventBus := events.NewBus()
	deviceManager := rgbw.NewManager(logger, eventBus,
		time.Duration(cfg.Discovery.PollInterval)*time.Second)
	registry := accessory.NewRegistry(logger)
	lightService := lights.NewManager(deviceManager, registry, logger)
	groupManager := group.NewManager(logger, registry, cfg, eventBus)
	apikeyMgr := apikey.NewManager(cfg, logger)

	rootCtx, rootCancel := context.WithCancel(context.Background())

	return &Server{
		logger:        logger,
		cfg:           cfg,
		build:         build,
		devices:       deviceManager,
		registry:      registry,
		lights:        lightService,
		groups:        groupManager,
		apikeyManager: apikeyMgr,
		eventBus:      eventBus,
		socketPath:    cfg.Server.UnixSocket,
		shutdown:      make(chan struct{}),
		rootCtx:       rootCtx,
		rootCancel:    rootCancel,
	}
}

// Devices exposes the device manager, mainly for tests.
func (s *Server) Devices() *rgbw.Manager { return s.devices }

// Start begins server operations: accessory wiring, discovery, the Unix
// socket listener and the HTTP API server.
func (s *Server) Start() error {
	s.logger.Info("Starting colorlightd server")

	// Bind accessories to device lifecycle events. Every discovered device
	// gets a lightbulb service; removal detaches it.
	s.unsubBus = s.eventBus.Subscribe(func(e events.Event) {
		switch e.Type {
		case events.DeviceDiscovered:
			var rec rgbw.DeviceRecord
			if err := json.Unmarshal(e.Data, &rec); err != nil {
				s.logger.Error("failed to decode device record from event", "error", err)
				return
			}
			s.attachAccessory(rec)
		case events.DeviceRemoved:
			var rec rgbw.DeviceRecord
			if err := json.Unmarshal(e.Data, &rec); err != nil {
				s.logger.Error("failed to decode device record from event", "error", err)
				return
			}
			if err := s.registry.Remove(rec.ID); err != nil {
				s.logger.Debug("accessory already removed", "id", rec.ID)
			}
		}
	})

	// Start cleanup worker for stale devices
	workerCtx, cancelWorker := context.WithCancel(s.rootCtx)
	go func() {
		<-s.shutdown
		cancelWorker()
	}()
	s.devices.StartCleanupWorker(workerCtx,
		time.Duration(s.cfg.Discovery.CleanupInterval)*time.Second,
		time.Duration(s.cfg.Discovery.CleanupTimeout)*time.Second)

	// Register statically configured devices, then start mDNS discovery.
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in discovery", "recover", r)
			}
		}()
		s.devices.AddConfiguredDevices(s.rootCtx, s.cfg.Devices)
		if s.cfg.Discovery.Enabled {
			interval := time.Duration(s.cfg.Discovery.Interval) * time.Second
			if err := s.devices.DiscoverDevices(s.rootCtx, interval); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("discovery stopped", "error", err)
			}
		}
	})

	// Ensure socket directory exists
	sockDir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(sockDir, 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory %s: %w", sockDir, err)
	}

	// Remove existing socket file if it exists
	if _, err := os.Stat(s.socketPath); err == nil {
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("failed to remove existing socket file %s: %w", s.socketPath, err)
		}
	}

	var err error
	s.listener, err = net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket %s: %w", s.socketPath, err)
	}
	s.logger.Info("Listening on Unix socket", "path", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections()

	if s.cfg.API.ListenAddress != "" {
		s.startHTTP()
	}

	return nil
}

// startHTTP builds the Chi/Huma stack and starts the HTTP API server.
func (s *Server) startHTTP() {
	s.logger.Info("Starting HTTP API server", "address", s.cfg.API.ListenAddress)

	lightHandler := &handlers.LightHandler{Lights: s.lights}
	groupHandler := &handlers.GroupHandler{Groups: s.groups}
	apiKeyHandler := &handlers.APIKeyHandler{Manager: s.apikeyManager}
	loggingHandler := &handlers.LoggingHandler{Logger: s.logger}

	// Rate limiting runs at Chi level (before auth) to protect against
	// brute-force key guessing.
	router := chi.NewRouter()
	router.Use(mw.RequestLogging(s.logger))
	router.Use(mw.RateLimitByIP(mw.RateLimitConfig{RequestsPerMinute: s.cfg.API.RequestsPerMinute}))

	humaConfig := routes.NewHumaConfig(s.build.Version, "")
	api := humachi.New(router, humaConfig)

	// Huma-level auth middleware checks each operation's Security field.
	// Public routes (health, version, OpenAPI docs) have no Security set
	// and pass through unauthenticated.
	api.UseMiddleware(mw.HumaAuth(api, s.logger, s.apikeyManager))

	routes.Register(api, &routes.Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionHandler(s.build.Version, s.build.Commit, s.build.Date),
		Light:        lightHandler,
		Group:        groupHandler,
		APIKey:       apiKeyHandler,
		Logging:      loggingHandler,
	})

	// Override the group state route with a raw handler for 207 Multi-Status
	// support. Huma doesn't natively support 207, so this route bypasses it;
	// auth is applied via router.With(). The Huma registration above still
	// provides OpenAPI documentation.
	rawAuth := mw.RawAPIKeyAuth(s.logger, s.apikeyManager)
	router.With(rawAuth).Put("/api/v1/groups/{id}/state", groupHandler.SetGroupStateRaw(api))

	// WebSocket hub broadcasts bus events to connected clients.
	wsHub := ws.NewHub(s.logger, s.eventBus)
	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in WebSocket hub", "recover", r)
			}
		}()
		wsHub.Run(s.rootCtx)
	})
	router.With(rawAuth).Get("/api/v1/ws", ws.Handler(wsHub, s.logger))

	s.httpServer = &http.Server{
		Addr:         s.cfg.API.ListenAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in HTTP server goroutine", "recover", r)
			}
		}()
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server failed", "error", err)
		}
		s.logger.Info("HTTP server stopped")
	})
}

// attachAccessory builds a lightbulb accessory for a discovered device and
// registers it.
func (s *Server) attachAccessory(rec rgbw.DeviceRecord) {
	ctrl, err := s.devices.GetDevice(rec.ID)
	if err != nil {
		s.logger.Error("discovered device vanished before accessory setup", "id", rec.ID, "error", err)
		return
	}

	name := rec.Name
	if name == "" {
		name = rec.ID
	}
	service := accessory.NewLightbulb(rec.ID, name, s.eventBus)
	light := accessory.NewColorLight(ctrl, rec.Mode, service, s.logger)
	if err := s.registry.Add(s.rootCtx, light); err != nil {
		s.logger.Error("failed to register accessory", "id", rec.ID, "error", err)
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	s.logger.Info("Shutting down colorlightd server")
	s.rootCancel()
	close(s.shutdown)

	if s.listener != nil {
		s.logger.Info("Closing Unix socket listener")
		s.listener.Close()
	}

	if s.httpServer != nil {
		s.logger.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown failed", "error", err)
		}
	}

	s.logger.Info("Waiting for services to stop...")
	s.wg.Wait()

	if s.unsubBus != nil {
		s.unsubBus()
	}
	s.devices.Close()
	s.registry.Close()
	s.logger.Info("colorlightd server shut down gracefully")
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in acceptConnections", "recover", r)
		}
	}()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.logger.Info("Socket listener shutting down")
				return
			default:
				s.logger.Error("Failed to accept connection", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in connection handler", "recover", r)
		}
	}()

	ctx, cancel := context.WithCancel(s.rootCtx)
	defer cancel()

	go func() {
		select {
		case <-s.shutdown:
			if cconn, ok := conn.(*net.UnixConn); ok {
				cconn.CloseRead() // unblock pending reads for shutdown
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "use of closed network connection") {
				s.logger.Debug("Client disconnected")
			} else {
				s.logger.Error("Failed to read from connection", "error", err)
			}
			return
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Error("Failed to unmarshal request", "error", err, "request", string(line))
			s.sendError(conn, "", fmt.Sprintf("invalid JSON request: %s", err))
			continue
		}

		action, _ := req["action"].(string)
		id, _ := req["id"].(string)             // Optional request ID for client tracking
		data, _ := req["data"].(map[string]any) // Data payload

		s.logger.Debug("Received request", "action", action, "id", id, "data", data)
		s.dispatch(conn, action, id, data)
	}
}

// dispatch routes a single socket request to its handler.
func (s *Server) dispatch(conn net.Conn, action, id string, data map[string]any) {
	switch action {
	case "ping":
		s.sendResponse(conn, id, map[string]any{"message": "pong"})

	case "health":
		s.sendResponse(conn, id, map[string]any{"health": "ok"})

	case "version":
		s.sendResponse(conn, id, map[string]any{
			"version": s.build.Version,
			"commit":  s.build.Commit,
			"date":    s.build.Date,
		})

	case "list_lights":
		all := s.lights.GetLights()
		result := make(map[string]any, len(all))
		for lightID, light := range all {
			m, err := toMap(light)
			if err != nil {
				s.logger.Error("Failed to encode light for socket response", "id", lightID, "error", err)
				continue
			}
			result[lightID] = m
		}
		s.sendResponse(conn, id, map[string]any{"lights": result})

	case "get_light":
		lightID, _ := data["id"].(string)
		if lightID == "" {
			s.sendError(conn, id, "missing light ID for get_light")
			return
		}
		light, err := s.lights.GetLight(lightID)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to get light %s: %s", lightID, err))
			return
		}
		m, err := toMap(light)
		if err != nil {
			s.logger.Error("Failed to encode light for socket response", "id", lightID, "error", err)
			s.sendError(conn, id, "internal error encoding light")
			return
		}
		s.sendResponse(conn, id, map[string]any{"light": m})

	case "set_light_state":
		lightID, _ := data["id"].(string)
		if lightID == "" {
			s.sendError(conn, id, "missing id for set_light_state")
			return
		}
		props := propsFromData(data)
		if len(props) == 0 {
			s.sendError(conn, id, "missing property/value or on/brightness/hue/saturation for set_light_state")
			return
		}
		var errs []string
		for _, p := range props {
			if err := s.setLightProperty(lightID, p.name, p.value); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			s.sendError(conn, id, fmt.Sprintf("failed to set light %s state: %s", lightID, strings.Join(errs, "; ")))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "create_group":
		name, _ := data["name"].(string)
		if name == "" {
			s.sendError(conn, id, "missing name for create_group")
			return
		}
		lightIDs := stringSliceFromData(data, "lights")
		grp, err := s.groups.CreateGroup(name, lightIDs)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to create group: %s", err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"group": grp})

	case "delete_group":
		groupID, _ := data["id"].(string)
		if groupID == "" {
			s.sendError(conn, id, "missing group ID for delete_group")
			return
		}
		if err := s.groups.DeleteGroup(groupID); err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to delete group %s: %s", groupID, err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "get_group":
		groupID, _ := data["id"].(string)
		if groupID == "" {
			s.sendError(conn, id, "missing group ID for get_group")
			return
		}
		grp, err := s.groups.GetGroup(groupID)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to get group %s: %s", groupID, err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"group": groupToMap(grp)})

	case "list_groups":
		groups := s.groups.GetGroups()
		groupList := make([]map[string]any, 0, len(groups))
		for _, g := range groups {
			groupList = append(groupList, groupToMap(g))
		}
		s.sendResponse(conn, id, map[string]any{"groups": groupList})

	case "set_group_lights":
		groupID, _ := data["id"].(string)
		if groupID == "" {
			s.sendError(conn, id, "missing group ID for set_group_lights")
			return
		}
		lightIDs := stringSliceFromData(data, "lights")
		if err := s.groups.SetGroupLights(groupID, lightIDs); err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to set lights for group %s: %s", groupID, err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "set_group_state":
		groupKeys, _ := data["id"].(string)
		if groupKeys == "" {
			s.sendError(conn, id, "missing id for set_group_state")
			return
		}
		matchedGroups, notFound := s.groups.GetGroupsByKeys(groupKeys)
		if len(matchedGroups) == 0 {
			s.sendError(conn, id, "no groups found for: "+strings.Join(notFound, ", "))
			return
		}
		props := propsFromData(data)
		if len(props) == 0 {
			s.sendError(conn, id, "missing property/value or on/brightness/hue/saturation for set_group_state")
			return
		}
		var errs []string
		for _, grp := range matchedGroups {
			for _, p := range props {
				if err := s.setGroupProperty(grp.ID, p.name, p.value); err != nil {
					errs = append(errs, fmt.Sprintf("group %s: %s", grp.ID, err))
				}
			}
		}
		if len(errs) > 0 {
			s.sendResponse(conn, id, map[string]any{"status": "partial", "errors": errs})
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "apikey_add":
		name, _ := data["name"].(string)
		if name == "" {
			s.sendError(conn, id, "missing name for apikey_add")
			return
		}
		expiresInStr, _ := data["expires_in"].(string)
		var expiresIn time.Duration
		if expiresInStr != "" {
			// Try Go duration string first (e.g., "720h"), then bare seconds.
			d, err := time.ParseDuration(expiresInStr)
			if err != nil {
				expiresInSecs, err2 := strconv.ParseFloat(expiresInStr, 64)
				if err2 != nil {
					s.sendError(conn, id, fmt.Sprintf("invalid expires_in format (use Go duration like '720h' or seconds): %s", err))
					return
				}
				expiresIn = time.Duration(expiresInSecs * float64(time.Second))
			} else {
				expiresIn = d
			}
		}
		apiKey, err := s.apikeyManager.CreateAPIKey(name, expiresIn)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to create API key: %s", err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok", "key": apiKeyToMap(apiKey)})

	case "apikey_list":
		keys := s.apikeyManager.ListAPIKeys()
		responseKeys := make([]map[string]any, len(keys))
		for i := range keys {
			responseKeys[i] = apiKeyToMap(&keys[i])
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok", "keys": responseKeys})

	case "apikey_delete":
		key, _ := data["key"].(string)
		if key == "" {
			s.sendError(conn, id, "missing key for apikey_delete")
			return
		}
		if err := s.apikeyManager.DeleteAPIKey(key); err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to delete API key: %s", err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok"})

	case "apikey_set_disabled_status":
		keyOrName, _ := data["key_or_name"].(string)
		if keyOrName == "" {
			s.sendError(conn, id, "missing key_or_name for apikey_set_disabled_status")
			return
		}

		// Accept disabled as bool or string for compatibility with both
		// HTTP and legacy socket clients.
		var disabled bool
		switch v := data["disabled"].(type) {
		case bool:
			disabled = v
		case string:
			var err error
			disabled, err = strconv.ParseBool(v)
			if err != nil {
				s.sendError(conn, id, fmt.Sprintf("invalid boolean value for disabled state: %s", err))
				return
			}
		default:
			s.sendError(conn, id, "missing or invalid disabled state for apikey_set_disabled_status")
			return
		}

		updatedKey, err := s.apikeyManager.SetAPIKeyDisabledStatus(keyOrName, disabled)
		if err != nil {
			s.sendError(conn, id, fmt.Sprintf("failed to set API key disabled status: %s", err))
			return
		}
		s.sendResponse(conn, id, map[string]any{"status": "ok", "key": apiKeyToMap(updatedKey)})

	case "get_level":
		s.sendResponse(conn, id, map[string]any{"level": utils.LevelToString(utils.Level())})

	case "set_level":
		level, _ := data["level"].(string)
		if level == "" {
			s.sendError(conn, id, "missing level for set_level")
			return
		}
		if !utils.IsValidLogLevel(level) {
			s.sendError(conn, id, fmt.Sprintf("invalid log level %q; must be debug, info, warn, or error", level))
			return
		}
		utils.SetLevel(utils.GetLogLevel(level))
		s.logger.Info("Log level changed via socket", "level", level)
		s.sendResponse(conn, id, map[string]any{"level": level})

	default:
		s.logger.Warn("received unknown action", "action", action)
		s.sendError(conn, id, "unknown action: "+action)
	}
}

func (s *Server) sendResponse(conn net.Conn, id string, data map[string]any) {
	response := map[string]any{"status": "ok"}
	if id != "" {
		response["id"] = id
	}
	maps.Copy(response, data)
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send response", "error", err)
	}
}

func (s *Server) sendError(conn net.Conn, id string, message string) {
	s.logger.Error("Sending error response to client", "id", id, "message", message)
	response := map[string]any{"error": message}
	if id != "" {
		response["id"] = id
	}
	if err := json.NewEncoder(conn).Encode(response); err != nil {
		s.logger.Error("Failed to send error response", "error", err)
	}
}

// setLightProperty sets a single characteristic on a light by name.
func (s *Server) setLightProperty(lightID, property string, value any) error {
	switch property {
	case "on":
		onVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid value type for 'on', expected boolean")
		}
		return s.lights.SetLightPower(lightID, onVal)
	case "brightness":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'brightness', expected number")
		}
		return s.lights.SetLightBrightness(lightID, int(v))
	case "hue":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'hue', expected number")
		}
		return s.lights.SetLightHue(lightID, int(v))
	case "saturation":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'saturation', expected number")
		}
		return s.lights.SetLightSaturation(lightID, int(v))
	default:
		return fmt.Errorf("unknown property: %s", property)
	}
}

// setGroupProperty sets a single characteristic on a group by name.
func (s *Server) setGroupProperty(groupID, property string, value any) error {
	switch property {
	case "on":
		onVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid value type for 'on', expected boolean")
		}
		return s.groups.SetGroupPower(groupID, onVal)
	case "brightness":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'brightness', expected number")
		}
		return s.groups.SetGroupBrightness(groupID, int(v))
	case "hue":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'hue', expected number")
		}
		return s.groups.SetGroupHue(groupID, int(v))
	case "saturation":
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("invalid value type for 'saturation', expected number")
		}
		return s.groups.SetGroupSaturation(groupID, int(v))
	default:
		return fmt.Errorf("unknown property: %s", property)
	}
}

type propVal struct {
	name  string
	value any
}

// propsFromData extracts the characteristics a request wants to set. Both
// single-property (property+value) and multi-property (on, brightness, hue,
// saturation) request shapes are accepted.
func propsFromData(data map[string]any) []propVal {
	property, _ := data["property"].(string)
	value := data["value"]
	if property != "" && value != nil {
		return []propVal{{property, value}}
	}

	var props []propVal
	for _, name := range []string{"on", "brightness", "hue", "saturation"} {
		if v, ok := data[name]; ok {
			props = append(props, propVal{name, v})
		}
	}
	return props
}

// stringSliceFromData extracts a []string from a JSON array field.
func stringSliceFromData(data map[string]any, key string) []string {
	raw, _ := data[key].([]any)
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i], _ = v.(string)
	}
	return out
}

// toMap round-trips a value through JSON to a map for socket responses.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func groupToMap(g *group.Group) map[string]any {
	lightIDs := g.Lights
	if lightIDs == nil {
		lightIDs = []string{}
	}
	return map[string]any{"id": g.ID, "name": g.Name, "lights": lightIDs}
}

func apiKeyToMap(k *config.APIKey) map[string]any {
	return map[string]any{
		"name":         k.Name,
		"key":          k.Key,
		"created_at":   k.CreatedAt.Format(time.RFC3339Nano),
		"expires_at":   k.ExpiresAt.Format(time.RFC3339Nano),
		"last_used_at": k.LastUsedAt.Format(time.RFC3339Nano),
		"disabled":     k.IsDisabled(),
	}
}
