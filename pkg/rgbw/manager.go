package rgbw

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/errors"
	"github.com/jmylchreest/colorlightd/internal/events"
)

// Manager tracks known controllers, runs their poll loops and removes
// devices that stop responding. Discovery and static configuration both
// feed devices into it through AddDevice.
type Manager struct {
	devices map[string]*managedDevice
	mu      sync.RWMutex

	logger       *slog.Logger
	bus          *events.Bus
	pollInterval time.Duration
}

type managedDevice struct {
	ctrl     *Controller
	record   DeviceRecord
	stopPoll context.CancelFunc
	unsub    func()
}

// NewManager creates a manager. bus may be nil; device lifecycle events are
// then dropped.
func NewManager(logger *slog.Logger, bus *events.Bus, pollInterval time.Duration) *Manager {
	if pollInterval < config.MinPollInterval {
		pollInterval = config.DefaultPollInterval
	}
	return &Manager{
		devices:      make(map[string]*managedDevice),
		logger:       logger,
		bus:          bus,
		pollInterval: pollInterval,
	}
}

// AddDevice registers a controller and starts its poll loop. Re-adding an
// existing ID refreshes the record and LastSeen but keeps the running
// controller, so discovery re-announcements do not reset subscriptions.
func (m *Manager) AddDevice(ctx context.Context, record DeviceRecord) (*Controller, error) {
	m.mu.Lock()
	if md, exists := m.devices[record.ID]; exists {
		md.record.IP = record.IP
		md.record.Port = record.Port
		md.record.LastSeen = time.Now()
		m.mu.Unlock()
		m.logger.Debug("device: already known, refreshed", "id", record.ID)
		return md.ctrl, nil
	}
	m.mu.Unlock()

	client := NewClient(record.IP.String(), record.Port, m.logger)

	// Fetch initial state outside the lock. A device that cannot answer is
	// still added; the poll loop will fill the state in once it responds.
	initial, err := client.GetState(ctx)
	if err != nil {
		errors.LogErrorAndReturn(m.logger, err, "failed to get initial state during AddDevice", "id", record.ID)
		initial = State{}
	}

	record.LastSeen = time.Now()
	ctrl := NewController(record.ID, record.Name, record.Mode, client, initial, m.logger)

	runCtx, cancel := context.WithCancel(context.Background())

	md := &managedDevice{
		ctrl:     ctrl,
		record:   record,
		stopPoll: cancel,
	}
	// Surface every per-field change as a bus event so the socket and
	// websocket layers can fan state out without subscribing per device.
	unsubs := make([]func(), 0, 4)
	for _, ev := range []string{EventOutput, EventBrightness, EventRGB, EventWhite} {
		unsubs = append(unsubs, ctrl.Subscribe(ev, func(State) { m.touch(record.ID) }))
	}
	md.unsub = func() {
		for _, u := range unsubs {
			u()
		}
	}

	m.mu.Lock()
	if existing, raced := m.devices[record.ID]; raced {
		m.mu.Unlock()
		cancel()
		md.unsub()
		return existing.ctrl, nil
	}
	m.devices[record.ID] = md
	m.mu.Unlock()

	go func() {
		ctrl.Poll(runCtx, m.pollInterval)
	}()

	m.logger.Info("device: added",
		slog.String("id", record.ID),
		slog.String("name", record.Name),
		slog.String("ip", record.IP.String()),
		slog.Int("port", record.Port),
		slog.String("mode", string(record.Mode)),
	)
	m.publish(events.DeviceDiscovered, record)
	return ctrl, nil
}

// RemoveDevice stops a device's poll loop and forgets it.
func (m *Manager) RemoveDevice(id string) error {
	m.mu.Lock()
	md, exists := m.devices[id]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("device %s not found", id)
	}
	delete(m.devices, id)
	m.mu.Unlock()

	md.stopPoll()
	md.unsub()
	m.logger.Info("device: removed", "id", id)
	m.publish(events.DeviceRemoved, md.record)
	return nil
}

// GetDevice returns the controller for id.
func (m *Manager) GetDevice(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, exists := m.devices[id]
	if !exists {
		return nil, errors.NotFoundf("device %s not found", id)
	}
	return md.ctrl, nil
}

// GetDevices returns controllers for all known devices.
func (m *Manager) GetDevices() map[string]*Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*Controller, len(m.devices))
	for id, md := range m.devices {
		out[id] = md.ctrl
	}
	return out
}

// GetRecord returns the bookkeeping record for id, with LastSeen taken from
// the controller's last successful communication.
func (m *Manager) GetRecord(id string) (DeviceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, exists := m.devices[id]
	if !exists {
		return DeviceRecord{}, errors.NotFoundf("device %s not found", id)
	}
	rec := md.record
	rec.LastSeen = md.ctrl.LastSeen()
	return rec, nil
}

// GetRecords returns records for all known devices.
func (m *Manager) GetRecords() []DeviceRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]DeviceRecord, 0, len(m.devices))
	for _, md := range m.devices {
		rec := md.record
		rec.LastSeen = md.ctrl.LastSeen()
		out = append(out, rec)
	}
	return out
}

// touch updates a device record's LastSeen when state changes arrive.
func (m *Manager) touch(id string) {
	m.mu.Lock()
	if md, ok := m.devices[id]; ok {
		md.record.LastSeen = time.Now()
	}
	m.mu.Unlock()
	m.publish(events.DeviceStateChanged, map[string]string{"id": id})
}

// StartCleanupWorker starts a background goroutine that removes devices not
// seen within timeout.
func (m *Manager) StartCleanupWorker(ctx context.Context, interval, timeout time.Duration) {
	if interval <= 0 {
		m.logger.Warn("cleanup interval must be positive, using default",
			"interval", interval,
			"default", config.DefaultCleanupInterval)
		interval = config.DefaultCleanupInterval
	}
	if timeout <= 0 {
		timeout = config.DefaultStateTimeout
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		m.logger.Info("device: cleanup worker started", "interval", interval, "timeout", timeout)
		for {
			select {
			case <-ctx.Done():
				m.logger.Info("device: cleanup worker stopped")
				return
			case <-ticker.C:
				m.cleanupStale(timeout)
			}
		}
	}()
}

// cleanupStale removes devices whose last successful communication is older
// than timeout.
func (m *Manager) cleanupStale(timeout time.Duration) {
	m.mu.RLock()
	stale := []string{}
	now := time.Now()
	for id, md := range m.devices {
		if now.Sub(md.ctrl.LastSeen()) > timeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		m.logger.Info("device: removing stale device", "id", id)
		if err := m.RemoveDevice(id); err != nil {
			m.logger.Debug("device: stale removal raced", "id", id, "error", err)
		}
	}
}

// Close stops all device poll loops and subscriptions without emitting
// removal events. Used at daemon shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	devices := m.devices
	m.devices = make(map[string]*managedDevice)
	m.mu.Unlock()

	for _, md := range devices {
		md.stopPoll()
		md.unsub()
	}
}

func (m *Manager) publish(t events.EventType, data any) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.NewEvent(t, data))
}
