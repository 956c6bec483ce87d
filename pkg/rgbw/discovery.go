package rgbw

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/jmylchreest/colorlightd/internal/color"
	"github.com/jmylchreest/colorlightd/internal/config"
)

const (
	serviceName = "_http._tcp"
	domain      = "local."
)

// validProductPrefixes lists the controller product identifiers we accept.
// Everything else announcing the service is skipped after the info probe.
var validProductPrefixes = []string{"SHCL", "SHRGBW"}

func isValidProduct(product string) bool {
	for _, prefix := range validProductPrefixes {
		if strings.HasPrefix(product, prefix) {
			return true
		}
	}
	return false
}

// modeForProduct maps a product identifier to its channel mode. RGBW
// controllers carry a dedicated white channel.
func modeForProduct(product string) color.Mode {
	if strings.HasPrefix(product, "SHRGBW") {
		return color.ModeRGBW
	}
	return color.ModeRGB
}

// DiscoverDevices browses mDNS for color-light controllers periodically and
// registers validated devices with the manager. The interval is clamped to
// the configured minimum. Each browse run lasts (interval - 1s) so runs do
// not overlap.
func (m *Manager) DiscoverDevices(ctx context.Context, interval time.Duration) error {
	if interval < config.MinDiscoveryInterval {
		m.logger.Warn("discovery interval too short, using minimum",
			"interval", interval,
			"minimum", config.MinDiscoveryInterval)
		interval = config.MinDiscoveryInterval
	}

	discover := func() error {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return fmt.Errorf("failed to create mdns resolver: %w", err)
		}

		browseCtx, cancel := context.WithTimeout(ctx, interval-time.Second)
		defer cancel()

		entries := make(chan *zeroconf.ServiceEntry, 10)
		if err := resolver.Browse(browseCtx, serviceName, domain, entries); err != nil {
			return fmt.Errorf("failed to start discovery: %w", err)
		}

		for entry := range entries {
			record, ok := m.validateEntry(browseCtx, entry)
			if !ok {
				continue
			}
			m.logger.Debug("discovery: validated controller",
				"id", record.ID, "name", record.Name, "addr", record.IP, "port", record.Port)
			if _, err := m.AddDevice(browseCtx, record); err != nil {
				m.logger.Warn("discovery: failed to add device", "id", record.ID, "error", err)
			}
		}
		return nil
	}

	if err := discover(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := discover(); err != nil {
				m.logger.Error("discovery failed", "error", err)
			}
		}
	}
}

// validateEntry probes an mDNS entry's info endpoint and builds a device
// record if it identifies as a supported controller.
func (m *Manager) validateEntry(ctx context.Context, entry *zeroconf.ServiceEntry) (DeviceRecord, bool) {
	if entry == nil || len(entry.AddrIPv4) == 0 || entry.Port == 0 {
		m.logger.Debug("discovery: skipping invalid service entry")
		return DeviceRecord{}, false
	}

	ip := entry.AddrIPv4[0]
	client := NewClient(ip.String(), entry.Port, m.logger)
	info, err := client.GetInfo(ctx)
	if err != nil {
		m.logger.Debug("discovery: info probe failed", "ip", ip, "port", entry.Port, "error", err)
		return DeviceRecord{}, false
	}
	if !isValidProduct(info.Product) {
		m.logger.Debug("discovery: not a supported controller",
			"product", info.Product, "name", entry.Instance, "addr", ip)
		return DeviceRecord{}, false
	}

	name := info.Name
	if name == "" {
		name = entry.Instance
	}
	id := info.MAC
	if id == "" {
		id = entry.Instance
	}
	return DeviceRecord{
		ID:       id,
		Name:     name,
		IP:       ip,
		Port:     entry.Port,
		Mode:     modeForProduct(info.Product),
		Product:  info.Product,
		Firmware: info.Firmware,
	}, true
}

// AddConfiguredDevices registers statically configured controllers that
// discovery would not find, probing each one for identity.
func (m *Manager) AddConfiguredDevices(ctx context.Context, devices []config.DeviceConfig) {
	for _, dc := range devices {
		record, err := recordFromConfig(ctx, dc, m.logger)
		if err != nil {
			m.logger.Warn("config: skipping unreachable device", "address", dc.Address, "error", err)
			continue
		}
		if _, err := m.AddDevice(ctx, record); err != nil {
			m.logger.Warn("config: failed to add device", "id", record.ID, "error", err)
		}
	}
}

// resolveIP parses or resolves a configured host to an IP, preferring IPv4.
// Returns nil when resolution fails, in which case the device is skipped.
func resolveIP(host string) net.IP {
	if ip := net.ParseIP(host); ip != nil {
		return ip
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		return nil
	}
	for _, addr := range addrs {
		if v4 := addr.To4(); v4 != nil {
			return v4
		}
	}
	if len(addrs) > 0 {
		return addrs[0]
	}
	return nil
}

func recordFromConfig(ctx context.Context, dc config.DeviceConfig, logger *slog.Logger) (DeviceRecord, error) {
	host, port, err := dc.HostPort()
	if err != nil {
		return DeviceRecord{}, err
	}

	client := NewClient(host, port, logger)
	info, err := client.GetInfo(ctx)
	if err != nil {
		return DeviceRecord{}, err
	}

	ip := resolveIP(host)
	if ip == nil {
		return DeviceRecord{}, fmt.Errorf("failed to resolve device host %q", host)
	}

	mode := color.Mode(dc.Mode)
	if !mode.Valid() {
		mode = modeForProduct(info.Product)
	}
	name := dc.Name
	if name == "" {
		name = info.Name
	}
	id := info.MAC
	if id == "" {
		id = dc.Address
	}
	return DeviceRecord{
		ID:       id,
		Name:     name,
		IP:       ip,
		Port:     port,
		Mode:     mode,
		Product:  info.Product,
		Firmware: info.Firmware,
	}, nil
}
