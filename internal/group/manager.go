// Package group manages named collections of lights that are controlled
// together.
package group

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jmylchreest/colorlightd/internal/accessory"
	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/errors"
	"github.com/jmylchreest/colorlightd/internal/events"
)

// LightProvider resolves a light ID to its registered ability.
type LightProvider interface {
	Get(id string) (accessory.Ability, error)
}

// Manager handles light group management. Groups are persisted in the
// daemon's state file and survive restarts; membership is validated against
// currently known lights on mutation.
type Manager struct {
	logger *slog.Logger
	lights LightProvider
	groups map[string]*Group
	mu     sync.RWMutex
	cfg    *config.Config
	bus    *events.Bus
}

// Group represents a group of lights that can be controlled together
type Group struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Lights []string `json:"lights"`
}

// MarshalJSON ensures that Lights is always marshaled as [] instead of null
func (g *Group) MarshalJSON() ([]byte, error) {
	type Alias Group
	tmp := &struct {
		*Alias
	}{
		Alias: (*Alias)(g),
	}
	if tmp.Lights == nil {
		tmp.Lights = []string{}
	}
	return json.Marshal(tmp)
}

// NewManager creates a group manager and loads persisted groups.
func NewManager(logger *slog.Logger, lights LightProvider, cfg *config.Config, bus *events.Bus) *Manager {
	manager := &Manager{
		logger: logger,
		lights: lights,
		groups: make(map[string]*Group),
		cfg:    cfg,
		bus:    bus,
	}
	manager.loadGroups()
	return manager
}

// loadGroups loads groups from the configuration state.
func (m *Manager) loadGroups() {
	persisted := m.cfg.GetGroups()
	if len(persisted) == 0 {
		m.logger.Debug("no groups found in config")
		return
	}

	groups := make(map[string]*Group, len(persisted))
	for _, g := range persisted {
		lights := g.Lights
		if lights == nil {
			lights = []string{}
		}
		groups[g.ID] = &Group{ID: g.ID, Name: g.Name, Lights: lights}
	}

	m.mu.Lock()
	m.groups = groups
	m.mu.Unlock()

	m.logger.Info("loaded groups from config", "count", len(groups))
}

// saveGroups writes groups back to the configuration state.
func (m *Manager) saveGroups() error {
	m.mu.RLock()
	persisted := make([]config.Group, 0, len(m.groups))
	for _, g := range m.groups {
		persisted = append(persisted, config.Group{ID: g.ID, Name: g.Name, Lights: g.Lights})
	}
	m.mu.RUnlock()

	m.cfg.SetGroups(persisted)
	if err := m.cfg.Save(); err != nil {
		return errors.LogErrorAndReturn(m.logger, err, "failed to save groups to config")
	}
	return nil
}

// CreateGroup creates a new group of lights
func (m *Manager) CreateGroup(name string, lightIDs []string) (*Group, error) {
	m.logger.Debug("creating group", "name", name, "lights", lightIDs)

	// Verify all lights exist before touching state.
	for _, id := range lightIDs {
		if _, err := m.lights.Get(id); err != nil {
			return nil, errors.NotFoundf("light not found: %s", id)
		}
	}
	if lightIDs == nil {
		lightIDs = []string{}
	}

	group := &Group{
		ID:     uuid.NewString(),
		Name:   name,
		Lights: lightIDs,
	}

	m.mu.Lock()
	m.groups[group.ID] = group
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return nil, err
	}

	m.publish(events.GroupCreated, group)
	m.logger.Info("group: created", "id", group.ID, "name", group.Name, "lights", group.Lights)
	return group, nil
}

// DeleteGroup removes a light group
func (m *Manager) DeleteGroup(id string) error {
	m.mu.Lock()
	group, exists := m.groups[id]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("group not found: %s", id)
	}
	delete(m.groups, id)
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return err
	}

	m.publish(events.GroupDeleted, group)
	m.logger.Info("group: deleted", "id", id)
	return nil
}

// GetGroup returns a group by ID
func (m *Manager) GetGroup(id string) (*Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	group, exists := m.groups[id]
	if !exists {
		return nil, errors.NotFoundf("group not found: %s", id)
	}
	if group.Lights == nil {
		group.Lights = []string{}
	}
	return group, nil
}

// GetGroups returns all groups
func (m *Manager) GetGroups() []*Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := make([]*Group, 0, len(m.groups))
	for _, group := range m.groups {
		if group.Lights == nil {
			group.Lights = []string{}
		}
		groups = append(groups, group)
	}
	return groups
}

// SetGroupLights sets the lights in a group
func (m *Manager) SetGroupLights(id string, lightIDs []string) error {
	for _, lightID := range lightIDs {
		if _, err := m.lights.Get(lightID); err != nil {
			return errors.NotFoundf("light not found: %s", lightID)
		}
	}
	if lightIDs == nil {
		lightIDs = []string{}
	}

	m.mu.Lock()
	group, exists := m.groups[id]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("group not found: %s", id)
	}
	group.Lights = lightIDs
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return err
	}
	m.publish(events.GroupUpdated, group)
	m.logger.Info("group: updated lights", "id", id, "lights", lightIDs)
	return nil
}

// AddLightsToGroup adds lights to a group
func (m *Manager) AddLightsToGroup(groupID string, lightIDs []string) error {
	m.mu.Lock()
	group, exists := m.groups[groupID]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("group not found: %s", groupID)
	}

	lightSet := make(map[string]bool)
	for _, id := range group.Lights {
		lightSet[id] = true
	}
	for _, id := range lightIDs {
		if !lightSet[id] {
			group.Lights = append(group.Lights, id)
			lightSet[id] = true
		}
	}
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return err
	}
	m.publish(events.GroupUpdated, group)
	m.logger.Info("group: added lights", "group", groupID, "lights", lightIDs)
	return nil
}

// RemoveLightsFromGroup removes lights from a group
func (m *Manager) RemoveLightsFromGroup(groupID string, lightIDs []string) error {
	m.mu.Lock()
	group, exists := m.groups[groupID]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("group not found: %s", groupID)
	}

	toRemove := make(map[string]bool)
	for _, id := range lightIDs {
		toRemove[id] = true
	}
	newLights := make([]string, 0, len(group.Lights))
	for _, id := range group.Lights {
		if !toRemove[id] {
			newLights = append(newLights, id)
		}
	}
	group.Lights = newLights
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return err
	}
	m.publish(events.GroupUpdated, group)
	m.logger.Info("group: removed lights", "group", groupID, "lights", lightIDs)
	return nil
}

// UpdateGroupName updates the name of an existing group
func (m *Manager) UpdateGroupName(groupID string, newName string) error {
	m.mu.Lock()
	group, exists := m.groups[groupID]
	if !exists {
		m.mu.Unlock()
		return errors.NotFoundf("group not found: %s", groupID)
	}
	group.Name = newName
	m.mu.Unlock()

	if err := m.saveGroups(); err != nil {
		return err
	}
	m.publish(events.GroupUpdated, group)
	m.logger.Info("group: renamed", "group", groupID, "name", newName)
	return nil
}

// SetGroupPower sets the power state for all lights in a group
func (m *Manager) SetGroupPower(groupID string, on bool) error {
	return m.forEachLight(groupID, func(a accessory.Ability) error {
		return a.Service().On.Set(on)
	})
}

// SetGroupBrightness sets the brightness for all lights in a group
func (m *Manager) SetGroupBrightness(groupID string, brightness int) error {
	return m.forEachLight(groupID, func(a accessory.Ability) error {
		return a.Service().Brightness.Set(brightness)
	})
}

// SetGroupHue sets the hue for all lights in a group
func (m *Manager) SetGroupHue(groupID string, hue int) error {
	return m.forEachLight(groupID, func(a accessory.Ability) error {
		return a.Service().Hue.Set(hue)
	})
}

// SetGroupSaturation sets the saturation for all lights in a group
func (m *Manager) SetGroupSaturation(groupID string, saturation int) error {
	return m.forEachLight(groupID, func(a accessory.Ability) error {
		return a.Service().Saturation.Set(saturation)
	})
}

// forEachLight applies fn to every light in the group concurrently and
// aggregates per-light failures. Lights that vanished since the group was
// saved count as failures but do not stop the rest.
func (m *Manager) forEachLight(groupID string, fn func(accessory.Ability) error) error {
	group, err := m.GetGroup(groupID)
	if err != nil {
		return err
	}

	errCh := make(chan error, len(group.Lights))
	var wg sync.WaitGroup
	for _, id := range group.Lights {
		wg.Add(1)
		go func(lightID string) {
			defer wg.Done()
			a, err := m.lights.Get(lightID)
			if err != nil {
				errCh <- fmt.Errorf("light %s: %w", lightID, err)
				return
			}
			if err := fn(a); err != nil {
				errCh <- fmt.Errorf("light %s: %w", lightID, err)
			}
		}(id)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors occurred: %v", errs)
	}
	return nil
}

// GetGroupsByName returns all groups with the given name
func (m *Manager) GetGroupsByName(name string) []*Group {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*Group
	for _, group := range m.groups {
		if group.Name == name {
			result = append(result, group)
		}
	}
	return result
}

// GetGroupsByKeys returns all groups matching the given comma-separated list of IDs or names.
// It matches by ID first, then by name (allowing multiple matches for names), and deduplicates results.
func (m *Manager) GetGroupsByKeys(keys string) ([]*Group, []string) {
	keyList := strings.Split(keys, ",")
	var matchedGroups []*Group
	var notFound []string
	groupSeen := make(map[string]bool)
	for _, key := range keyList {
		key = strings.TrimSpace(key)
		grp, err := m.GetGroup(key)
		if err == nil {
			if !groupSeen[grp.ID] {
				matchedGroups = append(matchedGroups, grp)
				groupSeen[grp.ID] = true
			}
			continue
		}
		byName := m.GetGroupsByName(key)
		if len(byName) > 0 {
			for _, g := range byName {
				if !groupSeen[g.ID] {
					matchedGroups = append(matchedGroups, g)
					groupSeen[g.ID] = true
				}
			}
		} else {
			notFound = append(notFound, key)
		}
	}
	return matchedGroups, notFound
}

func (m *Manager) publish(t events.EventType, group *Group) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.NewEvent(t, group))
}
