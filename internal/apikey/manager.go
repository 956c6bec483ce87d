// Package apikey implements API key lifecycle on top of the persisted
// configuration state.
package apikey

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/errors"
)

// Manager handles API key business logic.
//
// Concurrency contract: all mutations and persistence go through
// config.Config, which carries its own mutex. Returned *config.APIKey
// pointers must be treated as read-only. ValidateAPIKey mutates LastUsedAt
// through config, which handles synchronization.
type Manager struct {
	cfg *config.Config
	log *slog.Logger
}

// NewManager creates an API key manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg: cfg,
		log: logger,
	}
	logger.Info("loaded API keys from config", "count", len(cfg.GetAPIKeys()))
	return m
}

// CreateAPIKey generates a new API key, stores it, and saves the config.
// expiresIn of zero means the key never expires.
func (m *Manager) CreateAPIKey(name string, expiresIn time.Duration) (*config.APIKey, error) {
	for _, existing := range m.cfg.GetAPIKeys() {
		if existing.Name == name {
			return nil, errors.InvalidInputf("API key with name %q already exists", name)
		}
	}

	keyString, err := config.GenerateKey(config.DefaultKeyLength)
	if err != nil {
		return nil, errors.WrapErrorf(err, "failed to generate key string")
	}

	newKey := config.APIKey{
		Key:       keyString,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if expiresIn > 0 {
		newKey.ExpiresAt = time.Now().UTC().Add(expiresIn)
	}

	if err := m.cfg.AddAPIKey(newKey); err != nil {
		return nil, errors.WrapErrorf(err, "failed to add API key to config")
	}
	if err := m.cfg.Save(); err != nil {
		m.log.Error("failed to save config after adding API key", "name", name, "error", err)
		return nil, errors.WrapErrorf(err, "API key added to memory but failed to save to disk")
	}

	m.log.Info("apikey: created", "name", name, "key_prefix", newKey.Key[:4])
	return &newKey, nil
}

// ListAPIKeys returns all API keys.
func (m *Manager) ListAPIKeys() []config.APIKey {
	return m.cfg.GetAPIKeys()
}

// DeleteAPIKey removes an API key and saves the config.
func (m *Manager) DeleteAPIKey(key string) error {
	if !m.cfg.DeleteAPIKey(key) {
		return errors.NotFoundf("API key not found")
	}
	if err := m.cfg.Save(); err != nil {
		m.log.Error("failed to save config after deleting API key", "error", err)
		return errors.WrapErrorf(err, "API key deleted from memory but failed to save to disk")
	}
	m.log.Info("apikey: deleted", "key_prefix", key[:4])
	return nil
}

// ValidateAPIKey checks that an API key exists, is not disabled and has not
// expired. On success LastUsedAt is updated and persisted best-effort.
func (m *Manager) ValidateAPIKey(key string) (*config.APIKey, error) {
	apiKey, found := m.cfg.FindAPIKey(key)
	if !found {
		return nil, errors.NotFoundf("API key not found")
	}
	if apiKey.IsDisabled() {
		return nil, errors.InvalidInputf("API key is disabled")
	}
	if apiKey.IsExpired() {
		return nil, errors.InvalidInputf("API key has expired")
	}

	if err := m.cfg.UpdateAPIKeyLastUsed(key, time.Now().UTC()); err != nil {
		m.log.Error("failed to update last used timestamp for API key", "error", err)
		return apiKey, nil
	}
	if err := m.cfg.Save(); err != nil {
		// The key is still valid for this request; the stale LastUsedAt
		// only survives a daemon restart before the next successful save.
		m.log.Error("failed to save config after updating API key LastUsedAt", "error", err)
	}
	return apiKey, nil
}

// SetAPIKeyDisabledStatus updates the disabled status of an API key,
// matched by key or name, and saves the config.
func (m *Manager) SetAPIKeyDisabledStatus(keyOrName string, disabled bool) (*config.APIKey, error) {
	updatedKey, err := m.cfg.SetAPIKeyDisabledStatus(keyOrName, disabled)
	if err != nil {
		return nil, err
	}
	if err := m.cfg.Save(); err != nil {
		m.log.Error("failed to save config after setting API key disabled status", "error", err)
		return nil, errors.WrapErrorf(err, "API key status updated in memory but failed to save to disk")
	}
	m.log.Info("apikey: disabled status set", "key_or_name", keyOrName, "disabled", disabled)
	return updatedKey, nil
}
