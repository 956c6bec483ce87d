package accessory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/colorlightd/internal/errors"
)

// Ability is a device capability bound to a platform service. Implementations
// wire themselves up in Initialize and must tear all subscriptions down in
// Detach.
type Ability interface {
	Initialize(ctx context.Context) error
	Detach()
	Service() *Lightbulb
}

// Registry tracks live abilities keyed by accessory ID and owns their
// lifecycle.
type Registry struct {
	mu        sync.RWMutex
	abilities map[string]Ability
	logger    *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		abilities: make(map[string]Ability),
		logger:    logger,
	}
}

// Add initializes an ability and registers it under its service ID. An
// existing ability with the same ID is detached first.
func (r *Registry) Add(ctx context.Context, a Ability) error {
	id := a.Service().ID

	r.mu.Lock()
	old := r.abilities[id]
	delete(r.abilities, id)
	r.mu.Unlock()
	if old != nil {
		old.Detach()
	}

	if err := a.Initialize(ctx); err != nil {
		return errors.WrapErrorf(err, "failed to initialize accessory %s", id)
	}

	r.mu.Lock()
	r.abilities[id] = a
	r.mu.Unlock()

	r.logger.Info("accessory: registered", "id", id, "name", a.Service().Name)
	return nil
}

// Remove detaches and forgets the ability registered under id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	a, exists := r.abilities[id]
	delete(r.abilities, id)
	r.mu.Unlock()

	if !exists {
		return errors.NotFoundf("accessory %s not found", id)
	}
	a.Detach()
	r.logger.Info("accessory: removed", "id", id)
	return nil
}

// Get returns the ability registered under id.
func (r *Registry) Get(id string) (Ability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, exists := r.abilities[id]
	if !exists {
		return nil, errors.NotFoundf("accessory %s not found", id)
	}
	return a, nil
}

// List returns all registered abilities.
func (r *Registry) List() []Ability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Ability, 0, len(r.abilities))
	for _, a := range r.abilities {
		out = append(out, a)
	}
	return out
}

// Close detaches every registered ability.
func (r *Registry) Close() {
	r.mu.Lock()
	abilities := r.abilities
	r.abilities = make(map[string]Ability)
	r.mu.Unlock()

	for _, a := range abilities {
		a.Detach()
	}
}
