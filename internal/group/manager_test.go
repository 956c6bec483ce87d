package group

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/colorlightd/internal/accessory"
	"github.com/jmylchreest/colorlightd/internal/config"
	"github.com/jmylchreest/colorlightd/internal/errors"
)

// stubAbility records characteristic writes without a real device behind it.
type stubAbility struct {
	service *accessory.Lightbulb

	mu   sync.Mutex
	sets []string
	fail bool
}

func newStubAbility(id string) *stubAbility {
	s := &stubAbility{service: accessory.NewLightbulb(id, id, nil)}
	s.service.On.OnSet(func(v bool) error { return s.record(fmt.Sprintf("on=%v", v)) })
	s.service.Brightness.OnSet(func(v int) error { return s.record(fmt.Sprintf("brightness=%d", v)) })
	s.service.Hue.OnSet(func(v int) error { return s.record(fmt.Sprintf("hue=%d", v)) })
	s.service.Saturation.OnSet(func(v int) error { return s.record(fmt.Sprintf("saturation=%d", v)) })
	return s
}

func (s *stubAbility) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("device unreachable")
	}
	s.sets = append(s.sets, op)
	return nil
}

func (s *stubAbility) Initialize(context.Context) error { return nil }
func (s *stubAbility) Detach()                          {}
func (s *stubAbility) Service() *accessory.Lightbulb    { return s.service }

type stubProvider struct {
	abilities map[string]*stubAbility
}

func (p *stubProvider) Get(id string) (accessory.Ability, error) {
	a, exists := p.abilities[id]
	if !exists {
		return nil, errors.NotFoundf("accessory %s not found", id)
	}
	return a, nil
}

func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	cfg, err := config.Load(filepath.Join(tmpDir, "test.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

func testManager(t *testing.T, ids ...string) (*Manager, *stubProvider) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := &stubProvider{abilities: make(map[string]*stubAbility)}
	for _, id := range ids {
		provider.abilities[id] = newStubAbility(id)
	}
	return NewManager(logger, provider, setupTestConfig(t), nil), provider
}

func TestCreateAndGetGroup(t *testing.T) {
	m, _ := testManager(t, "light-1", "light-2")

	group, err := m.CreateGroup("desk", []string{"light-1", "light-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "desk", group.Name)
	assert.Equal(t, []string{"light-1", "light-2"}, group.Lights)

	got, err := m.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, group, got)

	assert.Len(t, m.GetGroups(), 1)
}

func TestCreateGroupUnknownLight(t *testing.T) {
	m, _ := testManager(t, "light-1")

	_, err := m.CreateGroup("desk", []string{"light-1", "missing"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, m.GetGroups())
}

func TestDeleteGroup(t *testing.T) {
	m, _ := testManager(t, "light-1")
	group, err := m.CreateGroup("desk", []string{"light-1"})
	require.NoError(t, err)

	require.NoError(t, m.DeleteGroup(group.ID))
	_, err = m.GetGroup(group.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(m.DeleteGroup(group.ID)))
}

func TestGroupMembership(t *testing.T) {
	m, _ := testManager(t, "light-1", "light-2", "light-3")
	group, err := m.CreateGroup("desk", []string{"light-1"})
	require.NoError(t, err)

	require.NoError(t, m.AddLightsToGroup(group.ID, []string{"light-2", "light-2"}))
	got, err := m.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"light-1", "light-2"}, got.Lights)

	require.NoError(t, m.RemoveLightsFromGroup(group.ID, []string{"light-1"}))
	got, err = m.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"light-2"}, got.Lights)

	require.NoError(t, m.SetGroupLights(group.ID, []string{"light-3"}))
	got, err = m.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"light-3"}, got.Lights)

	require.NoError(t, m.UpdateGroupName(group.ID, "shelf"))
	got, err = m.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, "shelf", got.Name)
}

func TestGroupStateFanOut(t *testing.T) {
	m, provider := testManager(t, "light-1", "light-2")
	group, err := m.CreateGroup("desk", []string{"light-1", "light-2"})
	require.NoError(t, err)

	require.NoError(t, m.SetGroupPower(group.ID, true))
	require.NoError(t, m.SetGroupBrightness(group.ID, 40))
	require.NoError(t, m.SetGroupHue(group.ID, 200))
	require.NoError(t, m.SetGroupSaturation(group.ID, 60))

	for _, id := range []string{"light-1", "light-2"} {
		a := provider.abilities[id]
		assert.ElementsMatch(t,
			[]string{"on=true", "brightness=40", "hue=200", "saturation=60"},
			a.sets, "light %s", id)
	}
}

func TestGroupStatePartialFailure(t *testing.T) {
	m, provider := testManager(t, "light-1", "light-2")
	group, err := m.CreateGroup("desk", []string{"light-1", "light-2"})
	require.NoError(t, err)

	provider.abilities["light-2"].fail = true
	err = m.SetGroupPower(group.ID, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "light-2")

	// The healthy light was still updated.
	assert.Equal(t, []string{"on=true"}, provider.abilities["light-1"].sets)
}

func TestGroupsPersistAcrossManagers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	provider := &stubProvider{abilities: map[string]*stubAbility{"light-1": newStubAbility("light-1")}}

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test.yaml")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	m1 := NewManager(logger, provider, cfg, nil)
	group, err := m1.CreateGroup("desk", []string{"light-1"})
	require.NoError(t, err)

	_, err = os.Stat(cfgPath)
	require.NoError(t, err)

	cfg2, err := config.Load(cfgPath)
	require.NoError(t, err)
	m2 := NewManager(logger, provider, cfg2, nil)

	got, err := m2.GetGroup(group.ID)
	require.NoError(t, err)
	assert.Equal(t, "desk", got.Name)
	assert.Equal(t, []string{"light-1"}, got.Lights)
}

func TestGetGroupsByKeys(t *testing.T) {
	m, _ := testManager(t, "light-1")
	g1, err := m.CreateGroup("desk", []string{"light-1"})
	require.NoError(t, err)
	g2, err := m.CreateGroup("shelf", []string{"light-1"})
	require.NoError(t, err)

	groups, notFound := m.GetGroupsByKeys(fmt.Sprintf("%s, shelf, nope", g1.ID))
	assert.Len(t, groups, 2)
	ids := []string{groups[0].ID, groups[1].ID}
	assert.ElementsMatch(t, []string{g1.ID, g2.ID}, ids)
	assert.Equal(t, []string{"nope"}, notFound)
}
