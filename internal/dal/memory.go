package dal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Billy-Davies-2/scorebored/internal/models"
)

// MemoryDAL implements RosterDAL in memory. Nothing survives a restart.
type MemoryDAL struct {
	mu       sync.RWMutex
	presets  map[string]models.TeamPreset
	settings models.Settings
}

func NewMemoryDAL() *MemoryDAL {
	m := &MemoryDAL{}
	m.reset()
	return m
}

func (m *MemoryDAL) reset() {
	m.presets = make(map[string]models.TeamPreset)
	for _, p := range getDefaultPresets() {
		m.presets[p.ID] = p
	}
	m.settings = models.DefaultSettings()
}

func (m *MemoryDAL) ListPresets() ([]models.TeamPreset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.TeamPreset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryDAL) GetPreset(id string) (*models.TeamPreset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.presets[id]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (m *MemoryDAL) SavePreset(preset *models.TeamPreset) (*models.TeamPreset, error) {
	if err := preparePreset(preset); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.presets[preset.ID] = *preset
	saved := *preset
	return &saved, nil
}

func (m *MemoryDAL) DeletePreset(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.presets[id]; !ok {
		return fmt.Errorf("preset %q: %w", id, ErrNotFound)
	}
	delete(m.presets, id)
	return nil
}

func (m *MemoryDAL) GetSettings() (*models.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.settings
	return &s, nil
}

func (m *MemoryDAL) SaveSettings(settings *models.Settings) error {
	if settings == nil {
		return fmt.Errorf("nil settings")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = *settings
	return nil
}

func (m *MemoryDAL) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

func (m *MemoryDAL) Close() error { return nil }
