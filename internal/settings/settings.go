// Package settings persists small per-device preferences, most importantly
// the shared sync code, in a YAML file under the device data directory.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "settings.yml"

// Settings is the on-disk shape of the device preferences.
type Settings struct {
	// SyncCode is the user-chosen code shared across devices. Empty means
	// sync has not been set up on this device.
	SyncCode string `yaml:"sync_code,omitempty"`

	// Persona is the narration persona assigned to this device's visitor,
	// e.g. 探索者. Empty until the intake quiz assigns one.
	Persona string `yaml:"persona,omitempty"`
}

// Manager reads and writes the settings file. Loads always reflect the
// latest successful save; a device that has never saved gets zero-value
// settings rather than an error.
type Manager struct {
	path string
}

// NewManager creates a settings manager rooted at dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{path: filepath.Join(dataDir, fileName)}
}

// Load reads the settings file. A missing file yields empty settings.
func (m *Manager) Load() (Settings, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Save writes the settings file atomically: a crash mid-write leaves the
// previous file intact.
func (m *Manager) Save(s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

// SyncCode returns the stored sync code, or "" when none is set.
func (m *Manager) SyncCode() (string, error) {
	s, err := m.Load()
	if err != nil {
		return "", err
	}
	return s.SyncCode, nil
}

// SetSyncCode stores code, replacing any previous one. An empty code
// clears the setting.
func (m *Manager) SetSyncCode(code string) error {
	s, err := m.Load()
	if err != nil {
		return err
	}
	s.SyncCode = code
	return m.Save(s)
}

// SetPersona stores the assigned narration persona.
func (m *Manager) SetPersona(persona string) error {
	s, err := m.Load()
	if err != nil {
		return err
	}
	s.Persona = persona
	return m.Save(s)
}
