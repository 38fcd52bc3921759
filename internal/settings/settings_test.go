package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBeforeFirstSave(t *testing.T) {
	m := NewManager(t.TempDir())

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)

	code, err := m.SyncCode()
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestSyncCodeRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.SetSyncCode("family-2026"))
	code, err := m.SyncCode()
	require.NoError(t, err)
	assert.Equal(t, "family-2026", code)

	// Replacing the code is a plain overwrite.
	require.NoError(t, m.SetSyncCode("other-code"))
	code, err = m.SyncCode()
	require.NoError(t, err)
	assert.Equal(t, "other-code", code)

	// Clearing it is too.
	require.NoError(t, m.SetSyncCode(""))
	code, err = m.SyncCode()
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestSettingsSurviveReopen(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewManager(dir).SetSyncCode("family-2026"))
	require.NoError(t, NewManager(dir).SetPersona("探索者"))

	s, err := NewManager(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "family-2026", s.SyncCode)
	assert.Equal(t, "探索者", s.Persona)
}

func TestSetPersonaKeepsSyncCode(t *testing.T) {
	m := NewManager(t.TempDir())

	require.NoError(t, m.SetSyncCode("family-2026"))
	require.NoError(t, m.SetPersona("促进型"))

	s, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "family-2026", s.SyncCode)
	assert.Equal(t, "促进型", s.Persona)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yml"), []byte("{{not yaml"), 0o644))

	_, err := NewManager(dir).Load()
	assert.Error(t, err)
}
