package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whxxx2005-coder/xianyi/internal/exhibit"
)

func TestBeginAndCurrent(t *testing.T) {
	m := NewManager(t.TempDir())

	_, ok, err := m.Current()
	require.NoError(t, err)
	assert.False(t, ok)

	s, err := m.Begin()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Empty(t, s.Persona)
	assert.False(t, s.StartedAt.IsZero())

	cur, ok, err := m.Current()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s.ID, cur.ID)
}

func TestGetOrCreate(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.GetOrCreate()
	require.NoError(t, err)

	// A second call resumes rather than starting over.
	second, err := m.GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A new visit gets a new session.
	third, err := m.Begin()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestSetPersona(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Begin()
	require.NoError(t, err)

	updated, err := m.SetPersona(s.ID, exhibit.PersonaExplorer)
	require.NoError(t, err)
	assert.Equal(t, exhibit.PersonaExplorer, updated.Persona)

	// Persisted, not just in memory.
	loaded, err := m.Load(s.ID)
	require.NoError(t, err)
	assert.Equal(t, exhibit.PersonaExplorer, loaded.Persona)

	_, err = m.SetPersona(s.ID, "不存在")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	m := NewManager(t.TempDir())

	ids, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	a, err := m.Begin()
	require.NoError(t, err)
	b, err := m.Begin()
	require.NoError(t, err)

	ids, err = m.List()
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)
}

func TestResolveID(t *testing.T) {
	m := NewManager(t.TempDir())
	s, err := m.Begin()
	require.NoError(t, err)

	t.Run("full UUID passes through", func(t *testing.T) {
		id, err := m.ResolveID(s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, id)
	})

	t.Run("unique prefix resolves", func(t *testing.T) {
		id, err := m.ResolveID(s.ID[:8])
		require.NoError(t, err)
		assert.Equal(t, s.ID, id)
	})

	t.Run("too-short prefix rejected", func(t *testing.T) {
		_, err := m.ResolveID(s.ID[:3])
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("unknown prefix not found", func(t *testing.T) {
		_, err := m.ResolveID("zzzzzz")
		assert.True(t, IsNotFoundError(err))
	})
}

func TestAttributePersona(t *testing.T) {
	tests := []struct {
		name     string
		assigned exhibit.Persona
		played   []exhibit.Persona
		want     exhibit.Persona
	}{
		{
			name:     "nothing played falls back to assigned",
			assigned: exhibit.PersonaExplorer,
			played:   nil,
			want:     exhibit.PersonaExplorer,
		},
		{
			name:     "single distinct persona wins over assigned",
			assigned: exhibit.PersonaExplorer,
			played:   []exhibit.Persona{exhibit.PersonaProfessional, exhibit.PersonaProfessional},
			want:     exhibit.PersonaProfessional,
		},
		{
			name:     "multiple distinct personas fall back to assigned",
			assigned: exhibit.PersonaExplorer,
			played:   []exhibit.Persona{exhibit.PersonaProfessional, exhibit.PersonaInspiration},
			want:     exhibit.PersonaExplorer,
		},
		{
			name:     "assigned persona played alone",
			assigned: exhibit.PersonaFacilitator,
			played:   []exhibit.Persona{exhibit.PersonaFacilitator},
			want:     exhibit.PersonaFacilitator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttributePersona(tt.assigned, tt.played))
		})
	}
}
