// Package session tracks visitor sessions: one per visit, identified by
// UUID, carrying the persona the intake quiz assigned. Sessions are stored
// as one JSON file each under {data_dir}/sessions, with a pointer file
// naming the active one.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/whxxx2005-coder/xianyi/internal/exhibit"
)

const currentPointer = "current"

// Session is one visitor's visit.
type Session struct {
	ID        string          `json:"session_id"`
	Persona   exhibit.Persona `json:"persona,omitempty"` // Empty until the quiz assigns one
	StartedAt time.Time       `json:"started_at"`
}

// Manager stores sessions under one device data directory.
type Manager struct {
	dir string
}

// NewManager creates a session manager rooted at dataDir.
func NewManager(dataDir string) *Manager {
	return &Manager{dir: filepath.Join(dataDir, "sessions")}
}

// Begin starts a fresh session and marks it active.
func (m *Manager) Begin() (*Session, error) {
	s := &Session{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	if err := m.save(s); err != nil {
		return nil, err
	}
	if err := m.setCurrent(s.ID); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active session, or ok=false when none is active.
func (m *Manager) Current() (*Session, bool, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, currentPointer))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read active session pointer: %w", err)
	}

	s, err := m.Load(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// GetOrCreate returns the active session, starting one if needed. This is
// the visitor-entry path: a returning device resumes its session, a fresh
// device begins one.
func (m *Manager) GetOrCreate() (*Session, error) {
	s, ok, err := m.Current()
	if err != nil {
		return nil, err
	}
	if ok {
		return s, nil
	}
	return m.Begin()
}

// Load reads a session by its full ID.
func (m *Manager) Load(id string) (*Session, error) {
	data, err := os.ReadFile(m.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
	}
	return &s, nil
}

// SetPersona records the quiz outcome on the session.
func (m *Manager) SetPersona(id string, persona exhibit.Persona) (*Session, error) {
	if !exhibit.ValidPersona(persona) {
		return nil, fmt.Errorf("unknown persona %q", persona)
	}
	s, err := m.Load(id)
	if err != nil {
		return nil, err
	}
	s.Persona = persona
	if err := m.save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns every stored session ID, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *Manager) sessionPath(id string) string {
	return filepath.Join(m.dir, id+".json")
}

// save writes the session file atomically.
func (m *Manager) save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	path := m.sessionPath(s.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

func (m *Manager) setCurrent(id string) error {
	return os.WriteFile(filepath.Join(m.dir, currentPointer), []byte(id), 0o644)
}

// AttributePersona decides which persona an evaluation belongs to. When the
// visitor listened to exactly one distinct persona for the relic, the
// evaluation describes that narration even if it differs from the assigned
// one; otherwise it falls back to the assigned persona.
func AttributePersona(assigned exhibit.Persona, played []exhibit.Persona) exhibit.Persona {
	distinct := make(map[exhibit.Persona]struct{}, len(played))
	for _, p := range played {
		distinct[p] = struct{}{}
	}
	if len(distinct) == 1 {
		for p := range distinct {
			return p
		}
	}
	return assigned
}
