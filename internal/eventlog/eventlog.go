// Package eventlog keeps the append-only research record of each visit:
// quiz outcomes, relic views, narration playbacks, and evaluations. Every
// session gets one JSON-lines file under {data_dir}/events; entries are
// only ever appended, never rewritten.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/whxxx2005-coder/xianyi/internal/exhibit"
)

// EventType tags a log entry.
type EventType string

const (
	TypeQuizResult EventType = "quiz_result"
	TypeView       EventType = "view"
	TypePlayback   EventType = "playback"
	TypeEvaluation EventType = "evaluation"
)

// QuizResult records the intake quiz outcome.
type QuizResult struct {
	Selected    exhibit.Persona `json:"selected_type"`
	OptionLabel string          `json:"option_label"`
}

// ViewRecord records the visitor opening a relic's detail page.
type ViewRecord struct {
	RelicID string `json:"relic_id"`
}

// PlaybackEvent records one narration playback.
type PlaybackEvent struct {
	RelicID   string          `json:"relic_id"`
	Persona   exhibit.Persona `json:"narrative_type"`
	Completed bool            `json:"is_completed"`
}

// Evaluation records the post-listening survey for one relic.
type Evaluation struct {
	RelicID             string          `json:"relic_id"`
	Persona             exhibit.Persona `json:"audience_type"`
	MatchingScore       int             `json:"matching_score"`       // 1..5
	SatisfactionScore   int             `json:"satisfaction_score"`   // 1..5
	RecommendationScore int             `json:"recommendation_score"` // 0 or 1
	Feedback            string          `json:"feedback"`
}

// Validate checks the survey scores are in range.
func (e Evaluation) Validate() error {
	if e.RelicID == "" {
		return fmt.Errorf("evaluation relic_id is required")
	}
	if e.MatchingScore < 1 || e.MatchingScore > 5 {
		return fmt.Errorf("matching_score must be 1..5, got %d", e.MatchingScore)
	}
	if e.SatisfactionScore < 1 || e.SatisfactionScore > 5 {
		return fmt.Errorf("satisfaction_score must be 1..5, got %d", e.SatisfactionScore)
	}
	if e.RecommendationScore != 0 && e.RecommendationScore != 1 {
		return fmt.Errorf("recommendation_score must be 0 or 1, got %d", e.RecommendationScore)
	}
	return nil
}

// Event is one log line. Exactly one payload field is set, matching Type.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Type      EventType `json:"type"`
	At        time.Time `json:"at"`

	Quiz       *QuizResult    `json:"quiz,omitempty"`
	View       *ViewRecord    `json:"view,omitempty"`
	Playback   *PlaybackEvent `json:"playback,omitempty"`
	Evaluation *Evaluation    `json:"evaluation,omitempty"`
}

// Recorder appends events to per-session log files. Safe for concurrent
// use within one process.
type Recorder struct {
	dir string
	mu  sync.Mutex
}

// NewRecorder creates a recorder rooted at dataDir.
func NewRecorder(dataDir string) *Recorder {
	return &Recorder{dir: filepath.Join(dataDir, "events")}
}

// RecordQuizResult appends the quiz outcome to the session log.
func (r *Recorder) RecordQuizResult(sessionID string, q QuizResult) error {
	if !exhibit.ValidPersona(q.Selected) {
		return fmt.Errorf("unknown persona %q", q.Selected)
	}
	return r.append(Event{SessionID: sessionID, Type: TypeQuizResult, Quiz: &q})
}

// RecordView appends a relic detail view.
func (r *Recorder) RecordView(sessionID string, v ViewRecord) error {
	return r.append(Event{SessionID: sessionID, Type: TypeView, View: &v})
}

// RecordPlayback appends one narration playback.
func (r *Recorder) RecordPlayback(sessionID string, p PlaybackEvent) error {
	if !exhibit.ValidPersona(p.Persona) {
		return fmt.Errorf("unknown persona %q", p.Persona)
	}
	return r.append(Event{SessionID: sessionID, Type: TypePlayback, Playback: &p})
}

// RecordEvaluation appends a survey submission after validating it.
func (r *Recorder) RecordEvaluation(sessionID string, e Evaluation) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return r.append(Event{SessionID: sessionID, Type: TypeEvaluation, Evaluation: &e})
}

// Read returns every event of a session in append order. A session with no
// log yet yields an empty slice.
func (r *Recorder) Read(sessionID string) ([]Event, error) {
	f, err := os.Open(r.logPath(sessionID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("corrupt event log line: %w", err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return events, nil
}

// PlayedPersonas returns the personas the visitor has heard for a relic,
// in playback order with repeats. Feeds evaluation attribution.
func (r *Recorder) PlayedPersonas(sessionID, relicID string) ([]exhibit.Persona, error) {
	events, err := r.Read(sessionID)
	if err != nil {
		return nil, err
	}
	var played []exhibit.Persona
	for _, ev := range events {
		if ev.Type == TypePlayback && ev.Playback != nil && ev.Playback.RelicID == relicID {
			played = append(played, ev.Playback.Persona)
		}
	}
	return played, nil
}

func (r *Recorder) logPath(sessionID string) string {
	return filepath.Join(r.dir, sessionID+".jsonl")
}

// append stamps the event and writes it as one JSON line.
func (r *Recorder) append(ev Event) error {
	if ev.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	ev.ID = uuid.NewString()
	ev.At = time.Now().UTC()

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}
	f, err := os.OpenFile(r.logPath(ev.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
