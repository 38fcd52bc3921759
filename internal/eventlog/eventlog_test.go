package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whxxx2005-coder/xianyi/internal/exhibit"
)

func TestAppendAndRead(t *testing.T) {
	r := NewRecorder(t.TempDir())
	const session = "11111111-1111-1111-1111-111111111111"

	require.NoError(t, r.RecordQuizResult(session, QuizResult{
		Selected:    exhibit.PersonaExplorer,
		OptionLabel: "我想自己发现展品的故事",
	}))
	require.NoError(t, r.RecordView(session, ViewRecord{RelicID: "relic7"}))
	require.NoError(t, r.RecordPlayback(session, PlaybackEvent{
		RelicID: "relic7", Persona: exhibit.PersonaExplorer, Completed: true,
	}))

	events, err := r.Read(session)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Append order preserved, every entry stamped.
	assert.Equal(t, TypeQuizResult, events[0].Type)
	assert.Equal(t, TypeView, events[1].Type)
	assert.Equal(t, TypePlayback, events[2].Type)
	for _, ev := range events {
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, session, ev.SessionID)
		assert.False(t, ev.At.IsZero())
	}
	assert.True(t, events[2].Playback.Completed)
}

func TestReadUnknownSession(t *testing.T) {
	r := NewRecorder(t.TempDir())

	events, err := r.Read("no-such-session")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSessionsAreIsolated(t *testing.T) {
	r := NewRecorder(t.TempDir())

	require.NoError(t, r.RecordView("session-a", ViewRecord{RelicID: "relic1"}))
	require.NoError(t, r.RecordView("session-b", ViewRecord{RelicID: "relic2"}))

	a, err := r.Read("session-a")
	require.NoError(t, err)
	require.Len(t, a, 1)
	assert.Equal(t, "relic1", a[0].View.RelicID)

	b, err := r.Read("session-b")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.Equal(t, "relic2", b[0].View.RelicID)
}

func TestEvaluationValidation(t *testing.T) {
	r := NewRecorder(t.TempDir())
	const session = "s1"

	valid := Evaluation{
		RelicID:             "relic3",
		Persona:             exhibit.PersonaProfessional,
		MatchingScore:       4,
		SatisfactionScore:   5,
		RecommendationScore: 1,
		Feedback:            "讲解很有深度",
	}
	require.NoError(t, r.RecordEvaluation(session, valid))

	tests := []struct {
		name   string
		mutate func(*Evaluation)
	}{
		{"missing relic", func(e *Evaluation) { e.RelicID = "" }},
		{"matching score too low", func(e *Evaluation) { e.MatchingScore = 0 }},
		{"matching score too high", func(e *Evaluation) { e.MatchingScore = 6 }},
		{"satisfaction out of range", func(e *Evaluation) { e.SatisfactionScore = 9 }},
		{"recommendation not boolean", func(e *Evaluation) { e.RecommendationScore = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assert.Error(t, r.RecordEvaluation(session, e))
		})
	}
}

func TestRejectsUnknownPersona(t *testing.T) {
	r := NewRecorder(t.TempDir())

	assert.Error(t, r.RecordQuizResult("s1", QuizResult{Selected: "路人"}))
	assert.Error(t, r.RecordPlayback("s1", PlaybackEvent{RelicID: "relic1", Persona: "路人"}))
}

func TestPlayedPersonas(t *testing.T) {
	r := NewRecorder(t.TempDir())
	const session = "s1"

	require.NoError(t, r.RecordPlayback(session, PlaybackEvent{RelicID: "relic1", Persona: exhibit.PersonaExplorer}))
	require.NoError(t, r.RecordPlayback(session, PlaybackEvent{RelicID: "relic1", Persona: exhibit.PersonaExplorer, Completed: true}))
	require.NoError(t, r.RecordPlayback(session, PlaybackEvent{RelicID: "relic2", Persona: exhibit.PersonaInspiration}))

	played, err := r.PlayedPersonas(session, "relic1")
	require.NoError(t, err)
	assert.Equal(t, []exhibit.Persona{exhibit.PersonaExplorer, exhibit.PersonaExplorer}, played)

	played, err = r.PlayedPersonas(session, "relic9")
	require.NoError(t, err)
	assert.Empty(t, played)
}
