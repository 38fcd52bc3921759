package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whxxx2005-coder/xianyi/internal/eventlog"
	"github.com/whxxx2005-coder/xianyi/internal/exhibit"
	"github.com/whxxx2005-coder/xianyi/internal/printer"
	"github.com/whxxx2005-coder/xianyi/internal/session"
	"github.com/whxxx2005-coder/xianyi/internal/settings"
)

var (
	visitNew      bool
	quizLabel     string
	playPersona   string
	playCompleted bool
	evalMatching  int
	evalSatisfy   int
	evalRecommend int
	evalFeedback  string
)

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Run the visitor flow on this device",
	Long: `Enter the guide as a visitor: resume (or start) the session and, when a
sync code is set, refresh the local assets from the shared bundle. The
refresh never surfaces errors to the visitor — a device without a code or
without connectivity simply keeps its current assets.`,
	Args: cobra.NoArgs,
	RunE: runVisit,
}

var visitQuizCmd = &cobra.Command{
	Use:   "quiz <persona>",
	Short: "Record the intake quiz outcome",
	Long: `Record the quiz answer and assign the persona to the active session.
Valid personas: 促进型, 探索者, 专业研究者, 灵感寻求者, 体验追寻者.`,
	Args: cobra.ExactArgs(1),
	RunE: runVisitQuiz,
}

var visitViewCmd = &cobra.Command{
	Use:   "view <relic-id>",
	Short: "Record the visitor opening a relic",
	Args:  cobra.ExactArgs(1),
	RunE:  runVisitView,
}

var visitPlayCmd = &cobra.Command{
	Use:   "play <relic-id>",
	Short: "Record a narration playback",
	Args:  cobra.ExactArgs(1),
	RunE:  runVisitPlay,
}

var visitEvaluateCmd = &cobra.Command{
	Use:   "evaluate <relic-id>",
	Short: "Record the post-listening survey",
	Long: `Record the survey for a relic. The evaluation is attributed to the one
persona the visitor actually listened to for this relic; if they compared
several, it falls back to the assigned persona.`,
	Args: cobra.ExactArgs(1),
	RunE: runVisitEvaluate,
}

var visitLogCmd = &cobra.Command{
	Use:   "log [session-id]",
	Short: "Show a session's event log",
	Long: `Show the event log of the active session, or of the session named by a
full ID or a unique prefix of at least 6 characters.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVisitLog,
}

func init() {
	visitCmd.Flags().BoolVar(&visitNew, "new", false, "start a fresh session instead of resuming")
	visitQuizCmd.Flags().StringVar(&quizLabel, "label", "", "the answer option the visitor chose")
	visitPlayCmd.Flags().StringVar(&playPersona, "persona", "", "narration persona (defaults to the assigned one)")
	visitPlayCmd.Flags().BoolVar(&playCompleted, "completed", false, "the playback ran to the end")
	visitEvaluateCmd.Flags().IntVar(&evalMatching, "matching", 0, "matching score, 1..5")
	visitEvaluateCmd.Flags().IntVar(&evalSatisfy, "satisfaction", 0, "satisfaction score, 1..5")
	visitEvaluateCmd.Flags().IntVar(&evalRecommend, "recommend", 0, "recommendation, 0 or 1")
	visitEvaluateCmd.Flags().StringVar(&evalFeedback, "feedback", "", "free-form feedback")

	visitCmd.AddCommand(visitQuizCmd, visitViewCmd, visitPlayCmd, visitEvaluateCmd, visitLogCmd)
	rootCmd.AddCommand(visitCmd)
}

// activeSession resumes the device's session, starting one if needed.
func activeSession(cfg *configBundle) (*session.Session, error) {
	s, err := cfg.sessions.GetOrCreate()
	if err != nil {
		return nil, printer.Error("Failed to open session", err.Error(), nil)
	}
	return s, nil
}

// configBundle gathers the per-device managers the visit commands share.
type configBundle struct {
	sessions *session.Manager
	events   *eventlog.Recorder
	settings *settings.Manager
}

func visitSetup() (*configBundle, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return &configBundle{
		sessions: session.NewManager(cfg.Device.DataDir),
		events:   eventlog.NewRecorder(cfg.Device.DataDir),
		settings: settings.NewManager(cfg.Device.DataDir),
	}, nil
}

func runVisit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := visitSetup()
	if err != nil {
		return err
	}

	var s *session.Session
	if visitNew {
		s, err = b.sessions.Begin()
		if err != nil {
			return printer.Error("Failed to start session", err.Error(), nil)
		}
	} else {
		s, err = activeSession(b)
		if err != nil {
			return err
		}
	}

	// Visitor-entry refresh: best effort, silent on every failure path.
	if code, err := b.settings.SyncCode(); err == nil && code != "" && cfg.SyncEnabled() {
		if store, err := openStore(cfg); err == nil {
			if coord, err := newCoordinator(cfg, store); err == nil {
				if coord.AutoPull(cmd.Context(), code) {
					printer.Info("Assets refreshed from shared bundle.\n")
				}
				coord.Close()
			}
			store.Close()
		}
	}

	printer.Success("Session %s\n", s.ID)
	if s.Persona == "" {
		printer.Info("No persona assigned yet — run 'xianyi visit quiz <persona>'.\n")
	} else {
		printer.Info("Persona: %s\n", s.Persona)
	}
	return nil
}

func runVisitQuiz(cmd *cobra.Command, args []string) error {
	persona := exhibit.Persona(args[0])
	if !exhibit.ValidPersona(persona) {
		return printer.Error("Unknown persona", fmt.Sprintf("%q is not a narration persona.", args[0]),
			[]string{"Valid personas: 促进型, 探索者, 专业研究者, 灵感寻求者, 体验追寻者"})
	}

	b, err := visitSetup()
	if err != nil {
		return err
	}
	s, err := activeSession(b)
	if err != nil {
		return err
	}

	if _, err := b.sessions.SetPersona(s.ID, persona); err != nil {
		return printer.Error("Failed to assign persona", err.Error(), nil)
	}
	if err := b.events.RecordQuizResult(s.ID, eventlog.QuizResult{
		Selected:    persona,
		OptionLabel: quizLabel,
	}); err != nil {
		return printer.Error("Failed to record quiz result", err.Error(), nil)
	}

	printer.Success("Persona %s assigned\n", persona)
	return nil
}

func runVisitView(cmd *cobra.Command, args []string) error {
	relic, ok := exhibit.RelicByID(args[0])
	if !ok {
		return printer.Error("Unknown relic", fmt.Sprintf("%q is not in the catalog.", args[0]), nil)
	}

	b, err := visitSetup()
	if err != nil {
		return err
	}
	s, err := activeSession(b)
	if err != nil {
		return err
	}

	if err := b.events.RecordView(s.ID, eventlog.ViewRecord{RelicID: relic.ID}); err != nil {
		return printer.Error("Failed to record view", err.Error(), nil)
	}
	printer.Success("Viewed %s（%s）\n", relic.Title, relic.Dynasty)
	return nil
}

func runVisitPlay(cmd *cobra.Command, args []string) error {
	relic, ok := exhibit.RelicByID(args[0])
	if !ok {
		return printer.Error("Unknown relic", fmt.Sprintf("%q is not in the catalog.", args[0]), nil)
	}

	b, err := visitSetup()
	if err != nil {
		return err
	}
	s, err := activeSession(b)
	if err != nil {
		return err
	}

	persona := exhibit.Persona(playPersona)
	if playPersona == "" {
		if s.Persona == "" {
			return printer.Error("No persona", "No persona assigned and none given with --persona.",
				[]string{"Run 'xianyi visit quiz <persona>' first"})
		}
		persona = s.Persona
	}

	if err := b.events.RecordPlayback(s.ID, eventlog.PlaybackEvent{
		RelicID:   relic.ID,
		Persona:   persona,
		Completed: playCompleted,
	}); err != nil {
		return printer.Error("Failed to record playback", err.Error(), nil)
	}
	printer.Success("Played %s narration for %s\n", persona, relic.Title)
	return nil
}

func runVisitEvaluate(cmd *cobra.Command, args []string) error {
	relic, ok := exhibit.RelicByID(args[0])
	if !ok {
		return printer.Error("Unknown relic", fmt.Sprintf("%q is not in the catalog.", args[0]), nil)
	}

	b, err := visitSetup()
	if err != nil {
		return err
	}
	s, err := activeSession(b)
	if err != nil {
		return err
	}
	if s.Persona == "" {
		return printer.Error("No persona", "The survey needs an assigned persona.",
			[]string{"Run 'xianyi visit quiz <persona>' first"})
	}

	played, err := b.events.PlayedPersonas(s.ID, relic.ID)
	if err != nil {
		return printer.Error("Failed to read playback history", err.Error(), nil)
	}
	target := session.AttributePersona(s.Persona, played)

	if err := b.events.RecordEvaluation(s.ID, eventlog.Evaluation{
		RelicID:             relic.ID,
		Persona:             target,
		MatchingScore:       evalMatching,
		SatisfactionScore:   evalSatisfy,
		RecommendationScore: evalRecommend,
		Feedback:            evalFeedback,
	}); err != nil {
		return printer.Error("Invalid evaluation", err.Error(), nil)
	}

	printer.Success("Evaluation recorded for %s (attributed to %s)\n", relic.Title, target)
	return nil
}

func runVisitLog(cmd *cobra.Command, args []string) error {
	b, err := visitSetup()
	if err != nil {
		return err
	}

	var id string
	if len(args) == 1 {
		id, err = b.sessions.ResolveID(args[0])
		if err != nil {
			return printer.Error("Session not found", err.Error(), nil)
		}
	} else {
		s, err := activeSession(b)
		if err != nil {
			return err
		}
		id = s.ID
	}

	events, err := b.events.Read(id)
	if err != nil {
		return printer.Error("Failed to read event log", err.Error(), nil)
	}
	if len(events) == 0 {
		printer.Info("No events recorded for session %s.\n", id)
		return nil
	}

	for _, ev := range events {
		switch ev.Type {
		case eventlog.TypeQuizResult:
			printer.Printf("%s  quiz       %s\n", ev.At.Format("15:04:05"), ev.Quiz.Selected)
		case eventlog.TypeView:
			printer.Printf("%s  view       %s\n", ev.At.Format("15:04:05"), ev.View.RelicID)
		case eventlog.TypePlayback:
			done := ""
			if ev.Playback.Completed {
				done = " (completed)"
			}
			printer.Printf("%s  play       %s %s%s\n", ev.At.Format("15:04:05"), ev.Playback.RelicID, ev.Playback.Persona, done)
		case eventlog.TypeEvaluation:
			printer.Printf("%s  evaluate   %s %s match=%d satisfy=%d recommend=%d\n",
				ev.At.Format("15:04:05"), ev.Evaluation.RelicID, ev.Evaluation.Persona,
				ev.Evaluation.MatchingScore, ev.Evaluation.SatisfactionScore, ev.Evaluation.RecommendationScore)
		}
	}
	return nil
}
