package quiz

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/ui/components"
	"github.com/abhisek/edugenie/internal/ui/layout"
)

type stage int

const (
	stageSetup stage = iota
	stageLoading
	stageQuestion
	stageGrading
	stageFeedback
	stageSummary
)

// quizStartedMsg is sent when question generation finished.
type quizStartedMsg struct {
	Err error
}

// answerGradedMsg is sent when the current answer has been graded.
type answerGradedMsg struct {
	Result quizgen.GradingResult
	Err    error
}

// QuizScreen runs one adaptive quiz: topic setup, questions with feedback,
// then a summary with the XP earned.
type QuizScreen struct {
	svc   *screens.Services
	stage stage

	topic components.TextInput
	level difficulty.Level
	count int
	fixed bool

	sess   *session.Session
	choice components.MultiChoice
	input  components.TextInput
	result quizgen.GradingResult
	errMsg string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a QuizScreen. A non-empty topic skips straight past the topic
// prompt to the difficulty choice.
func New(svc *screens.Services, topic string) *QuizScreen {
	count := svc.DefaultQuestions
	if count < 1 {
		count = 5
	}
	ti := components.NewTextInput("e.g. Photosynthesis", false, 80)
	ti.Model.SetValue(topic)
	return &QuizScreen{
		svc:   svc,
		topic: ti,
		level: difficulty.Easy,
		count: count,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.topic.Init()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.stage {
	case stageSetup:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Tab", Description: "Difficulty"},
			{Key: "+/-", Description: "Questions"},
			{Key: "Ctrl+F", Description: "Fixed level"},
			{Key: "Esc", Description: "Back"},
		}
	case stageQuestion:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "A-Z", Description: "Pick"},
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Abandon"},
		}
	case stageFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case stageSummary:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Home"},
			{Key: "R", Description: "Retry topic"},
		}
	}
	return nil
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case quizStartedMsg:
		return s.handleStarted(msg)
	case answerGradedMsg:
		return s.handleGraded(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.stage == stageSetup {
		var cmd tea.Cmd
		s.topic, cmd = s.topic.Update(msg)
		return s, cmd
	}
	if s.stage == stageQuestion && s.textMode() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch s.stage {
	case stageSetup:
		switch key {
		case "tab":
			s.level = difficulty.Level((int(s.level) + 1) % len(difficulty.All))
			return s, nil
		case "+", "=":
			s.count = min(s.count+1, quizgen.MaxQuestions)
			return s, nil
		case "-":
			s.count = max(s.count-1, 1)
			return s, nil
		case "ctrl+f":
			s.fixed = !s.fixed
			return s, nil
		case "enter":
			if s.topic.Value() == "" {
				s.errMsg = "Enter a topic first."
				return s, nil
			}
			s.errMsg = ""
			return s.start()
		}
		var cmd tea.Cmd
		s.topic, cmd = s.topic.Update(msg)
		return s, cmd

	case stageQuestion:
		if s.textMode() {
			if key == "enter" && s.input.Value() != "" {
				return s.submit(s.input.Value())
			}
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
		s.choice, _ = s.choice.Update(msg)
		if s.choice.Submitted {
			return s.submit(s.choice.Chosen())
		}
		return s, nil

	case stageFeedback:
		if key == "enter" || key == "space" {
			return s.next()
		}

	case stageSummary:
		switch key {
		case "enter":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "r":
			retry := New(s.svc, s.topic.Value())
			retry.level, retry.count, retry.fixed = s.level, s.count, s.fixed
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: retry} }
		}
	}
	return s, nil
}

func (s *QuizScreen) start() (screen.Screen, tea.Cmd) {
	s.sess = s.svc.NewSession(s.fixed)
	s.stage = stageLoading
	sess, user, topic, level, n := s.sess, s.svc.User, s.topic.Value(), s.level, s.count
	return s, func() tea.Msg {
		return quizStartedMsg{Err: sess.Start(context.Background(), user, topic, level, n)}
	}
}

func (s *QuizScreen) handleStarted(msg quizStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.stage = stageSetup
		s.errMsg = fmt.Sprintf("Could not start the quiz: %v", msg.Err)
		return s, nil
	}
	s.errMsg = ""
	return s, s.showQuestion()
}

func (s *QuizScreen) showQuestion() tea.Cmd {
	q := s.current()
	s.stage = stageQuestion
	s.choice = components.NewMultiChoice(q.Prompt, q.Options)
	if s.textMode() {
		s.input = components.NewTextInput("Type your answer...", false, 200)
		return s.input.Init()
	}
	return nil
}

func (s *QuizScreen) current() quizgen.Question {
	qs := s.sess.Questions()
	return qs[s.sess.Current()]
}

// textMode is true for questions without options to pick from.
func (s *QuizScreen) textMode() bool {
	return s.sess != nil && len(s.choice.Options) == 0
}

func (s *QuizScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	s.stage = stageGrading
	sess, i := s.sess, s.sess.Current()
	return s, func() tea.Msg {
		res, err := sess.SubmitAnswer(context.Background(), i, answer)
		return answerGradedMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) handleGraded(msg answerGradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil && !store.IsPersistence(msg.Err) {
		s.errMsg = msg.Err.Error()
		return s, s.showQuestion()
	}
	s.errMsg = ""
	if msg.Err != nil {
		s.errMsg = fmt.Sprintf("Your result could not be saved: %v", msg.Err)
	}
	s.result = msg.Result

	snap := s.sess.Snapshot()
	correct := -1
	if i := len(snap.Results) - 1; i >= 0 {
		q := snap.Questions[i]
		if idx, ok := quizgen.ResolveChoice(q.Options, q.CorrectText()); ok {
			correct = idx
		}
	}
	s.choice.Reveal(correct)
	s.stage = stageFeedback
	return s, nil
}

func (s *QuizScreen) next() (screen.Screen, tea.Cmd) {
	if s.sess.Phase() == session.PhaseFinished {
		s.stage = stageSummary
		return s, s.svc.LoadXP()
	}
	s.errMsg = ""
	return s, s.showQuestion()
}

func (s *QuizScreen) View(width, height int) string {
	switch s.stage {
	case stageSetup:
		return s.renderSetup(width, height)
	case stageLoading:
		return renderWaiting(width, height, fmt.Sprintf("Generating %d questions about %s...", s.count, s.topic.Value()))
	case stageGrading:
		return renderWaiting(width, height, "Checking your answer...")
	case stageSummary:
		return s.renderSummary(width, height)
	}
	return s.renderQuestion(width, height)
}
