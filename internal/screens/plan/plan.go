package plan

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/screens/quiz"
	"github.com/abhisek/edugenie/internal/ui/layout"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

type planReadyMsg struct {
	Result *learningpath.Result
	Err    error
}

// PlanScreen runs a learning cycle: weak topics, a study plan and a
// starter quiz on the weakest topic.
type PlanScreen struct {
	svc    *screens.Services
	days   int
	result *learningpath.Result
	errMsg string
	loaded bool
}

var _ screen.Screen = (*PlanScreen)(nil)
var _ screen.KeyHintProvider = (*PlanScreen)(nil)

func New(svc *screens.Services, days int) *PlanScreen {
	return &PlanScreen{svc: svc, days: days}
}

func (s *PlanScreen) Init() tea.Cmd {
	svc, days := s.svc, s.days
	return func() tea.Msg {
		res, err := svc.Plans.Run(context.Background(), svc.User, days)
		return planReadyMsg{Result: res, Err: err}
	}
}

func (s *PlanScreen) Title() string {
	return "Learning Plan"
}

func (s *PlanScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	if s.result != nil && s.result.StarterTopic != "" {
		hints = append([]layout.KeyHint{{Key: "Enter", Description: "Starter quiz"}}, hints...)
	}
	return hints
}

func (s *PlanScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planReadyMsg:
		s.loaded = true
		s.result = msg.Result
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			if s.result == nil || s.result.StarterTopic == "" {
				return s, nil
			}
			next := quiz.New(s.svc, s.result.StarterTopic)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}
	return s, nil
}

func (s *PlanScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Analysing your quiz history...")
	}

	var b strings.Builder
	if s.result != nil {
		r := s.result
		if len(r.WeakTopics) > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
				Render("Focus topics: " + strings.Join(r.WeakTopics, ", ")))
			b.WriteString("\n\n")
		}

		body := lipgloss.NewStyle().Width(max(width-6, 20)).Foreground(theme.Text)
		if gateway.IsSentinel(r.Plan) {
			body = body.Inherit(theme.Degraded)
		}
		b.WriteString(body.Render(r.Plan))

		if r.StarterTopic != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render(fmt.Sprintf("Starter quiz ready: %d questions on %s.", len(r.StarterQuiz), r.StarterTopic)))
		}
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
