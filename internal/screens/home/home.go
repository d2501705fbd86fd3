package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/screens/history"
	"github.com/abhisek/edugenie/internal/screens/leaderboard"
	"github.com/abhisek/edugenie/internal/screens/notes"
	"github.com/abhisek/edugenie/internal/screens/plan"
	"github.com/abhisek/edugenie/internal/screens/quiz"
	"github.com/abhisek/edugenie/internal/screens/tutor"
	"github.com/abhisek/edugenie/internal/ui/components"
	"github.com/abhisek/edugenie/internal/ui/layout"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

const banner = ` ___    _        ___           _
| __|__| |_  _  / __|___ _ _  (_)___
| _|/ _` + "`" + ` | || || (_ / -_) ' \ | / -_)
|___\__,_|\_,_| \___\___|_||_||_\___|`

// statsMsg carries the dashboard numbers.
type statsMsg struct {
	Quizzes   int
	Accuracy  float64
	Suggested string
}

// HomeScreen is the main menu with a small progress dashboard.
type HomeScreen struct {
	svc       *screens.Services
	menu      components.Menu
	quizzes   int
	accuracy  float64
	suggested string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *screens.Services) *HomeScreen {
	h := &HomeScreen{svc: svc}
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	items := []components.MenuItem{
		{Label: "Take a quiz", Hint: "Adaptive multiple-choice quiz on any topic", Action: push(func() screen.Screen {
			return quiz.New(svc, h.suggested)
		})},
		{Label: "Ask the tutor", Hint: "Chat with EduGenie about anything you are studying", Action: push(func() screen.Screen {
			return tutor.New(svc)
		})},
		{Label: "Summarize notes", Hint: "Bullet-point summary plus flashcards", Action: push(func() screen.Screen {
			return notes.New(svc)
		})},
		{Label: "Learning plan", Hint: "Study plan for your weakest topics", Disabled: svc.Plans == nil, Action: push(func() screen.Screen {
			return plan.New(svc, learningpath.DefaultDays)
		})},
		{Label: "History", Hint: "Past quizzes and badges", Action: push(func() screen.Screen {
			return history.New(svc)
		})},
		{Label: "Leaderboard", Hint: "Top learners by XP", Disabled: svc.Rewards == nil, Action: push(func() screen.Screen {
			return leaderboard.New(svc)
		})},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return tea.Batch(h.loadStats(), h.svc.LoadXP())
}

// Refresh reloads the dashboard after returning from another screen.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.Init()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ctx := context.Background()
		records, err := svc.Records.All(ctx, svc.User)
		if err != nil {
			svc.Logger.Warn("load home stats", zap.Error(err))
			return nil
		}
		msg := statsMsg{Quizzes: len(records)}
		var score, total int
		for _, r := range records {
			score += r.Score
			total += r.Total
		}
		if total > 0 {
			msg.Accuracy = float64(score) / float64(total)
		}
		if svc.Plans != nil {
			msg.Suggested, _ = svc.Plans.SuggestNextTopic(ctx, svc.User)
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsMsg); ok {
		h.quizzes, h.accuracy, h.suggested = m.Quizzes, m.Accuracy, m.Suggested
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	if !layout.IsCompactHeight(height) {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(banner))
	}
	sections = append(sections, theme.Subtitle.Render("Your AI study companion"))

	stats := fmt.Sprintf("%d quizzes   %.0f%% accuracy", h.quizzes, h.accuracy*100)
	if h.quizzes == 0 {
		stats = "No quizzes yet"
	}
	if h.suggested != "" {
		stats += "   Next up: " + h.suggested
	}
	if h.svc.Gateway != nil && h.svc.Gateway.Offline() {
		stats += "\n" + theme.Degraded.Render("Offline: no model configured, quizzes use sample questions")
	}
	sections = append(sections, theme.Card.Render(stats))
	sections = append(sections, h.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
