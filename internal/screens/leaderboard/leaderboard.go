package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

const limit = 10

type loadedMsg struct {
	Entries []store.LeaderboardEntry
	Err     error
}

// LeaderboardScreen shows the top users by XP.
type LeaderboardScreen struct {
	svc     *screens.Services
	entries []store.LeaderboardEntry
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)

func New(svc *screens.Services) *LeaderboardScreen {
	return &LeaderboardScreen{svc: svc}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		entries, err := svc.Rewards.Leaderboard(context.Background(), limit)
		return loadedMsg{Entries: entries, Err: err}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		s.entries = msg.Entries
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		}
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return center.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	case !s.loaded:
		return center.Foreground(theme.TextDim).Render("\n\n  Loading leaderboard...")
	case len(s.entries) == 0:
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No XP earned yet. Finish a quiz to get on the board!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, e := range s.entries {
		line := fmt.Sprintf("%2d.  %-20s %6d XP", i+1, e.User, e.XP)
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if e.User == s.svc.User {
			style = theme.Selected
		}
		b.WriteString(center.Render(style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}
