package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/performance"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/ui/components"
	"github.com/abhisek/edugenie/internal/ui/layout"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

type historyLoadedMsg struct {
	Records []store.QuizRecord
	Badges  []store.Badge
	Err     error
}

// HistoryScreen lists past quiz attempts, per-topic accuracy and badges.
type HistoryScreen struct {
	svc      *screens.Services
	records  []store.QuizRecord
	topics   []performance.TopicStats
	badges   []store.Badge
	byTopic  bool
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc *screens.Services) *HistoryScreen {
	return &HistoryScreen{svc: svc}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx := context.Background()

		records, err := svc.Records.All(ctx, svc.User)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		var badges []store.Badge
		if svc.Rewards != nil {
			// Badges are decoration; show history even if they fail.
			badges, _ = svc.Rewards.Badges(ctx, svc.User)
		}
		return historyLoadedMsg{Records: records, Badges: badges}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Attempts / Topics"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			// Newest first.
			s.records = make([]store.QuizRecord, len(msg.Records))
			for i, r := range msg.Records {
				s.records[len(msg.Records)-1-i] = r
			}
			s.topics = performance.TopicRatios(msg.Records)
			s.badges = msg.Badges
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			s.byTopic = !s.byTopic
			s.selected = 0
			return s, nil
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < s.rows()-1 {
				s.selected++
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) rows() int {
	if s.byTopic {
		return len(s.topics)
	}
	return len(s.records)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Take one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	if s.byTopic {
		for i, t := range s.topics {
			bar := components.NewProgressBar(fmt.Sprintf("%-18s", truncate(t.Topic, 18)), t.Score, t.Total, 50)
			line := bar.View() + lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d attempts", t.Attempts))
			if i == s.selected {
				line = theme.Selected.Render("> ") + line
			} else {
				line = "  " + line
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
			b.WriteString("\n")
		}
	} else {
		for i, rec := range s.visibleRecords(height) {
			prefix := "  "
			style := lipgloss.NewStyle().Foreground(theme.Text)
			if i == s.selected {
				prefix = "> "
				style = theme.Selected
			}
			date := time.Unix(rec.Timestamp, 0).Format("Jan 02, 2006 15:04")
			line := fmt.Sprintf("%s%s  %-24s %2d/%-2d  %3.0f%%",
				prefix, date, truncate(rec.Topic, 24), rec.Score, rec.Total, rec.Ratio()*100)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
			b.WriteString("\n")
		}
	}

	if len(s.badges) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("Badges (%d)", len(s.badges)))))
		b.WriteString("\n")
		for _, badge := range s.badges {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.RarityColor(badge.Rarity)).Render(badge.Name)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// visibleRecords returns at most what fits, leaving room for the badges.
func (s *HistoryScreen) visibleRecords(height int) []store.QuizRecord {
	room := max(height-len(s.badges)-4, 5)
	if len(s.records) <= room {
		return s.records
	}
	return s.records[:room]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
