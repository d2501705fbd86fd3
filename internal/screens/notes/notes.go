// Package notes lets the learner paste study notes and get bullet-point
// summaries with flashcards back.
package notes

import (
	"context"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/ui/layout"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

type summaryMsg struct {
	Summary string
	Err     error
}

// NotesScreen summarizes pasted text.
type NotesScreen struct {
	svc     *screens.Services
	area    textarea.Model
	summary string
	errMsg  string
	waiting bool
}

var _ screen.Screen = (*NotesScreen)(nil)
var _ screen.KeyHintProvider = (*NotesScreen)(nil)

func New(svc *screens.Services) *NotesScreen {
	ta := textarea.New()
	ta.Placeholder = "Paste your notes here..."
	ta.ShowLineNumbers = false
	return &NotesScreen{svc: svc, area: ta}
}

func (s *NotesScreen) Init() tea.Cmd {
	return s.area.Focus()
}

func (s *NotesScreen) Title() string {
	return "Summarize Notes"
}

func (s *NotesScreen) KeyHints() []layout.KeyHint {
	if s.summary != "" {
		return []layout.KeyHint{
			{Key: "Ctrl+N", Description: "New notes"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Ctrl+S", Description: "Summarize"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *NotesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		s.waiting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.summary = msg.Summary
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "ctrl+n":
			s.summary, s.errMsg = "", ""
			s.area.Reset()
			return s, s.area.Focus()
		case "ctrl+s":
			if s.waiting || s.summary != "" {
				return s, nil
			}
			text := s.area.Value()
			s.waiting = true
			s.errMsg = ""
			svc := s.svc
			return s, func() tea.Msg {
				out, err := svc.Tutor.Summarize(context.Background(), text)
				return summaryMsg{Summary: out, Err: err}
			}
		}
	}

	if s.summary != "" || s.waiting {
		return s, nil
	}
	var cmd tea.Cmd
	s.area, cmd = s.area.Update(msg)
	return s, cmd
}

func (s *NotesScreen) View(width, height int) string {
	pad := lipgloss.NewStyle().Padding(0, 2)
	if s.waiting {
		return pad.Render(theme.Hint.Render("Summarizing..."))
	}
	if s.summary != "" {
		style := lipgloss.NewStyle().Width(max(width-6, 20)).Foreground(theme.Text)
		if gateway.IsSentinel(s.summary) {
			style = style.Inherit(theme.Degraded)
		}
		return pad.Render(style.Render(s.summary))
	}

	s.area.SetWidth(max(width-6, 20))
	s.area.SetHeight(max(height-4, 3))
	out := s.area.View()
	if s.errMsg != "" {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg)
	}
	return pad.Render(out)
}
