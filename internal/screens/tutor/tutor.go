package tutor

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screen"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/ui/components"
	"github.com/abhisek/edugenie/internal/ui/layout"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

// replyMsg carries the tutor's answer to the pending question.
type replyMsg struct {
	Question string
	Reply    string
	Err      error
}

// roleError marks a request that failed outright.
const roleError llm.Role = "error"

type line struct {
	role     llm.Role
	text     string
	degraded bool
}

// ChatScreen is a conversation with the tutor agent.
type ChatScreen struct {
	svc     *screens.Services
	input   components.TextInput
	lines   []line
	waiting bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen, replaying the agent's existing conversation.
func New(svc *screens.Services) *ChatScreen {
	s := &ChatScreen{
		svc:   svc,
		input: components.NewTextInput("Ask anything...", false, 500),
	}
	for _, m := range svc.Tutor.History() {
		s.lines = append(s.lines, line{role: m.Role, text: m.Content})
	}
	return s
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Tutor"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+R", Description: "New conversation"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		switch {
		case msg.Err != nil:
			s.lines = append(s.lines, line{role: roleError, text: msg.Err.Error()})
		default:
			s.lines = append(s.lines, line{role: llm.RoleAssistant, text: msg.Reply, degraded: gateway.IsSentinel(msg.Reply)})
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "ctrl+r":
			s.svc.Tutor.Reset()
			s.lines = nil
			return s, nil
		case "enter":
			q := s.input.Value()
			if q == "" || s.waiting {
				return s, nil
			}
			s.input.Reset()
			s.waiting = true
			s.lines = append(s.lines, line{role: llm.RoleUser, text: q})
			agent := s.svc.Tutor
			return s, func() tea.Msg {
				reply, err := agent.Ask(context.Background(), q)
				return replyMsg{Question: q, Reply: reply, Err: err}
			}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) View(width, height int) string {
	wrap := lipgloss.NewStyle().Width(max(width-6, 20))
	var rendered []string
	for _, l := range s.lines {
		switch {
		case l.role == llm.RoleUser:
			rendered = append(rendered, theme.Selected.Render("You: ")+wrap.Foreground(theme.Text).Render(l.text))
		case l.role == roleError:
			rendered = append(rendered, wrap.Foreground(theme.Error).Render(l.text))
		case l.degraded:
			rendered = append(rendered, wrap.Inherit(theme.Degraded).Render("EduGenie: "+l.text))
		default:
			rendered = append(rendered, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("EduGenie: ")+wrap.Foreground(theme.Text).Render(l.text))
		}
	}
	if s.waiting {
		rendered = append(rendered, theme.Hint.Render("EduGenie is thinking..."))
	}
	if len(rendered) == 0 {
		rendered = append(rendered, theme.Hint.Render("Ask a question to start the conversation."))
	}

	// Keep the latest lines visible above the input.
	body := strings.Join(rendered, "\n\n")
	avail := max(height-3, 1)
	if lines := strings.Split(body, "\n"); len(lines) > avail {
		body = strings.Join(lines[len(lines)-avail:], "\n")
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(body + "\n\n" + s.input.View())
}
