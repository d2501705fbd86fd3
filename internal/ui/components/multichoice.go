package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. The correct option is not
// known while choosing; Reveal marks it once the answer has been graded.
type MultiChoice struct {
	Question     string
	Options      []string
	Selected     int
	Submitted    bool
	ChosenIndex  int
	CorrectIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question:     question,
		Options:      options,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Update handles keyboard navigation and selection. Options can also be
// picked directly by letter or 1-based number.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
		m.ChosenIndex = m.Selected
	default:
		if i, ok := shortcut(key, len(m.Options)); ok {
			m.Selected = i
			m.Submitted = true
			m.ChosenIndex = i
		}
	}

	return m, nil
}

func shortcut(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := strings.ToLower(key)[0]
	var i int
	switch {
	case c >= 'a' && c <= 'z':
		i = int(c - 'a')
	case c >= '1' && c <= '9':
		i = int(c - '1')
	default:
		return 0, false
	}
	if i >= n {
		return 0, false
	}
	return i, true
}

// Chosen returns the text of the submitted option.
func (m MultiChoice) Chosen() string {
	if m.ChosenIndex < 0 || m.ChosenIndex >= len(m.Options) {
		return ""
	}
	return m.Options[m.ChosenIndex]
}

// Reveal marks the correct option. -1 leaves every option neutral.
func (m *MultiChoice) Reveal(correct int) {
	m.CorrectIndex = correct
}

// View renders the multiple-choice component.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%c)  %s", prefix, 'A'+rune(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case !m.Submitted && i == m.Selected:
			style = theme.Selected
		case m.Submitted && i == m.CorrectIndex:
			style = theme.Correct
		case m.Submitted && i == m.ChosenIndex:
			if m.CorrectIndex >= 0 {
				style = theme.Incorrect
			} else {
				style = theme.Selected
			}
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
