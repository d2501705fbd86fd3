package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{Items: items, Selected: selected}
}

// Update moves the selection with the arrow keys (wrapping at the ends,
// skipping disabled items) and runs the selected action on enter. Digits
// 1-9 run the matching item directly.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		m.Selected = m.step(-1)
	case "down", "j":
		m.Selected = m.step(1)
	case "enter":
		return m, m.activate(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Items) && !m.Items[i].Disabled {
				m.Selected = i
				return m, m.activate(i)
			}
		}
	}
	return m, nil
}

// step returns the next enabled index in direction dir, or the current
// selection when every other item is disabled.
func (m Menu) step(dir int) int {
	n := len(m.Items)
	for k := 1; k < n; k++ {
		i := ((m.Selected+dir*k)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return m.Selected
}

func (m Menu) activate(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) {
		return nil
	}
	item := m.Items[i]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

// View renders the menu, with the selected item's hint underneath.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("    " + item.Label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render(fmt.Sprintf("  ▸ %d %s", i+1, item.Label)))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("    %d %s", i+1, item.Label)))
		}
		b.WriteString("\n")
	}
	if m.Selected >= 0 && m.Selected < len(m.Items) && m.Items[m.Selected].Hint != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(m.Items[m.Selected].Hint))
	}
	return b.String()
}
