// Package layout renders the frame around every screen: a status header,
// the active screen's content and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// CompactHeightThreshold applies to the content area.
	CompactHeightThreshold = 22
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Header is the status line at the top of the frame.
type Header struct {
	Title   string
	User    string
	XP      int
	Offline bool
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("EduGenie needs at least %dx%d.\nThis terminal is %dx%d.",
			MinWidth, MinHeight, width, height))
}

// Render draws the header as a bordered bar: brand on the left, the screen
// title centred and the learner's status on the right.
func (h Header) Render(width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("EduGenie")
	if h.Offline {
		brand += lipgloss.NewStyle().Foreground(theme.Error).Render(" · offline")
	}
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(h.Title)
	status := lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.User) +
		lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render(fmt.Sprintf("  %d XP", h.XP))

	inner := max(width-4, 0)
	line := spread(inner, brand, title, status)
	return bar(line, width)
}

// spread places left and right at the edges and mid as close to the centre
// as the space allows, keeping at least one space between parts.
func spread(width int, left, mid, right string) string {
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	gapL := max((width-mw)/2-lw, 1)
	gapR := max(width-lw-gapL-mw-rw, 1)
	return left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right
}

// RenderFooter renders as many hints as fit in width, keeping the last hint
// (normally quit) visible.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	rendered := make([]string, len(hints))
	for i, h := range hints {
		rendered[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}

	const sep = "   "
	budget := width - 4
	var kept []string
	used := 0
	if n := len(rendered); n > 0 {
		used = lipgloss.Width(rendered[n-1])
		for _, r := range rendered[:n-1] {
			w := lipgloss.Width(r) + len(sep)
			if used+w > budget {
				break
			}
			kept = append(kept, r)
			used += w
		}
		kept = append(kept, rendered[n-1])
	}
	return bar(strings.Join(kept, sep), width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// RenderFrame stacks header, content and footer, clipping content that is
// taller than the space between them.
func RenderFrame(header, content, footer string, width, height int) string {
	room := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	if lines := strings.Split(content, "\n"); len(lines) > room {
		content = strings.Join(lines[:room], "\n")
	}
	body := lipgloss.NewStyle().Width(width).Height(room).Render(content)
	return header + "\n" + body + "\n" + footer
}
