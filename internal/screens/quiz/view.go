package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/ui/components"
	"github.com/abhisek/edugenie/internal/ui/theme"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

func renderWaiting(width, height int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render(text)
}

func (s *QuizScreen) renderSetup(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centered(width).Inherit(theme.Title).Render("What would you like to be quizzed on?"))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Render("Topic: " + s.topic.View()))
	b.WriteString("\n\n")

	var levels []string
	for _, l := range difficulty.All {
		label := " " + l.String() + " "
		if l == s.level {
			levels = append(levels, theme.Selected.Render("["+label+"]"))
		} else {
			levels = append(levels, lipgloss.NewStyle().Foreground(theme.TextDim).Render(" "+label+" "))
		}
	}
	b.WriteString(centered(width).Render("Difficulty: " + strings.Join(levels, " ")))
	b.WriteString("\n")
	b.WriteString(centered(width).Render(fmt.Sprintf("Questions: %d", s.count)))
	b.WriteString("\n")

	mode := "adapts to your recent scores"
	if s.fixed {
		mode = "fixed"
	}
	b.WriteString(centered(width).Inherit(theme.Hint).Render("Difficulty " + mode))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}

func (s *QuizScreen) header(width int) string {
	snap := s.sess.Snapshot()
	var b strings.Builder

	info := fmt.Sprintf("  %s · %s", snap.Topic, snap.Effective)
	if snap.Effective != snap.Requested {
		info += fmt.Sprintf(" (adapted from %s)", snap.Requested)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(info))
	b.WriteString("\n")
	bar := components.NewProgressBar("", len(snap.Results), len(snap.Questions), min(width-4, 60))
	b.WriteString("  " + bar.View())
	b.WriteString("\n")
	if snap.Placeholder {
		b.WriteString(theme.Degraded.Render("  The tutor model is unavailable, so these are sample questions."))
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")
	return b.String()
}

func (s *QuizScreen) renderQuestion(width, height int) string {
	var b strings.Builder
	b.WriteString(s.header(width))

	if s.textMode() {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(s.choice.Question))
		b.WriteString("\n\n")
		b.WriteString("Answer: " + s.input.View())
	} else {
		b.WriteString(s.choice.View())
	}

	if s.stage == stageFeedback {
		b.WriteString("\n")
		if s.result.Correct {
			b.WriteString(theme.Correct.Render("✓ Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("✗ Not quite."))
		}
		if s.result.Feedback != "" {
			b.WriteString("  " + theme.Body.Render(s.result.Feedback))
		}
		snap := s.sess.Snapshot()
		if i := len(snap.Results) - 1; i >= 0 && snap.Questions[i].Explanation != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.Hint.Render(snap.Questions[i].Explanation))
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(0, 2).Width(width).Render(b.String())
}

func (s *QuizScreen) renderSummary(width, height int) string {
	snap := s.sess.Snapshot()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centered(width).Inherit(theme.Title).Render("Quiz complete"))
	b.WriteString("\n\n")
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("%s: %d/%d  (%.0f%%)", snap.Topic, snap.Score, len(snap.Questions), snap.Accuracy*100)))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).Render("Difficulty: " + snap.Effective.String()))
	b.WriteString("\n\n")

	if a := snap.Award; a != nil {
		b.WriteString(centered(width).Foreground(theme.RarityColor(string(a.Rarity))).Bold(true).
			Render(fmt.Sprintf("%s %s  +%d XP", a.Rarity.Icon(), a.Rarity.DisplayName(), a.XP)))
		b.WriteString("\n")
		if a.Badge != nil {
			b.WriteString(centered(width).Foreground(theme.Accent).Render("New badge: " + a.Badge.Name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for i, q := range snap.Questions {
		mark := theme.Correct.Render("✓")
		if i < len(snap.Results) && !snap.Results[i].Correct {
			mark = theme.Incorrect.Render("✗")
		}
		line := fmt.Sprintf("%s %d. %s", mark, i+1, truncate(q.Prompt, width-12))
		b.WriteString(centered(width).Render(line))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centered(width).Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
