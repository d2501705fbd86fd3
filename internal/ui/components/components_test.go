package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"red", "green", "blue"})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if !m.Submitted {
		t.Fatal("expected submitted after enter")
	}
	if m.Chosen() != "blue" {
		t.Errorf("Chosen = %q, want blue", m.Chosen())
	}
}

func TestMultiChoice_LetterShortcut(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"red", "green"})
	m, _ = m.Update(tea.KeyPressMsg{Code: 'b', Text: "b"})
	if m.Chosen() != "green" {
		t.Errorf("Chosen = %q, want green", m.Chosen())
	}

	m = NewMultiChoice("Pick one", []string{"red", "green"})
	m, _ = m.Update(tea.KeyPressMsg{Code: 'z', Text: "z"})
	if m.Submitted {
		t.Error("out-of-range letter should not submit")
	}
}

func TestMultiChoice_IgnoresKeysAfterSubmit(t *testing.T) {
	m := NewMultiChoice("Pick one", []string{"red", "green"})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 0 || m.ChosenIndex != 0 {
		t.Errorf("selection changed after submit: selected=%d chosen=%d", m.Selected, m.ChosenIndex)
	}
}

func TestProgressBar_Fraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 5, 0},
		{5, 5, 1},
		{2, 4, 0.5},
		{3, 0, 0},
		{7, 5, 1},
	}
	for _, tt := range tests {
		got := NewProgressBar("", tt.done, tt.total, 40).Fraction()
		if got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
}

func testMenu(ran *string) Menu {
	item := func(label string, disabled bool) MenuItem {
		return MenuItem{Label: label, Disabled: disabled, Action: func() tea.Cmd {
			*ran = label
			return func() tea.Msg { return nil }
		}}
	}
	return NewMenu([]MenuItem{
		item("quiz", false),
		item("plan", true),
		item("history", false),
	})
}

func TestMenu_WrapsAndSkipsDisabled(t *testing.T) {
	var ran string
	m := testMenu(&ran)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 2 {
		t.Fatalf("down selected %d, want 2 (disabled skipped)", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 0 {
		t.Fatalf("down from last selected %d, want wrap to 0", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 2 {
		t.Fatalf("up from first selected %d, want wrap to 2", m.Selected)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil || ran != "history" {
		t.Errorf("enter ran %q, want history", ran)
	}
}

func TestMenu_DigitShortcut(t *testing.T) {
	var ran string
	m := testMenu(&ran)

	if _, cmd := m.Update(tea.KeyPressMsg{Code: '2', Text: "2"}); cmd != nil || ran != "" {
		t.Errorf("disabled item ran via shortcut: %q", ran)
	}
	m, cmd := m.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if cmd == nil || ran != "history" || m.Selected != 2 {
		t.Errorf("shortcut 3 ran %q selected %d", ran, m.Selected)
	}
}
