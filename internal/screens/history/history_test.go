package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/store"
)

func TestHistoryScreen_LoadsNewestFirst(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	for _, rec := range []store.QuizRecord{
		{User: "ana", Topic: "Sets", Score: 2, Total: 4, Timestamp: 100},
		{User: "ana", Topic: "Limits", Score: 3, Total: 3, Timestamp: 200},
	} {
		if _, err := st.QuizRecords().Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	s := New(&screens.Services{User: "ana", Records: st.QuizRecords(), Rewards: rewards.NewService(st.XP(), nil)})
	s.Update(s.Init()())

	if !s.loaded || s.errMsg != "" {
		t.Fatalf("loaded=%v err=%q", s.loaded, s.errMsg)
	}
	if len(s.records) != 2 || s.records[0].Topic != "Limits" {
		t.Errorf("records not newest first: %+v", s.records)
	}
	if len(s.topics) != 2 {
		t.Errorf("topics = %d, want 2", len(s.topics))
	}

	view := s.View(100, 30)
	if !strings.Contains(view, "Limits") || !strings.Contains(view, "Sets") {
		t.Errorf("view missing topics:\n%s", view)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selection should stop at the last row, got %d", s.selected)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if !s.byTopic || s.selected != 0 {
		t.Errorf("tab should switch to topics and reset selection")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	s := New(&screens.Services{User: "bo", Records: st.QuizRecords()})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "No quizzes yet") {
		t.Error("expected empty-state message")
	}
}
