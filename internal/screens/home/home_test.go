package home

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/screens/quiz"
	"github.com/abhisek/edugenie/internal/store"
)

func TestHomeScreen_StatsAndSuggestion(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "home.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	for _, rec := range []store.QuizRecord{
		{User: "ana", Topic: "Sets", Score: 4, Total: 4, Timestamp: 1},
		{User: "ana", Topic: "Limits", Score: 1, Total: 4, Timestamp: 2},
	} {
		if _, err := st.QuizRecords().Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	svc := &screens.Services{
		User:    "ana",
		Records: st.QuizRecords(),
		Gateway: gateway.New(nil, gateway.Options{}),
		Plans:   learningpath.NewService(learningpath.Deps{Records: st.QuizRecords(), Plans: st.Plans()}),
		Logger:  zap.NewNop(),
	}
	h := New(svc)
	h.Update(h.loadStats()())

	if h.quizzes != 2 {
		t.Errorf("quizzes = %d, want 2", h.quizzes)
	}
	if h.accuracy != 5.0/8.0 {
		t.Errorf("accuracy = %v, want 0.625", h.accuracy)
	}
	if h.suggested != "Limits" {
		t.Errorf("suggested = %q, want Limits", h.suggested)
	}

	view := h.View(100, 30)
	if !strings.Contains(view, "Next up: Limits") {
		t.Errorf("view should suggest the weakest topic:\n%s", view)
	}
	if !strings.Contains(view, "Offline") {
		t.Errorf("view should flag offline mode:\n%s", view)
	}

	// The first item opens a quiz prefilled with the suggestion.
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*quiz.QuizScreen); !ok {
		t.Errorf("pushed %T, want *quiz.QuizScreen", push.Screen)
	}
}

func TestHomeScreen_DisabledItemsSkipped(t *testing.T) {
	h := New(&screens.Services{User: "ana", Logger: zap.NewNop()})

	// Learning plan and leaderboard are disabled without their services.
	for _, it := range h.menu.Items {
		if (it.Label == "Learning plan" || it.Label == "Leaderboard") && !it.Disabled {
			t.Errorf("%s should be disabled", it.Label)
		}
	}
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if got := h.menu.Items[h.menu.Selected].Label; got != "History" {
		t.Errorf("selected %q, want History", got)
	}
}
