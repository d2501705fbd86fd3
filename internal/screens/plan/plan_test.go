package plan

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/screens/quiz"
	"github.com/abhisek/edugenie/internal/store"
)

func offlineServices(t *testing.T) (*screens.Services, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "plan.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	gw := gateway.New(nil, gateway.Options{})
	gen := quizgen.NewLLMGenerator(gw, quizgen.DefaultConfig(), nil, nil)
	svc := &screens.Services{
		User:      "ana",
		Records:   st.QuizRecords(),
		Gateway:   gw,
		Generator: gen,
		Plans: learningpath.NewService(learningpath.Deps{
			Records:   st.QuizRecords(),
			Plans:     st.Plans(),
			Gateway:   gw,
			Generator: gen,
		}),
	}
	return svc, st
}

func TestPlanScreen_NoHistory(t *testing.T) {
	svc, _ := offlineServices(t)
	s := New(svc, 3)

	if view := s.View(100, 30); !strings.Contains(view, "Analysing") {
		t.Errorf("expected loading view, got:\n%s", view)
	}
	s.Update(s.Init()())

	if s.errMsg != "" {
		t.Fatalf("unexpected error: %s", s.errMsg)
	}
	if !strings.Contains(s.View(100, 30), "No weak topics detected") {
		t.Errorf("view missing no-weak-topics message:\n%s", s.View(100, 30))
	}
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("enter should do nothing without a starter quiz")
	}
	if len(s.KeyHints()) != 1 {
		t.Errorf("hints = %v, want only Esc", s.KeyHints())
	}
}

func TestPlanScreen_StarterQuiz(t *testing.T) {
	svc, st := offlineServices(t)
	ctx := context.Background()
	for _, rec := range []store.QuizRecord{
		{User: "ana", Topic: "Limits", Score: 1, Total: 5, Timestamp: 100},
		{User: "ana", Topic: "Sets", Score: 5, Total: 5, Timestamp: 200},
	} {
		if _, err := st.QuizRecords().Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	s := New(svc, 3)
	s.Update(s.Init()())

	if s.result == nil || s.result.StarterTopic != "Limits" {
		t.Fatalf("starter topic = %+v, want Limits", s.result)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Focus topics: Limits, Sets") {
		t.Errorf("view missing focus topics:\n%s", view)
	}
	if !strings.Contains(view, "Starter quiz ready: 5 questions on Limits.") {
		t.Errorf("view missing starter quiz hint:\n%s", view)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
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
