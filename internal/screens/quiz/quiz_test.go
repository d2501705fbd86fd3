package quiz

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/router"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/store"
)

func offlineServices(t *testing.T) (*screens.Services, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	gw := gateway.New(nil, gateway.Options{})
	return &screens.Services{
		User:             "ana",
		DefaultQuestions: 2,
		Records:          st.QuizRecords(),
		Gateway:          gw,
		Generator:        quizgen.NewLLMGenerator(gw, quizgen.DefaultConfig(), nil, nil),
		Grader:           quizgen.NewGrader(gw, nil),
		Adapter:          difficulty.DefaultAdapter(),
		Rewards:          rewards.NewService(st.XP(), nil),
		Logger:           zap.NewNop(),
	}, st
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// run executes cmd and feeds its message back into the screen.
func run(t *testing.T, s *QuizScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := s.Update(cmd())
	return next
}

func TestQuizScreen_FullOfflineQuiz(t *testing.T) {
	svc, st := offlineServices(t)
	s := New(svc, "Fourier")

	_, cmd := s.Update(special(tea.KeyEnter))
	if s.stage != stageLoading {
		t.Fatalf("stage = %v, want loading", s.stage)
	}
	run(t, s, cmd)
	if s.stage != stageQuestion {
		t.Fatalf("stage = %v, want question (err %q)", s.stage, s.errMsg)
	}
	if !s.sess.Snapshot().Placeholder {
		t.Error("offline quiz should use placeholder questions")
	}

	for i := 0; i < 2; i++ {
		_, cmd = s.Update(key('a'))
		if s.stage != stageGrading {
			t.Fatalf("q%d: stage = %v, want grading", i, s.stage)
		}
		run(t, s, cmd)
		if s.stage != stageFeedback {
			t.Fatalf("q%d: stage = %v, want feedback", i, s.stage)
		}
		if !s.result.Correct {
			t.Errorf("q%d: expected correct", i)
		}
		if s.choice.CorrectIndex != 0 {
			t.Errorf("q%d: CorrectIndex = %d, want 0", i, s.choice.CorrectIndex)
		}
		s.Update(special(tea.KeyEnter))
	}

	if s.stage != stageSummary {
		t.Fatalf("stage = %v, want summary", s.stage)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "2/2") {
		t.Errorf("summary should show the score, got:\n%s", view)
	}
	if !strings.Contains(view, "Perfect Fourier") {
		t.Errorf("summary should show the new badge, got:\n%s", view)
	}

	records, err := st.QuizRecords().All(context.Background(), "ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Score != 2 {
		t.Errorf("records = %+v, want one 2/2 record", records)
	}

	_, cmd = s.Update(special(tea.KeyEnter))
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("enter on summary should return home")
	}
}

func TestQuizScreen_EmptyTopic(t *testing.T) {
	svc, _ := offlineServices(t)
	s := New(svc, "")

	_, cmd := s.Update(special(tea.KeyEnter))
	if cmd != nil {
		t.Error("expected no command without a topic")
	}
	if s.stage != stageSetup || s.errMsg == "" {
		t.Errorf("expected setup stage with an error, got stage %v err %q", s.stage, s.errMsg)
	}
}

func TestQuizScreen_SetupKeys(t *testing.T) {
	svc, _ := offlineServices(t)
	s := New(svc, "Sets")

	s.Update(special(tea.KeyTab))
	s.Update(special(tea.KeyTab))
	if s.level != difficulty.Hard {
		t.Errorf("level = %v, want Hard", s.level)
	}
	s.Update(special(tea.KeyTab))
	if s.level != difficulty.Easy {
		t.Errorf("level should wrap to Easy, got %v", s.level)
	}

	s.Update(key('+'))
	if s.count != 3 {
		t.Errorf("count = %d, want 3", s.count)
	}
	for i := 0; i < 5; i++ {
		s.Update(key('-'))
	}
	if s.count != 1 {
		t.Errorf("count should floor at 1, got %d", s.count)
	}
}

func TestQuizScreen_EscPops(t *testing.T) {
	svc, _ := offlineServices(t)
	s := New(svc, "Sets")
	_, cmd := s.Update(special(tea.KeyEscape))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop the screen")
	}
}
