package tutor

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/screens"
	agent "github.com/abhisek/edugenie/internal/tutor"
)

func newScreen(t *testing.T, p llm.Provider) *ChatScreen {
	t.Helper()
	gw := gateway.New(p, gateway.Options{})
	return New(&screens.Services{User: "ana", Tutor: agent.NewAgent(gw, "", nil)})
}

func typeText(s *ChatScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestChatScreen_AskAndReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("A limit describes where a function heads."))
	s := newScreen(t, mock)

	typeText(s, "limits?")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil || !s.waiting {
		t.Fatal("expected a pending request")
	}
	s.Update(cmd())

	if s.waiting {
		t.Error("expected waiting cleared")
	}
	if len(s.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(s.lines))
	}
	if s.lines[1].text != "A limit describes where a function heads." || s.lines[1].degraded {
		t.Errorf("unexpected reply line %+v", s.lines[1])
	}
	if s.input.Value() != "" {
		t.Error("input should be cleared after sending")
	}
}

func TestChatScreen_OfflineReplyIsMarked(t *testing.T) {
	s := newScreen(t, nil)

	typeText(s, "hello")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())

	if !s.lines[len(s.lines)-1].degraded {
		t.Error("offline reply should be marked degraded")
	}
}

func TestChatScreen_EmptyInputIgnored(t *testing.T) {
	s := newScreen(t, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no request for empty input")
	}
}
