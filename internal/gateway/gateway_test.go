package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/edugenie/internal/llm"
)

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "slow" }

func TestGenerate_OfflineEchoesPrompt(t *testing.T) {
	long := strings.Repeat("é", 250)
	for _, g := range []*Gateway{New(nil, Options{}), New(llm.NewOfflineProvider(), Options{})} {
		got := g.Generate(context.Background(), Prompt{Text: long})
		want := UnavailablePrefix + strings.Repeat("é", 200)
		if got != want {
			t.Fatalf("Generate() = %q, want 200 runes echoed", got)
		}
		if !IsUnavailable(got) || !IsSentinel(got) {
			t.Fatal("expected unavailable sentinel")
		}
	}
}

func TestGenerate_OfflineIsDeterministic(t *testing.T) {
	g := New(nil, Options{})
	a := g.Generate(context.Background(), Prompt{Text: "Explain Fourier series"})
	b := g.Generate(context.Background(), Prompt{Text: "Explain Fourier series"})
	if a != b || a != "[UNAVAILABLE] Explain Fourier series" {
		t.Fatalf("unstable offline output: %q vs %q", a, b)
	}
}

func TestGenerate_ReturnsModelText(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("Fourier series decompose periodic signals."))
	g := New(mock, Options{MaxTokens: 300, Temperature: 0.4})

	got := g.Generate(context.Background(), Prompt{System: "tutor", Text: "Explain Fourier series", Purpose: llm.PurposeTutor})
	if got != "Fourier series decompose periodic signals." {
		t.Fatalf("Generate() = %q", got)
	}

	req, _ := mock.LastCall()
	if req.MaxTokens != 300 || req.Temperature != 0.4 {
		t.Fatalf("defaults not applied: %+v", req)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "Explain Fourier series" || req.System != "tutor" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestGenerate_ErrorSentinel(t *testing.T) {
	mock := llm.NewMockProvider(llm.ErrorResponse(&llm.ErrProviderUnavailable{Err: errors.New("connection refused")}))
	g := New(mock, Options{})

	got := g.Generate(context.Background(), Prompt{Text: "anything"})
	if !strings.HasPrefix(got, ErrorPrefix) || !strings.Contains(got, "connection refused") {
		t.Fatalf("Generate() = %q", got)
	}
	if IsUnavailable(got) {
		t.Fatal("error sentinel must not look like mock mode")
	}
}

func TestGenerate_OfflineErrorFromChain(t *testing.T) {
	mock := llm.NewMockProvider(llm.ErrorResponse(llm.ErrOffline))
	g := New(mock, Options{})

	if got := g.Generate(context.Background(), Prompt{Text: "hi"}); got != "[UNAVAILABLE] hi" {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	g := New(blockingProvider{}, Options{Timeout: 20 * time.Millisecond})

	got := g.Generate(context.Background(), Prompt{Text: "slow"})
	if got != "[ERROR] timeout after 20ms" {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestGenerate_CallerCancelIsError(t *testing.T) {
	g := New(blockingProvider{}, Options{Timeout: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := g.Generate(ctx, Prompt{Text: "x"})
	if !strings.HasPrefix(got, ErrorPrefix) || strings.Contains(got, "timeout after") {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestChat_SendsHistoryAndEchoesLastUserTurn(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "What is a vector?"},
		{Role: llm.RoleAssistant, Content: "A quantity with magnitude and direction."},
		{Role: llm.RoleUser, Content: "Give an example"},
	}

	offline := New(nil, Options{})
	if got := offline.Chat(context.Background(), "persona", history, llm.PurposeTutor); got != "[UNAVAILABLE] Give an example" {
		t.Fatalf("offline Chat() = %q", got)
	}

	mock := llm.NewMockProvider(llm.TextResponse("Velocity."))
	g := New(mock, Options{})
	if got := g.Chat(context.Background(), "persona", history, llm.PurposeTutor); got != "Velocity." {
		t.Fatalf("Chat() = %q", got)
	}
	req, _ := mock.LastCall()
	if len(req.Messages) != 3 || req.System != "persona" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"[UNAVAILABLE] x", true},
		{"[ERROR] boom", true},
		{"[ERROR]boom", false},
		{`{"questions":[]}`, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSentinel(tt.in); got != tt.want {
			t.Errorf("IsSentinel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModelIDAndOffline(t *testing.T) {
	if g := New(nil, Options{}); !g.Offline() || g.ModelID() != "offline" {
		t.Fatalf("nil provider: offline=%v model=%q", g.Offline(), g.ModelID())
	}
	if g := New(llm.NewMockProvider(), Options{}); g.Offline() || g.ModelID() != "mock" {
		t.Fatalf("mock provider: offline=%v model=%q", g.Offline(), g.ModelID())
	}
}

func TestGenerate_TemperatureOverride(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("a"), llm.TextResponse("b"))
	g := New(mock, Options{Temperature: 0.7})

	g.Generate(context.Background(), Prompt{Text: "default"})
	req, _ := mock.LastCall()
	if req.Temperature != 0.7 {
		t.Fatalf("unset temperature = %v, want gateway default 0.7", req.Temperature)
	}

	g.Generate(context.Background(), Prompt{Text: "greedy", Temperature: Float(0)})
	req, _ = mock.LastCall()
	if req.Temperature != 0 {
		t.Fatalf("explicit zero temperature replaced with %v", req.Temperature)
	}
}
