// Package tutor is the conversational side of EduGenie: a persona-driven
// chat with short rolling context, and a study-note summarizer.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
)

// DefaultPersona is the tutor's system prompt.
const DefaultPersona = "You are EduGenie, a friendly patient AI tutor. " +
	"Provide clear, step-by-step explanations, short examples, " +
	"and short quizzes when appropriate."

const (
	// contextTurns is how many messages, the new question included, are
	// sent with each request.
	contextTurns = 6

	// maxHistory bounds the stored conversation.
	maxHistory = 50
)

// ErrEmptyInput is returned for blank questions or texts.
var ErrEmptyInput = errors.New("empty input")

// Agent is one learner's tutor conversation. Safe for concurrent use.
type Agent struct {
	gw      *gateway.Gateway
	persona string
	logger  *zap.Logger

	mu      sync.Mutex
	history []llm.Message
}

// NewAgent creates a tutor. An empty persona uses DefaultPersona.
func NewAgent(gw *gateway.Gateway, persona string, logger *zap.Logger) *Agent {
	if persona == "" {
		persona = DefaultPersona
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{gw: gw, persona: persona, logger: logger}
}

// Ask sends question with the most recent turns and returns the reply.
// Degraded replies are returned verbatim and leave the history untouched.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyInput
	}
	turn := llm.Message{Role: llm.RoleUser, Content: question}

	a.mu.Lock()
	window := recent(a.history, contextTurns-1)
	window = append(window, turn)
	a.mu.Unlock()

	reply := a.gw.Chat(ctx, a.persona, window, llm.PurposeTutor)
	if gateway.IsSentinel(reply) {
		a.logger.Debug("tutor reply degraded", zap.String("reply", reply))
		return reply, nil
	}

	a.mu.Lock()
	a.history = append(a.history, turn, llm.Message{Role: llm.RoleAssistant, Content: reply})
	if len(a.history) > maxHistory {
		a.history = append([]llm.Message(nil), a.history[len(a.history)-maxHistory:]...)
	}
	a.mu.Unlock()
	return reply, nil
}

// recent copies the last n messages.
func recent(history []llm.Message, n int) []llm.Message {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]llm.Message, len(history), len(history)+1)
	copy(out, history)
	return out
}

// History returns a copy of the conversation so far.
func (a *Agent) History() []llm.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]llm.Message(nil), a.history...)
}

// Reset clears the conversation.
func (a *Agent) Reset() {
	a.mu.Lock()
	a.history = nil
	a.mu.Unlock()
}

// Summarize turns text into bullet-point notes and five flashcards.
func (a *Agent) Summarize(ctx context.Context, text string) (string, error) {
	return Summarize(ctx, a.gw, text)
}

// Summarize is the stateless form of Agent.Summarize.
func Summarize(ctx context.Context, gw *gateway.Gateway, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	return gw.Generate(ctx, gateway.Prompt{
		Text:    summarizePrompt(text),
		Purpose: llm.PurposeSummarize,
	}), nil
}

func summarizePrompt(text string) string {
	return fmt.Sprintf("You are a study assistant. Summarize the following text in concise bullet points "+
		"and generate 5 flashcard Q&A pairs for revision.\n\nText:\n%s", text)
}
