package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
)

func TestAsk_SendsRecentContext(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := 1; i <= 4; i++ {
		mock.AddResponse(llm.TextResponse(fmt.Sprintf("answer %d", i)))
	}
	agent := NewAgent(gateway.New(mock, gateway.Options{}), "", nil)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		reply, err := agent.Ask(ctx, fmt.Sprintf("question %d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("answer %d", i), reply)
	}

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, DefaultPersona, req.System)
	require.Len(t, req.Messages, contextTurns)
	assert.Equal(t, "answer 1", req.Messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, req.Messages[0].Role)
	assert.Equal(t, "question 4", req.Messages[5].Content)
	assert.Equal(t, llm.RoleUser, req.Messages[5].Role)

	assert.Len(t, agent.History(), 8)
}

func TestAsk_DegradedReplyNotRemembered(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.TextResponse("Newton's first law is about inertia."),
		llm.ErrorResponse(errors.New("upstream 502")),
	)
	agent := NewAgent(gateway.New(mock, gateway.Options{}), "", nil)
	ctx := context.Background()

	_, err := agent.Ask(ctx, "What is Newton's first law?")
	require.NoError(t, err)

	reply, err := agent.Ask(ctx, "And the second?")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply, gateway.ErrorPrefix), reply)
	assert.Len(t, agent.History(), 2)
}

func TestAsk_OfflineEchoesQuestion(t *testing.T) {
	agent := NewAgent(gateway.New(nil, gateway.Options{}), "", nil)

	reply, err := agent.Ask(context.Background(), "Explain photosynthesis")
	require.NoError(t, err)
	assert.Equal(t, "[UNAVAILABLE] Explain photosynthesis", reply)
	assert.Empty(t, agent.History())
}

func TestAsk_EmptyQuestion(t *testing.T) {
	agent := NewAgent(gateway.New(nil, gateway.Options{}), "", nil)
	_, err := agent.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestReset(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("hi"))
	agent := NewAgent(gateway.New(mock, gateway.Options{}), "custom persona", nil)
	_, err := agent.Ask(context.Background(), "hello")
	require.NoError(t, err)

	req, _ := mock.LastCall()
	assert.Equal(t, "custom persona", req.System)

	agent.Reset()
	assert.Empty(t, agent.History())
}

func TestSummarize(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("- point\nQ: a\nA: b"))
	gw := gateway.New(mock, gateway.Options{})

	out, err := Summarize(context.Background(), gw, "Cells are the basic unit of life.")
	require.NoError(t, err)
	assert.Equal(t, "- point\nQ: a\nA: b", out)

	req, _ := mock.LastCall()
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "generate 5 flashcard Q&A pairs")
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "Text:\nCells are the basic unit of life."))

	_, err = Summarize(context.Background(), gw, "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}
