package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/tutor"
)

// newOfflineServer wires the API to an offline gateway and a real SQLite
// store, so every quiz is served from placeholder questions.
func newOfflineServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New()
	gw := gateway.New(nil, gateway.Options{})
	gen := quizgen.NewLLMGenerator(gw, quizgen.DefaultConfig(), m, nil)

	srv := New(Deps{
		Records:   st.QuizRecords(),
		Gateway:   gw,
		Generator: gen,
		Grader:    quizgen.NewGrader(gw, nil),
		Adapter:   difficulty.DefaultAdapter(),
		Rewards:   rewards.NewService(st.XP(), nil),
		Plans: learningpath.NewService(learningpath.Deps{
			Records:   st.QuizRecords(),
			Plans:     st.Plans(),
			Gateway:   gw,
			Generator: gen,
		}),
		Metrics: m,
	}, Config{SessionTTL: time.Minute, DefaultQuestions: 3})
	return srv, st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestQuizFlowOffline(t *testing.T) {
	srv, st := newOfflineServer(t)

	rec := do(t, srv, http.MethodPost, "/api/quizzes", startQuizRequest{User: "ana", Topic: "Fourier"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quiz := decodeBody[quizView](t, rec)

	assert.Equal(t, session.PhaseInProgress, quiz.Phase)
	assert.True(t, quiz.Placeholder)
	assert.Equal(t, string(quizgen.ReasonUnavailable), quiz.FallbackReason)
	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, "SAMPLE: Fourier Q1", quiz.Questions[0].Prompt)
	assert.Empty(t, quiz.Questions[0].CorrectAnswer)

	var last submitAnswerResponse
	for i := 0; i < 3; i++ {
		rec = do(t, srv, http.MethodPost, "/api/quizzes/"+quiz.ID+"/answers", submitAnswerRequest{Answer: "A"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decodeBody[submitAnswerResponse](t, rec)
		assert.True(t, last.Correct)
		assert.Equal(t, quizgen.PlaceholderExplanation, last.Explanation)
	}

	assert.Equal(t, session.PhaseFinished, last.Quiz.Phase)
	assert.Equal(t, 3, last.Quiz.Score)
	require.NotNil(t, last.Quiz.Record)
	assert.Equal(t, 3, last.Quiz.Record.Total)
	require.NotNil(t, last.Quiz.Award)
	assert.Equal(t, rewards.XPFor(3, 3, difficulty.Easy), last.Quiz.Award.XP)
	assert.Equal(t, "Perfect Fourier", last.Quiz.Award.Badge)
	assert.Equal(t, "A", last.Quiz.Questions[0].CorrectAnswer)

	records, err := st.QuizRecords().All(t.Context(), "ana")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// Answering a finished quiz is a state conflict.
	rec = do(t, srv, http.MethodPost, "/api/quizzes/"+quiz.ID+"/answers", submitAnswerRequest{Answer: "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/quizzes/"+quiz.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.PhaseFinished, decodeBody[quizView](t, rec).Phase)
}

func TestStartQuizValidation(t *testing.T) {
	srv, _ := newOfflineServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing user", startQuizRequest{Topic: "Fourier"}},
		{"missing topic", startQuizRequest{User: "ana"}},
		{"bad difficulty", startQuizRequest{User: "ana", Topic: "Fourier", Difficulty: "insane"}},
		{"negative count", startQuizRequest{User: "ana", Topic: "Fourier", Questions: -2}},
		{"count too large", startQuizRequest{User: "ana", Topic: "Fourier", Questions: 1_000_000_000}},
		{"not json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/quizzes", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSubmitAnswerErrors(t *testing.T) {
	srv, _ := newOfflineServer(t)

	rec := do(t, srv, http.MethodPost, "/api/quizzes/nope/answers", submitAnswerRequest{Answer: "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/quizzes", startQuizRequest{User: "ana", Topic: "Sets", Questions: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	quiz := decodeBody[quizView](t, rec)

	wrong := 1
	rec = do(t, srv, http.MethodPost, "/api/quizzes/"+quiz.ID+"/answers", submitAnswerRequest{Index: &wrong, Answer: "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHistoryXPAndLeaderboard(t *testing.T) {
	srv, st := newOfflineServer(t)
	ctx := t.Context()

	_, err := st.QuizRecords().Append(ctx, store.QuizRecord{User: "ana", Topic: "Fourier", Score: 1, Total: 4, Timestamp: 100})
	require.NoError(t, err)
	_, err = st.QuizRecords().Append(ctx, store.QuizRecord{User: "ana", Topic: "Sets", Score: 4, Total: 4, Timestamp: 200})
	require.NoError(t, err)
	require.NoError(t, st.XP().AddXP(ctx, "ana", 40))
	require.NoError(t, st.XP().AddXP(ctx, "bo", 90))

	rec := do(t, srv, http.MethodGet, "/api/users/ana/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decodeBody[historyResponse](t, rec)
	assert.Len(t, hist.Records, 2)
	assert.Len(t, hist.Topics, 2)
	require.NotEmpty(t, hist.Weak)
	assert.Equal(t, "Fourier", hist.Weak[0])

	rec = do(t, srv, http.MethodGet, "/api/users/ana/xp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40, decodeBody[xpResponse](t, rec).XP)

	rec = do(t, srv, http.MethodGet, "/api/leaderboard?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeBody[[]leaderboardEntry](t, rec)
	require.Len(t, board, 1)
	assert.Equal(t, leaderboardEntry{Rank: 1, User: "bo", XP: 90}, board[0])

	rec = do(t, srv, http.MethodGet, "/api/leaderboard?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanWithoutHistory(t *testing.T) {
	srv, _ := newOfflineServer(t)

	rec := do(t, srv, http.MethodGet, "/api/users/ana/plan?latest=true", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/users/ana/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	plan := decodeBody[planResponse](t, rec)
	assert.Equal(t, learningpath.NoWeakTopicsMessage, plan.Plan)
	assert.Empty(t, plan.StarterQuiz)

	rec = do(t, srv, http.MethodGet, "/api/users/ana/plan?latest=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, learningpath.NoWeakTopicsMessage, decodeBody[planResponse](t, rec).Plan)
}

func TestAskAndSummarizeOffline(t *testing.T) {
	srv, _ := newOfflineServer(t)

	rec := do(t, srv, http.MethodPost, "/api/ask", askRequest{User: "ana", Question: "What is a limit?"})
	require.Equal(t, http.StatusOK, rec.Code)
	ask := decodeBody[askResponse](t, rec)
	assert.True(t, ask.Degraded)
	assert.True(t, gateway.IsUnavailable(ask.Reply))

	rec = do(t, srv, http.MethodPost, "/api/ask", askRequest{User: "ana", Question: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/ask", askRequest{Question: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/summarize", summarizeRequest{Text: "Photosynthesis converts light."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[summarizeResponse](t, rec).Degraded)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newOfflineServer(t)

	rec := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/quizzes", startQuizRequest{User: "ana", Topic: "Sets"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "edugenie_http_requests_total"))
	assert.True(t, strings.Contains(body, `edugenie_quiz_fallbacks_total{reason="unavailable"} 1`))
}

func TestRegistrySweep(t *testing.T) {
	reg := newRegistry(time.Minute)
	t0 := time.Unix(1_760_000_000, 0)

	a := session.New(session.Deps{}, session.Config{})
	b := session.New(session.Deps{}, session.Config{})
	reg.put(a, t0)
	reg.put(b, t0)

	_, ok := reg.get(b.ID(), t0.Add(50*time.Second))
	require.True(t, ok)

	assert.Equal(t, 1, reg.sweep(t0.Add(90*time.Second)))
	assert.Equal(t, 1, reg.len())
	_, ok = reg.get(a.ID(), t0.Add(90*time.Second))
	assert.False(t, ok)
	_, ok = reg.get(b.ID(), t0.Add(90*time.Second))
	assert.True(t, ok)
}

func TestTutorsSweep(t *testing.T) {
	created := 0
	tt := newTutors(time.Minute, func() *tutor.Agent {
		created++
		return tutor.NewAgent(nil, "", nil)
	})
	t0 := time.Unix(1_760_000_000, 0)

	ana := tt.get("ana", t0)
	tt.get("ben", t0)
	assert.Same(t, ana, tt.get("ana", t0.Add(50*time.Second)))
	assert.Equal(t, 2, created)

	assert.Equal(t, 1, tt.sweep(t0.Add(90*time.Second)))
	assert.Equal(t, 1, tt.len())

	tt.get("ben", t0.Add(100*time.Second))
	assert.Equal(t, 3, created, "expired conversation starts fresh")
	assert.Equal(t, 0, newTutors(0, nil).sweep(t0))
}
