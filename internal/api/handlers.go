package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/performance"
	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/tutor"
)

// maxBody bounds request bodies; summaries take the longest input.
const maxBody = 1 << 20

type askRequest struct {
	User     string `json:"user"`
	Question string `json:"question"`
}

type askResponse struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	user := strings.TrimSpace(req.User)
	if user == "" {
		respondError(w, http.StatusBadRequest, errors.New("user is required"))
		return
	}
	reply, err := s.tutors.get(user, s.now()).Ask(r.Context(), req.Question)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, askResponse{Reply: reply, Degraded: gateway.IsSentinel(reply)})
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary  string `json:"summary"`
	Degraded bool   `json:"degraded"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := tutor.Summarize(r.Context(), s.deps.Gateway, req.Text)
	if err != nil {
		s.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summarizeResponse{Summary: out, Degraded: gateway.IsSentinel(out)})
}

type startQuizRequest struct {
	User       string `json:"user"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Questions  int    `json:"questions"`
	Fixed      bool   `json:"fixed_difficulty"`
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if !decode(w, r, &req) {
		return
	}
	level := difficulty.Easy
	if req.Difficulty != "" {
		l, err := difficulty.Parse(req.Difficulty)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		level = l
	}
	n := req.Questions
	if n == 0 {
		n = s.cfg.DefaultQuestions
	}

	sess := session.New(session.Deps{
		Records:   s.deps.Records,
		Generator: s.deps.Generator,
		Grader:    s.deps.Grader,
		Adapter:   s.deps.Adapter,
		Rewards:   s.rewardGranter(),
		Metrics:   s.deps.Metrics,
		Logger:    s.logger,
	}, session.Config{FixedDifficulty: req.Fixed})

	if err := sess.Start(r.Context(), req.User, req.Topic, level, n); err != nil {
		s.fail(w, err)
		return
	}
	s.sessions.put(sess, s.now())
	respondJSON(w, http.StatusCreated, newQuizView(sess.Snapshot()))
}

// rewardGranter avoids handing the session a typed nil.
func (s *Server) rewardGranter() session.RewardGranter {
	if s.deps.Rewards == nil {
		return nil
	}
	return s.deps.Rewards
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newQuizView(sess.Snapshot()))
}

type submitAnswerRequest struct {
	Index  *int   `json:"index"`
	Answer string `json:"answer"`
}

type submitAnswerResponse struct {
	Correct     bool     `json:"correct"`
	Feedback    string   `json:"feedback"`
	Explanation string   `json:"explanation,omitempty"`
	Quiz        quizView `json:"quiz"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req submitAnswerRequest
	if !decode(w, r, &req) {
		return
	}
	i := sess.Current()
	if req.Index != nil {
		i = *req.Index
	}

	res, err := sess.SubmitAnswer(r.Context(), i, req.Answer)
	snap := sess.Snapshot()
	if err != nil && !store.IsPersistence(err) {
		s.fail(w, err)
		return
	}
	if err != nil {
		// The attempt finished but its record was not stored.
		s.logger.Error("quiz finished without record", zap.String("session", snap.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	out := submitAnswerResponse{Correct: res.Correct, Feedback: res.Feedback, Quiz: newQuizView(snap)}
	if i >= 0 && i < len(snap.Questions) {
		out.Explanation = snap.Questions[i].Explanation
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id, s.now())
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("unknown quiz session"))
	}
	return sess, ok
}

type historyResponse struct {
	User    string       `json:"user"`
	Records []recordView `json:"records"`
	Topics  []topicView  `json:"topics"`
	Weak    []string     `json:"weak_topics"`
}

type topicView struct {
	Topic    string  `json:"topic"`
	Score    int     `json:"score"`
	Total    int     `json:"total"`
	Attempts int     `json:"attempts"`
	Ratio    float64 `json:"ratio"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	history, err := s.deps.Records.All(r.Context(), user)
	if err != nil {
		s.fail(w, err)
		return
	}

	out := historyResponse{
		User:    user,
		Records: make([]recordView, 0, len(history)),
		Topics:  []topicView{},
		Weak:    performance.WeakTopics(history, 3),
	}
	for _, rec := range history {
		out.Records = append(out.Records, newRecordView(rec))
	}
	for _, st := range performance.TopicRatios(history) {
		out.Topics = append(out.Topics, topicView{
			Topic:    st.Topic,
			Score:    st.Score,
			Total:    st.Total,
			Attempts: st.Attempts,
			Ratio:    st.Ratio(),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type planResponse struct {
	User         string         `json:"user"`
	WeakTopics   []string       `json:"weak_topics"`
	Plan         string         `json:"plan"`
	GeneratedAt  time.Time      `json:"generated_at"`
	StarterTopic string         `json:"starter_topic,omitempty"`
	StarterQuiz  []questionView `json:"starter_quiz,omitempty"`
}

// handlePlan runs a learning cycle, or with ?latest=true returns the last
// saved plan without generating.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if s.deps.Plans == nil {
		respondError(w, http.StatusNotImplemented, errors.New("learning plans are not configured"))
		return
	}
	user := chi.URLParam(r, "user")

	if latest, _ := strconv.ParseBool(r.URL.Query().Get("latest")); latest {
		p, err := s.deps.Plans.Latest(r.Context(), user)
		if err != nil {
			s.fail(w, err)
			return
		}
		if p == nil {
			respondError(w, http.StatusNotFound, errors.New("no learning plan yet"))
			return
		}
		respondJSON(w, http.StatusOK, planResponse{User: user, WeakTopics: p.WeakTopics, Plan: p.Plan, GeneratedAt: p.GeneratedAt})
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	res, err := s.deps.Plans.Run(r.Context(), user, days)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := planResponse{
		User:         user,
		WeakTopics:   res.WeakTopics,
		Plan:         res.Plan,
		GeneratedAt:  res.Saved.GeneratedAt,
		StarterTopic: res.StarterTopic,
	}
	for i, q := range res.StarterQuiz {
		out.StarterQuiz = append(out.StarterQuiz, questionView{Index: i, Prompt: q.Prompt, Options: q.Options})
	}
	respondJSON(w, http.StatusOK, out)
}

type xpResponse struct {
	User   string      `json:"user"`
	XP     int         `json:"xp"`
	Badges []badgeView `json:"badges"`
}

type badgeView struct {
	Name      string    `json:"name"`
	Rarity    string    `json:"rarity"`
	AwardedAt time.Time `json:"awarded_at"`
}

func (s *Server) handleXP(w http.ResponseWriter, r *http.Request) {
	if s.deps.Rewards == nil {
		respondError(w, http.StatusNotImplemented, errors.New("rewards are not configured"))
		return
	}
	user := chi.URLParam(r, "user")
	xp, err := s.deps.Rewards.XP(r.Context(), user)
	if err != nil {
		s.fail(w, err)
		return
	}
	badges, err := s.deps.Rewards.Badges(r.Context(), user)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := xpResponse{User: user, XP: xp, Badges: make([]badgeView, 0, len(badges))}
	for _, b := range badges {
		out.Badges = append(out.Badges, badgeView(b))
	}
	respondJSON(w, http.StatusOK, out)
}

type leaderboardEntry struct {
	Rank int    `json:"rank"`
	User string `json:"user"`
	XP   int    `json:"xp"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Rewards == nil {
		respondError(w, http.StatusNotImplemented, errors.New("rewards are not configured"))
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	board, err := s.deps.Rewards.Leaderboard(r.Context(), limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]leaderboardEntry, 0, len(board))
	for i, e := range board {
		out = append(out, leaderboardEntry{Rank: i + 1, User: e.User, XP: e.XP})
	}
	respondJSON(w, http.StatusOK, out)
}

// fail maps service errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, session.ErrInvalidInput), errors.Is(err, tutor.ErrEmptyInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	respondError(w, status, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
