package session

import (
	"time"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/store"
)

// Snapshot is a consistent copy of a session's state for display.
type Snapshot struct {
	ID        string
	User      string
	Topic     string
	Phase     Phase
	Requested difficulty.Level
	Effective difficulty.Level
	Questions []quizgen.Question
	Answers   []string
	Results   []quizgen.GradingResult
	Current   int
	Score     int
	Accuracy  float64

	// Placeholder is true when the quiz came from fallback questions.
	Placeholder    bool
	FallbackReason quizgen.FallbackReason

	StartedAt time.Time
	Record    *store.QuizRecord
	Award     *rewards.Award
}

// Snapshot copies the session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:             s.id,
		User:           s.user,
		Topic:          s.topic,
		Phase:          s.phase,
		Requested:      s.requested,
		Effective:      s.effective,
		Questions:      append([]quizgen.Question(nil), s.questions...),
		Answers:        append([]string(nil), s.answers...),
		Results:        append([]quizgen.GradingResult(nil), s.results...),
		Current:        s.current,
		Score:          s.score,
		Placeholder:    s.outcome.Kind == quizgen.OutcomeFallback,
		FallbackReason: s.outcome.Reason,
		StartedAt:      s.startedAt,
		Award:          s.award,
	}
	if len(s.results) > 0 {
		snap.Accuracy = float64(s.score) / float64(len(s.results))
	}
	if s.record != nil {
		rec := *s.record
		snap.Record = &rec
	}
	return snap
}
