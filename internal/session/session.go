// Package session runs one adaptive quiz attempt from question generation
// to the persisted result.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/store"
)

// RewardGranter credits a finished quiz.
type RewardGranter interface {
	AwardQuiz(ctx context.Context, rec store.QuizRecord, level difficulty.Level) (*rewards.Award, error)
}

// Deps are the collaborators of a Session.
type Deps struct {
	Records   store.QuizRecordRepo
	Generator quizgen.Generator
	Grader    quizgen.AnswerGrader
	Adapter   difficulty.Adapter

	// Optional.
	Rewards RewardGranter
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Clock   func() time.Time
}

// Config tunes a single session.
type Config struct {
	// FixedDifficulty skips adaptation and uses the requested level.
	FixedDifficulty bool

	// PriorQuestions are prompts to avoid repeating.
	PriorQuestions []string
}

// Session is a single quiz attempt. Callers are expected to serialize
// calls; the mutex lets a registry share one handle between requests.
type Session struct {
	deps Deps
	cfg  Config
	id   string

	mu        sync.Mutex
	phase     Phase
	user      string
	topic     string
	requested difficulty.Level
	effective difficulty.Level
	questions []quizgen.Question
	results   []quizgen.GradingResult
	answers   []string
	outcome   quizgen.ParseOutcome
	current   int
	score     int
	startedAt time.Time
	record    *store.QuizRecord
	award     *rewards.Award
}

// New creates an idle session.
func New(deps Deps, cfg Config) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Adapter.Window <= 0 {
		deps.Adapter = difficulty.DefaultAdapter()
	}
	return &Session{deps: deps, cfg: cfg, id: uuid.NewString()}
}

// Start picks the effective difficulty from the user's recent history,
// generates n questions and begins the quiz. On any error the session
// stays Idle.
func (s *Session) Start(ctx context.Context, user, topic string, requested difficulty.Level, n int) error {
	user, topic = strings.TrimSpace(user), strings.TrimSpace(topic)

	s.mu.Lock()
	if s.phase != PhaseIdle {
		defer s.mu.Unlock()
		return &InvalidStateError{Op: "start", Phase: s.phase}
	}
	switch {
	case user == "":
		s.mu.Unlock()
		return fmt.Errorf("%w: user is required", ErrInvalidInput)
	case topic == "":
		s.mu.Unlock()
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	case n < 1 || n > quizgen.MaxQuestions:
		s.mu.Unlock()
		return fmt.Errorf("%w: question count must be between 1 and %d, got %d", ErrInvalidInput, quizgen.MaxQuestions, n)
	case !requested.Valid():
		s.mu.Unlock()
		return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidInput, int(requested))
	}
	s.phase = PhaseRequesting
	s.mu.Unlock()

	effective, questions, outcome, err := s.prepare(ctx, user, topic, requested, n)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = PhaseIdle
		return err
	}

	s.user, s.topic = user, topic
	s.requested, s.effective = requested, effective
	s.questions = questions
	s.outcome = outcome
	s.results = make([]quizgen.GradingResult, 0, len(questions))
	s.answers = make([]string, 0, len(questions))
	s.current, s.score = 0, 0
	s.startedAt = s.deps.Clock()
	s.phase = PhaseInProgress

	s.deps.Logger.Info("quiz started",
		zap.String("session", s.id),
		zap.String("user", user),
		zap.String("topic", topic),
		zap.Stringer("requested", requested),
		zap.Stringer("effective", effective),
		zap.Int("questions", n),
		zap.Stringer("outcome", outcome.Kind))
	return nil
}

// prepare runs the blocking part of Start without holding the lock.
func (s *Session) prepare(ctx context.Context, user, topic string, requested difficulty.Level, n int) (difficulty.Level, []quizgen.Question, quizgen.ParseOutcome, error) {
	effective := requested
	if !s.cfg.FixedDifficulty {
		history, err := s.deps.Records.Recent(ctx, user, s.deps.Adapter.Window)
		if err != nil {
			return 0, nil, quizgen.ParseOutcome{}, fmt.Errorf("read quiz history: %w", err)
		}
		effective = s.deps.Adapter.Adapt(history, requested)
	}

	outcome, err := s.deps.Generator.Generate(ctx, quizgen.GenerateInput{
		Topic:          topic,
		Level:          effective,
		N:              n,
		PriorQuestions: s.cfg.PriorQuestions,
	})
	if err != nil {
		return 0, nil, quizgen.ParseOutcome{}, fmt.Errorf("generate quiz: %w", err)
	}
	if len(outcome.Questions) != n {
		return 0, nil, quizgen.ParseOutcome{}, fmt.Errorf("generate quiz: got %d questions, want %d", len(outcome.Questions), n)
	}
	return effective, outcome.Questions, outcome, nil
}

// SubmitAnswer grades the answer to question i, which must be the current
// question. Answering the last question finishes the session and appends
// its record; a store failure is returned but the session still finishes.
func (s *Session) SubmitAnswer(ctx context.Context, i int, answer string) (quizgen.GradingResult, error) {
	s.mu.Lock()
	if s.phase != PhaseInProgress {
		defer s.mu.Unlock()
		return quizgen.GradingResult{}, &InvalidStateError{Op: "submit answer", Phase: s.phase, Want: s.current, Got: s.current}
	}
	if i != s.current {
		defer s.mu.Unlock()
		return quizgen.GradingResult{}, &InvalidStateError{Op: "submit answer", Phase: s.phase, Want: s.current, Got: i}
	}
	q := s.questions[i]
	s.phase = PhaseGrading
	s.mu.Unlock()

	res := s.deps.Grader.Grade(ctx, q, answer)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, res)
	s.answers = append(s.answers, answer)
	if res.Correct {
		s.score++
	}
	s.current++

	if s.current < len(s.questions) {
		s.phase = PhaseInProgress
		return res, nil
	}
	return res, s.finish(ctx)
}

// finish writes the single record for this attempt. Called with mu held.
func (s *Session) finish(ctx context.Context) error {
	s.phase = PhaseFinished
	rec := store.QuizRecord{
		User:      s.user,
		Topic:     s.topic,
		Score:     s.score,
		Total:     len(s.questions),
		Timestamp: s.deps.Clock().Unix(),
	}

	saved, err := s.deps.Records.Append(ctx, rec)
	if err != nil {
		s.record = &rec
		s.deps.Logger.Warn("quiz record not saved",
			zap.String("session", s.id),
			zap.String("user", s.user),
			zap.Error(err))
		return fmt.Errorf("save quiz record: %w", err)
	}
	s.record = &saved

	s.deps.Metrics.QuizFinished(strings.ToLower(s.effective.String()))
	s.deps.Logger.Info("quiz finished",
		zap.String("session", s.id),
		zap.String("user", s.user),
		zap.String("topic", s.topic),
		zap.Int("score", saved.Score),
		zap.Int("total", saved.Total))

	if s.deps.Rewards != nil {
		award, err := s.deps.Rewards.AwardQuiz(ctx, saved, s.effective)
		if err != nil {
			s.deps.Logger.Warn("quiz reward failed", zap.String("session", s.id), zap.Error(err))
		}
		s.award = award
	}
	return nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Current is the index of the question awaiting an answer.
func (s *Session) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Effective is the difficulty the quiz was generated at.
func (s *Session) Effective() difficulty.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective
}

// Questions returns a copy of the quiz questions.
func (s *Session) Questions() []quizgen.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]quizgen.Question(nil), s.questions...)
}

// Record returns the finished attempt's record, or nil before finishing.
// Its ID is zero if the store rejected it.
func (s *Session) Record() *store.QuizRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	rec := *s.record
	return &rec
}

// Award returns the reward for a finished quiz, if any was granted.
func (s *Session) Award() *rewards.Award {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.award
}
