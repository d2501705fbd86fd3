// Package learningpath closes the loop from quiz history to a study plan:
// find weak topics, ask the tutor model for a plan and prepare a starter
// quiz for the weakest topic.
package learningpath

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/performance"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/store"
)

// NoWeakTopicsMessage is the plan text when history shows no weak topics.
const NoWeakTopicsMessage = "No weak topics detected — keep practicing and take a diagnostic quiz!"

const (
	DefaultDays      = 3
	weakTopicCount   = 3
	starterQuestions = 5
)

// Result is one learning cycle.
type Result struct {
	User       string
	WeakTopics []string
	Plan       string

	// StarterTopic and StarterQuiz are empty when there are no weak topics.
	StarterTopic string
	StarterQuiz  []quizgen.Question

	// Saved is the persisted plan row.
	Saved store.LearningPlan
}

// Deps are the collaborators of a Service.
type Deps struct {
	Records   store.QuizRecordRepo
	Plans     store.PlanRepo
	Gateway   *gateway.Gateway
	Generator quizgen.Generator
	Logger    *zap.Logger
}

// Service runs learning cycles.
type Service struct {
	deps Deps
	now  func() time.Time
}

func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Service{deps: deps, now: time.Now}
}

// Run analyses the user's history, generates a days-long plan and a starter
// quiz concurrently, and saves the plan. When saving fails the generated
// result is still returned alongside the error.
func (s *Service) Run(ctx context.Context, user string, days int) (*Result, error) {
	if days <= 0 {
		days = DefaultDays
	}
	history, err := s.deps.Records.All(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("read quiz history: %w", err)
	}

	res := &Result{User: user, WeakTopics: performance.WeakTopics(history, weakTopicCount)}

	if len(res.WeakTopics) == 0 {
		res.Plan = NoWeakTopicsMessage
	} else {
		res.StarterTopic = res.WeakTopics[0]

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			res.Plan = s.deps.Gateway.Generate(gctx, PlanPrompt(res.WeakTopics, days))
			return nil
		})
		g.Go(func() error {
			out, err := s.deps.Generator.Generate(gctx, quizgen.GenerateInput{
				Topic: res.StarterTopic,
				Level: difficulty.Easy,
				N:     starterQuestions,
			})
			if err != nil {
				return fmt.Errorf("starter quiz: %w", err)
			}
			res.StarterQuiz = out.Questions
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	saved, err := s.deps.Plans.SavePlan(ctx, store.LearningPlan{
		User:        user,
		Plan:        res.Plan,
		WeakTopics:  res.WeakTopics,
		GeneratedAt: s.now(),
	})
	if err != nil {
		s.deps.Logger.Warn("learning plan not saved", zap.String("user", user), zap.Error(err))
		return res, fmt.Errorf("save learning plan: %w", err)
	}
	res.Saved = saved

	s.deps.Logger.Info("learning plan generated",
		zap.String("user", user),
		zap.Strings("weak_topics", res.WeakTopics),
		zap.Int("starter_questions", len(res.StarterQuiz)))
	return res, nil
}

// PlanPrompt builds the study plan request.
func PlanPrompt(weakTopics []string, days int) gateway.Prompt {
	return gateway.Prompt{
		Text: fmt.Sprintf("Create a concise %d-day study plan for a learner who needs to strengthen: %s. "+
			"For each day, give short study objectives, 2 practice activities (one conceptual, one practical), "+
			"and 1 micro-quiz question.", days, strings.Join(weakTopics, ", ")),
		Purpose: llm.PurposePlan,
	}
}

// SuggestNextTopic returns the user's weakest topic, or "" without history.
func (s *Service) SuggestNextTopic(ctx context.Context, user string) (string, error) {
	history, err := s.deps.Records.All(ctx, user)
	if err != nil {
		return "", fmt.Errorf("read quiz history: %w", err)
	}
	if weak := performance.WeakTopics(history, 1); len(weak) > 0 {
		return weak[0], nil
	}
	return "", nil
}

// Latest returns the most recently saved plan, or nil.
func (s *Service) Latest(ctx context.Context, user string) (*store.LearningPlan, error) {
	return s.deps.Plans.Latest(ctx, user)
}
