// Package screens holds what every TUI screen shares: the services they
// call and the messages they exchange with the app shell.
package screens

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

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

// Services are the application services reachable from the TUI.
type Services struct {
	User             string
	DefaultQuestions int

	Records   store.QuizRecordRepo
	Gateway   *gateway.Gateway
	Generator quizgen.Generator
	Grader    quizgen.AnswerGrader
	Adapter   difficulty.Adapter
	Rewards   *rewards.Service
	Plans     *learningpath.Service
	Tutor     *tutor.Agent
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewSession creates an idle quiz session wired to the services.
func (s *Services) NewSession(fixed bool) *session.Session {
	deps := session.Deps{
		Records:   s.Records,
		Generator: s.Generator,
		Grader:    s.Grader,
		Adapter:   s.Adapter,
		Metrics:   s.Metrics,
		Logger:    s.Logger,
	}
	if s.Rewards != nil {
		deps.Rewards = s.Rewards
	}
	return session.New(deps, session.Config{FixedDifficulty: fixed})
}

// XPUpdatedMsg tells the app shell the learner's XP total changed.
type XPUpdatedMsg struct {
	XP int
}

// LoadXP reads the learner's XP total for the header.
func (s *Services) LoadXP() tea.Cmd {
	if s.Rewards == nil {
		return nil
	}
	return func() tea.Msg {
		xp, err := s.Rewards.XP(context.Background(), s.User)
		if err != nil {
			s.Logger.Warn("load xp", zap.Error(err))
			return nil
		}
		return XPUpdatedMsg{XP: xp}
	}
}
