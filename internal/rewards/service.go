// Package rewards turns finished quizzes into XP, badges and a
// leaderboard.
package rewards

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/store"
)

const (
	// XPPerCorrect is earned per correct answer before the difficulty
	// multiplier.
	XPPerCorrect = 10

	// PerfectBonus is added once for a perfect score.
	PerfectBonus = 20
)

// Award is what one finished quiz earned.
type Award struct {
	User   string
	XP     int
	Rarity Rarity
	Reason string

	// Badge is set when a badge was newly awarded.
	Badge *store.Badge

	AwardedAt time.Time
}

// XPFor computes the XP for score out of total at level.
func XPFor(score, total int, level difficulty.Level) int {
	if score <= 0 {
		return 0
	}
	xp := score * XPPerCorrect * level.XPMultiplier()
	if total > 0 && score == total {
		xp += PerfectBonus
	}
	return xp
}

// Service awards XP and badges and serves the leaderboard.
type Service struct {
	repo   store.XPRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a rewards Service.
func NewService(repo store.XPRepo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// AwardQuiz credits XP for a finished quiz and awards a "Perfect <topic>"
// badge on a perfect score.
func (s *Service) AwardQuiz(ctx context.Context, rec store.QuizRecord, level difficulty.Level) (*Award, error) {
	award := &Award{
		User:      rec.User,
		XP:        XPFor(rec.Score, rec.Total, level),
		Rarity:    QuizRarity(rec.Ratio()),
		Reason:    fmt.Sprintf("%s quiz: %d/%d (%s)", rec.Topic, rec.Score, rec.Total, level),
		AwardedAt: s.now(),
	}

	if award.XP > 0 {
		if err := s.repo.AddXP(ctx, rec.User, award.XP); err != nil {
			return nil, fmt.Errorf("award xp: %w", err)
		}
	}

	if rec.Total > 0 && rec.Score == rec.Total {
		badge := store.Badge{
			Name:      "Perfect " + rec.Topic,
			Rarity:    string(award.Rarity),
			AwardedAt: award.AwardedAt,
		}
		added, err := s.repo.AwardBadge(ctx, rec.User, badge)
		if err != nil {
			return award, fmt.Errorf("award badge: %w", err)
		}
		if added {
			award.Badge = &badge
		}
	}

	s.logger.Info("quiz rewarded",
		zap.String("user", rec.User),
		zap.String("topic", rec.Topic),
		zap.Int("xp", award.XP),
		zap.String("rarity", string(award.Rarity)),
		zap.Bool("badge", award.Badge != nil))
	return award, nil
}

// XP returns a user's total XP.
func (s *Service) XP(ctx context.Context, user string) (int, error) {
	return s.repo.GetXP(ctx, user)
}

// Leaderboard returns the top users by XP.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx, limit)
}

// Badges returns a user's badges, oldest first.
func (s *Service) Badges(ctx context.Context, user string) ([]store.Badge, error) {
	return s.repo.Badges(ctx, user)
}
