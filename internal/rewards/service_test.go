package rewards

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "rewards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewService(s.XP(), nil)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return svc
}

func TestXPFor(t *testing.T) {
	tests := []struct {
		score, total int
		level        difficulty.Level
		want         int
	}{
		{0, 5, difficulty.Hard, 0},
		{3, 5, difficulty.Easy, 30},
		{3, 5, difficulty.Medium, 60},
		{4, 5, difficulty.Hard, 120},
		{5, 5, difficulty.Easy, 70},
		{5, 5, difficulty.Hard, 170},
	}
	for _, tt := range tests {
		if got := XPFor(tt.score, tt.total, tt.level); got != tt.want {
			t.Errorf("XPFor(%d, %d, %s) = %d, want %d", tt.score, tt.total, tt.level, got, tt.want)
		}
	}
}

func TestAwardQuiz_PartialScore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	award, err := svc.AwardQuiz(ctx, store.QuizRecord{User: "ana", Topic: "sets", Score: 3, Total: 5}, difficulty.Medium)
	require.NoError(t, err)
	assert.Equal(t, 60, award.XP)
	assert.Equal(t, RarityRare, award.Rarity)
	assert.Nil(t, award.Badge)

	xp, err := svc.XP(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 60, xp)
}

func TestAwardQuiz_PerfectBadgeOnce(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	rec := store.QuizRecord{User: "ana", Topic: "Fourier", Score: 3, Total: 3}

	first, err := svc.AwardQuiz(ctx, rec, difficulty.Easy)
	require.NoError(t, err)
	require.NotNil(t, first.Badge)
	assert.Equal(t, "Perfect Fourier", first.Badge.Name)
	assert.Equal(t, string(RarityLegendary), first.Badge.Rarity)

	second, err := svc.AwardQuiz(ctx, rec, difficulty.Easy)
	require.NoError(t, err)
	assert.Nil(t, second.Badge, "badge must only be awarded once")

	badges, err := svc.Badges(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, badges, 1)

	xp, err := svc.XP(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, 2*(30+PerfectBonus), xp)
}

func TestAwardQuiz_ZeroScoreAddsNothing(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	award, err := svc.AwardQuiz(ctx, store.QuizRecord{User: "bo", Topic: "sets", Score: 0, Total: 4}, difficulty.Hard)
	require.NoError(t, err)
	assert.Zero(t, award.XP)

	board, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestLeaderboard(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, rec := range []store.QuizRecord{
		{User: "cy", Topic: "a", Score: 1, Total: 5},
		{User: "ana", Topic: "a", Score: 4, Total: 5},
		{User: "bo", Topic: "a", Score: 4, Total: 5},
	} {
		_, err := svc.AwardQuiz(ctx, rec, difficulty.Easy)
		require.NoError(t, err)
	}

	board, err := svc.Leaderboard(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []store.LeaderboardEntry{{User: "ana", XP: 40}, {User: "bo", XP: 40}}, board)
}
