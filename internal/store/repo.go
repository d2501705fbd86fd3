package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match when set
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// QuizRecord is one finished quiz attempt. Records are immutable once
// appended; Timestamp is unix seconds.
type QuizRecord struct {
	ID        int64
	User      string
	Topic     string
	Score     int
	Total     int
	Timestamp int64
}

// Ratio returns Score/Total, treating a zero total as one.
func (r QuizRecord) Ratio() float64 {
	total := r.Total
	if total <= 0 {
		total = 1
	}
	return float64(r.Score) / float64(total)
}

// QuizRecordRepo is the per-user append-only attempt log.
type QuizRecordRepo interface {
	// Append validates and persists a record, returning it with its ID set.
	// Failures are reported as *ErrPersistence or ErrInvalidRecord.
	Append(ctx context.Context, rec QuizRecord) (QuizRecord, error)

	// Recent returns at most limit records for user, newest first.
	Recent(ctx context.Context, user string, limit int) ([]QuizRecord, error)

	// All returns every record for user, oldest first.
	All(ctx context.Context, user string) ([]QuizRecord, error)

	// Reset deletes every quiz record for every user.
	Reset(ctx context.Context) error
}

// LeaderboardEntry is one row of the XP leaderboard.
type LeaderboardEntry struct {
	User string
	XP   int
}

// Badge is an achievement awarded to a user.
type Badge struct {
	Name      string
	Rarity    string
	AwardedAt time.Time
}

// XPRepo tracks experience points and badges per user.
type XPRepo interface {
	AddXP(ctx context.Context, user string, amount int) error
	GetXP(ctx context.Context, user string) (int, error)

	// Leaderboard returns the top users by XP, ties broken by user name.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// AwardBadge records a badge. Returns false if the user already had it.
	AwardBadge(ctx context.Context, user string, badge Badge) (bool, error)
	Badges(ctx context.Context, user string) ([]Badge, error)
}

// LearningPlan is a generated study plan for a user.
type LearningPlan struct {
	ID          int64
	User        string
	Plan        string
	WeakTopics  []string
	GeneratedAt time.Time
}

// PlanRepo stores generated learning plans.
type PlanRepo interface {
	SavePlan(ctx context.Context, plan LearningPlan) (LearningPlan, error)

	// Latest returns the most recent plan for user, or nil if none exist.
	Latest(ctx context.Context, user string) (*LearningPlan, error)
}

// CacheRepo is a string key/value cache with insertion timestamps.
type CacheRepo interface {
	// Get returns the value and when it was stored. ok is false on a miss.
	Get(ctx context.Context, key string) (value string, storedAt time.Time, ok bool, err error)
	Set(ctx context.Context, key, value string, at time.Time) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	Cached       bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a persisted LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates token usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
