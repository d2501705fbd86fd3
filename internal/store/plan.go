package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type planRepo struct {
	db      *sql.DB
	dialect string
}

func (r *planRepo) SavePlan(ctx context.Context, plan LearningPlan) (LearningPlan, error) {
	if plan.GeneratedAt.IsZero() {
		plan.GeneratedAt = time.Now()
	}
	if plan.WeakTopics == nil {
		plan.WeakTopics = []string{}
	}
	topics, err := json.Marshal(plan.WeakTopics)
	if err != nil {
		return LearningPlan{}, fmt.Errorf("marshal weak topics: %w", err)
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(tablePlans).
		Columns("user_id", "plan", "weak_topics", "created_at").
		Values(plan.User, plan.Plan, string(topics), plan.GeneratedAt.Unix()).
		Returning("id").
		Query()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&plan.ID); err != nil {
		return LearningPlan{}, &ErrPersistence{Op: "save learning plan", Err: err}
	}
	return plan, nil
}

func (r *planRepo) Latest(ctx context.Context, user string) (*LearningPlan, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("id", "user_id", "plan", "weak_topics", "created_at").
		From(entsql.Table(tablePlans)).
		Where(entsql.EQ("user_id", user)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()

	var (
		p      LearningPlan
		topics string
		at     int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.User, &p.Plan, &topics, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest learning plan: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &p.WeakTopics); err != nil {
		return nil, fmt.Errorf("unmarshal weak topics: %w", err)
	}
	p.GeneratedAt = time.Unix(at, 0)
	return &p, nil
}
