package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type cacheRepo struct {
	db      *sql.DB
	dialect string
}

func (r *cacheRepo) Get(ctx context.Context, key string) (string, time.Time, bool, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("value", "created_at").
		From(entsql.Table(tableCache)).
		Where(entsql.EQ("cache_key", key)).
		Query()

	var (
		value string
		at    int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("cache get: %w", err)
	}
	return value, time.Unix(at, 0), true, nil
}

func (r *cacheRepo) Set(ctx context.Context, key, value string, at time.Time) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(tableCache).
		Columns("cache_key", "value", "created_at").
		Values(key, value, at.Unix()).
		OnConflict(
			entsql.ConflictColumns("cache_key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &ErrPersistence{Op: "cache set", Err: err}
	}
	return nil
}
