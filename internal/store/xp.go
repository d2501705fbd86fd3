package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type xpRepo struct {
	db      *sql.DB
	dialect string
}

func (r *xpRepo) AddXP(ctx context.Context, user string, amount int) error {
	if user == "" {
		return fmt.Errorf("add xp: empty user")
	}
	now := time.Now().Unix()
	query, args := entsql.Dialect(r.dialect).
		Insert(tableUserXP).
		Columns("user_id", "xp", "updated_at").
		Values(user, amount, now).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("xp", amount)
				u.Set("updated_at", now)
			}),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &ErrPersistence{Op: "add xp", Err: err}
	}
	return nil
}

func (r *xpRepo) GetXP(ctx context.Context, user string) (int, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("xp").
		From(entsql.Table(tableUserXP)).
		Where(entsql.EQ("user_id", user)).
		Query()

	var xp int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&xp)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get xp: %w", err)
	}
	return xp, nil
}

func (r *xpRepo) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	selector := entsql.Dialect(r.dialect).
		Select("user_id", "xp").
		From(entsql.Table(tableUserXP)).
		OrderBy(entsql.Desc("xp"), entsql.Asc("user_id"))
	if limit > 0 {
		selector.Limit(limit)
	}

	query, args := selector.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.User, &e.XP); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *xpRepo) AwardBadge(ctx context.Context, user string, badge Badge) (bool, error) {
	if badge.AwardedAt.IsZero() {
		badge.AwardedAt = time.Now()
	}
	if badge.Rarity == "" {
		badge.Rarity = "common"
	}
	query, args := entsql.Dialect(r.dialect).
		Insert(tableBadges).
		Columns("user_id", "name", "rarity", "awarded_at").
		Values(user, badge.Name, badge.Rarity, badge.AwardedAt.Unix()).
		OnConflict(
			entsql.ConflictColumns("user_id", "name"),
			entsql.DoNothing(),
		).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, &ErrPersistence{Op: "award badge", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award badge rows: %w", err)
	}
	return n > 0, nil
}

func (r *xpRepo) Badges(ctx context.Context, user string) ([]Badge, error) {
	query, args := entsql.Dialect(r.dialect).
		Select("name", "rarity", "awarded_at").
		From(entsql.Table(tableBadges)).
		Where(entsql.EQ("user_id", user)).
		OrderBy(entsql.Asc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query badges: %w", err)
	}
	defer rows.Close()

	badges := []Badge{}
	for rows.Next() {
		var (
			b  Badge
			at int64
		)
		if err := rows.Scan(&b.Name, &b.Rarity, &at); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.AwardedAt = time.Unix(at, 0)
		badges = append(badges, b)
	}
	return badges, rows.Err()
}
