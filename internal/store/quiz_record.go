package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var quizRecordColumns = []string{"id", "user_id", "topic", "score", "total", "created_at"}

type quizRecordRepo struct {
	db      *sql.DB
	dialect string
}

func (r *quizRecordRepo) Append(ctx context.Context, rec QuizRecord) (QuizRecord, error) {
	if err := validateRecord(rec); err != nil {
		return QuizRecord{}, err
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = time.Now().Unix()
	}

	query, args := entsql.Dialect(r.dialect).
		Insert(tableQuizRecords).
		Columns("user_id", "topic", "score", "total", "created_at").
		Values(rec.User, rec.Topic, rec.Score, rec.Total, rec.Timestamp).
		Returning("id").
		Query()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID); err != nil {
		return QuizRecord{}, &ErrPersistence{Op: "append quiz record", Err: err}
	}
	return rec, nil
}

func (r *quizRecordRepo) Recent(ctx context.Context, user string, limit int) ([]QuizRecord, error) {
	if limit <= 0 {
		return []QuizRecord{}, nil
	}
	selector := entsql.Dialect(r.dialect).
		Select(quizRecordColumns...).
		From(entsql.Table(tableQuizRecords)).
		Where(entsql.EQ("user_id", user)).
		OrderBy(entsql.Desc("id")).
		Limit(limit)
	return r.query(ctx, selector)
}

func (r *quizRecordRepo) All(ctx context.Context, user string) ([]QuizRecord, error) {
	selector := entsql.Dialect(r.dialect).
		Select(quizRecordColumns...).
		From(entsql.Table(tableQuizRecords)).
		Where(entsql.EQ("user_id", user)).
		OrderBy(entsql.Asc("id"))
	return r.query(ctx, selector)
}

func (r *quizRecordRepo) Reset(ctx context.Context) error {
	query, args := entsql.Dialect(r.dialect).Delete(tableQuizRecords).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &ErrPersistence{Op: "reset quiz records", Err: err}
	}
	return nil
}

func (r *quizRecordRepo) query(ctx context.Context, selector *entsql.Selector) ([]QuizRecord, error) {
	query, args := selector.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quiz records: %w", err)
	}
	defer rows.Close()

	records := []QuizRecord{}
	for rows.Next() {
		var rec QuizRecord
		if err := rows.Scan(&rec.ID, &rec.User, &rec.Topic, &rec.Score, &rec.Total, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan quiz record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz records: %w", err)
	}
	return records, nil
}

func validateRecord(rec QuizRecord) error {
	switch {
	case strings.TrimSpace(rec.User) == "":
		return fmt.Errorf("%w: empty user", ErrInvalidRecord)
	case strings.TrimSpace(rec.Topic) == "":
		return fmt.Errorf("%w: empty topic", ErrInvalidRecord)
	case rec.Total <= 0:
		return fmt.Errorf("%w: total must be positive, got %d", ErrInvalidRecord, rec.Total)
	case rec.Score < 0 || rec.Score > rec.Total:
		return fmt.Errorf("%w: score %d outside [0, %d]", ErrInvalidRecord, rec.Score, rec.Total)
	}
	return nil
}
