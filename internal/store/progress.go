package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo on the progress table.
type progressRepo struct {
	drv *entsql.Driver
}

func (r *progressRepo) Get(ctx context.Context, courseID string) ([]byte, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(tableProgress)).
		Where(entsql.EQ("course_id", courseID)).
		Query()

	var data []byte
	err := r.drv.DB().QueryRowContext(ctx, q, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query progress %s: %w", courseID, err)
	}
	return data, nil
}

func (r *progressRepo) Put(ctx context.Context, courseID string, data []byte) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Insert(tableProgress).
		Columns("course_id", "data", "updated_at").
		Values(courseID, data, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("course_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.drv.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save progress %s: %w", courseID, err)
	}
	return nil
}

func (r *progressRepo) Delete(ctx context.Context, courseID string) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Delete(tableProgress).
		Where(entsql.EQ("course_id", courseID)).
		Query()

	if _, err := r.drv.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete progress %s: %w", courseID, err)
	}
	return nil
}

func (r *progressRepo) List(ctx context.Context) ([]ProgressRecord, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("course_id", "length(data)", "updated_at").
		From(entsql.Table(tableProgress)).
		OrderBy(entsql.Desc("updated_at")).
		Query()

	rows, err := r.drv.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var out []ProgressRecord
	for rows.Next() {
		var rec ProgressRecord
		if err := rows.Scan(&rec.CourseID, &rec.Size, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
