package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendReviewEvent(ctx context.Context, data ReviewEventData) error {
	var next any
	if !data.NextReviewAt.IsZero() {
		next = data.NextReviewAt.UTC()
	}
	err := r.insertEvent(ctx, tableReviewEvents,
		[]string{"session_id", "course_id", "line_id", "mode", "outcome", "mistakes", "hints", "hint_stage", "interval_days", "ease_factor", "next_review_at"},
		[]any{data.SessionID, data.CourseID, data.LineID, data.Mode, data.Outcome, data.Mistakes, data.Hints, data.HintStage, data.IntervalDays, data.EaseFactor, next},
	)
	if err != nil {
		return fmt.Errorf("save review event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryReviewEvents(ctx context.Context, courseID string, opts QueryOpts) ([]ReviewEventRecord, error) {
	s := entsql.Dialect(dialect.SQLite).
		Select("id", "sequence", "timestamp", "session_id", "course_id", "line_id", "mode", "outcome",
			"mistakes", "hints", "hint_stage", "interval_days", "ease_factor", "next_review_at").
		From(entsql.Table(tableReviewEvents)).
		Where(entsql.EQ("course_id", courseID))
	q, args := applyOpts(s, opts).Query()

	rows, err := r.drv.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query review events: %w", err)
	}
	defer rows.Close()

	var records []ReviewEventRecord
	for rows.Next() {
		var rec ReviewEventRecord
		var next sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.CourseID,
			&rec.LineID, &rec.Mode, &rec.Outcome, &rec.Mistakes, &rec.Hints, &rec.HintStage,
			&rec.IntervalDays, &rec.EaseFactor, &next); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		if next.Valid {
			rec.NextReviewAt = next.Time
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) LineAccuracy(ctx context.Context, courseID, lineID string) (float64, int, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select("mistakes", "hints").
		From(entsql.Table(tableReviewEvents)).
		Where(entsql.And(
			entsql.EQ("course_id", courseID),
			entsql.EQ("line_id", lineID),
			entsql.NEQ("outcome", "demoted"),
		)).
		Query()

	rows, err := r.drv.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("query line accuracy: %w", err)
	}
	defer rows.Close()

	attempts, clean := 0, 0
	for rows.Next() {
		var mistakes, hints int
		if err := rows.Scan(&mistakes, &hints); err != nil {
			return 0, 0, fmt.Errorf("scan line accuracy: %w", err)
		}
		attempts++
		if mistakes == 0 && hints == 0 {
			clean++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	if attempts == 0 {
		return 0, 0, nil
	}
	return float64(clean) / float64(attempts), attempts, nil
}
