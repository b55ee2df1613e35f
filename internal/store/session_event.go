package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.insertEvent(ctx, tableSessionEvents,
		[]string{"session_id", "course_id", "action", "mode", "lines_studied", "correct_moves", "mistakes", "hints", "duration_secs"},
		[]any{data.SessionID, data.CourseID, data.Action, data.Mode, data.LinesStudied, data.CorrectMoves, data.Mistakes, data.Hints, data.DurationSecs},
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	s := entsql.Dialect(dialect.SQLite).
		Select("session_id", "course_id", "timestamp", "mode", "lines_studied", "correct_moves", "mistakes", "hints", "duration_secs").
		From(entsql.Table(tableSessionEvents)).
		Where(entsql.EQ("action", "end"))
	q, args := applyOpts(s, opts).Query()

	rows, err := r.drv.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		if err := rows.Scan(&rec.SessionID, &rec.CourseID, &rec.Timestamp, &rec.Mode,
			&rec.LinesStudied, &rec.CorrectMoves, &rec.Mistakes, &rec.Hints, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
