package store

import (
	"context"
	"fmt"
)

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	err := r.insertEvent(ctx, tableHintEvents,
		[]string{"session_id", "course_id", "line_id", "mode", "ply", "expected_move", "revealed", "hint_stage"},
		[]any{data.SessionID, data.CourseID, data.LineID, data.Mode, data.Ply, data.ExpectedMove, data.Revealed, data.HintStage},
	)
	if err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}
