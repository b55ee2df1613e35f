package drill

import (
	"context"
	"time"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/spacedrep"
)

// LoadCards reads the course's stored review cards for display. Theory
// lines without a stored card get a fresh one in memory; nothing is
// written back.
func LoadCards(ctx context.Context, opts Options, now time.Time) (*spacedrep.Scheduler, error) {
	sched := spacedrep.NewScheduler(opts.Course.ID, opts.Scheduler)
	if opts.Progress != nil {
		if _, err := sched.Load(ctx, opts.Progress); err != nil {
			return nil, err
		}
	}
	var ids []string
	for _, l := range opts.Course.LinesOfType(course.TypeTheory) {
		ids = append(ids, l.ID)
	}
	sched.Generate(ids, now)
	return sched, nil
}

// TheoryScope accepts the ids of the course's theory lines.
func TheoryScope(c *course.Course) func(string) bool {
	ids := make(map[string]bool)
	for _, l := range c.LinesOfType(course.TypeTheory) {
		ids[l.ID] = true
	}
	return func(id string) bool { return ids[id] }
}
