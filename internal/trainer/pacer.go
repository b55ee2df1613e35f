package trainer

import (
	"sort"
	"time"
)

// TaskKind is the deferred action a Task performs.
type TaskKind int

const (
	// TaskOpponentMove plays the scripted reply at the cursor.
	TaskOpponentMove TaskKind = iota
	// TaskNextLine loads the next review item after a completion.
	TaskNextLine
)

func (k TaskKind) String() string {
	switch k {
	case TaskOpponentMove:
		return "opponent-move"
	case TaskNextLine:
		return "next-line"
	}
	return "unknown"
}

// Task identifies a delayed action. Fire runs it only while Token, LineID and
// Index still describe the trainer's pending task.
type Task struct {
	Token  uint64
	Kind   TaskKind
	LineID string
	Index  int
}

// Cancel stops a scheduled task. Calling it more than once is harmless.
type Cancel func()

// Pacer delivers tasks back to Trainer.Fire after a delay. Implementations
// must not call Fire from inside After.
type Pacer interface {
	After(delay time.Duration, task Task) Cancel
}

// ScheduledTask is a task held by a ManualPacer. Due is measured from the
// pacer's creation.
type ScheduledTask struct {
	Task     Task
	Due      time.Duration
	Canceled bool
}

// ManualPacer holds tasks until the owner advances it. It suits tests and
// callers that drive time themselves.
type ManualPacer struct {
	queue []*ScheduledTask
	now   time.Duration
}

// NewManualPacer returns an empty pacer at time zero.
func NewManualPacer() *ManualPacer {
	return &ManualPacer{}
}

func (p *ManualPacer) After(delay time.Duration, task Task) Cancel {
	st := &ScheduledTask{Task: task, Due: p.now + delay}
	p.queue = append(p.queue, st)
	return func() { st.Canceled = true }
}

// Pending returns the tasks not yet delivered or canceled, earliest first.
func (p *ManualPacer) Pending() []ScheduledTask {
	var out []ScheduledTask
	for _, st := range p.queue {
		if !st.Canceled {
			out = append(out, *st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	return out
}

// Advance moves the clock by d and delivers every task that came due, in
// due order, including tasks scheduled by the deliveries themselves.
// Canceled tasks are still dropped, not delivered. It returns the number of
// tasks delivered.
func (p *ManualPacer) Advance(d time.Duration, fire func(Task)) int {
	p.now += d
	delivered := 0
	for {
		st := p.popDue()
		if st == nil {
			return delivered
		}
		delivered++
		fire(st.Task)
	}
}

// Flush delivers everything, however far in the future.
func (p *ManualPacer) Flush(fire func(Task)) int {
	delivered := 0
	for {
		pending := p.Pending()
		if len(pending) == 0 {
			return delivered
		}
		delivered += p.Advance(pending[0].Due-p.now, fire)
	}
}

func (p *ManualPacer) popDue() *ScheduledTask {
	best := -1
	for i, st := range p.queue {
		if st.Canceled || st.Due > p.now {
			continue
		}
		if best < 0 || st.Due < p.queue[best].Due {
			best = i
		}
	}
	if best < 0 {
		p.compact()
		return nil
	}
	st := p.queue[best]
	p.queue = append(p.queue[:best], p.queue[best+1:]...)
	return st
}

func (p *ManualPacer) compact() {
	kept := p.queue[:0]
	for _, st := range p.queue {
		if !st.Canceled {
			kept = append(kept, st)
		}
	}
	p.queue = kept
}
