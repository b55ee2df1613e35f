package drill

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/chessdrill/internal/trainer"
)

// tickPacer turns trainer delays into tea.Tick commands. The trainer only
// schedules from inside Update, so the screen drains the collected
// commands after every trainer call and the ticks come back as taskMsg.
type tickPacer struct {
	next        int
	queued      []tea.Cmd
	outstanding map[int]trainer.Task
}

var _ trainer.Pacer = (*tickPacer)(nil)

func newTickPacer() *tickPacer {
	return &tickPacer{outstanding: make(map[int]trainer.Task)}
}

func (p *tickPacer) After(delay time.Duration, task trainer.Task) trainer.Cancel {
	p.next++
	id := p.next
	p.outstanding[id] = task
	p.queued = append(p.queued, tea.Tick(delay, func(time.Time) tea.Msg {
		return taskMsg{ID: id, Task: task}
	}))
	return func() { delete(p.outstanding, id) }
}

// drain hands the ticks scheduled since the last drain to Bubble Tea.
func (p *tickPacer) drain() tea.Cmd {
	if len(p.queued) == 0 {
		return nil
	}
	cmds := p.queued
	p.queued = nil
	return tea.Batch(cmds...)
}

// take reports whether task id is still wanted and forgets it.
func (p *tickPacer) take(id int) bool {
	if _, ok := p.outstanding[id]; !ok {
		return false
	}
	delete(p.outstanding, id)
	return true
}
