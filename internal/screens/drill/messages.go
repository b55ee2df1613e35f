package drill

import "github.com/abhisek/chessdrill/internal/trainer"

// startedMsg is sent when the trainer has loaded progress and the first
// position.
type startedMsg struct {
	Err error
}

// taskMsg delivers a paced trainer task once its delay has elapsed.
type taskMsg struct {
	ID   int
	Task trainer.Task
}
