package trainer

import (
	"sync"
	"time"

	"github.com/abhisek/chessdrill/internal/course"
	"github.com/abhisek/chessdrill/internal/drill"
	"github.com/abhisek/chessdrill/internal/rules"
	"github.com/abhisek/chessdrill/internal/spacedrep"
)

// EventType names a trainer notification.
type EventType string

const (
	EventInitialized       EventType = "initialized"
	EventPositionLoaded    EventType = "positionLoaded"
	EventCorrectMove       EventType = "correctMove"
	EventIncorrectMove     EventType = "incorrectMove"
	EventIllegalMove       EventType = "illegalMove"
	EventPromotionRequired EventType = "promotionRequired"
	EventComputerMove      EventType = "computerMove"
	EventLineComplete      EventType = "lineComplete"
	EventLineFailed        EventType = "lineFailed"
	EventModeChanged       EventType = "modeChanged"
	EventCategoryChanged   EventType = "categoryChanged"
	EventLineChanged       EventType = "lineChanged"
	EventStepped           EventType = "stepped"
	EventHint              EventType = "hint"
	EventCardUpdated       EventType = "cardUpdated"
	EventNoLine            EventType = "noLine"
	EventNothingDue        EventType = "nothingDue"

	// EventProgressUnreadable follows initialized when the stored progress
	// could not be decoded. The session runs without saving cards.
	EventProgressUnreadable EventType = "progressUnreadable"
)

// Event is delivered to subscribers. Only the fields relevant to Type are
// set.
type Event struct {
	Type EventType

	Mode       Mode
	Category   string
	Categories []string
	Lines      []*course.Line
	LineIndex  int

	Line *course.Line
	Card *spacedrep.Card

	Move     *rules.MoveResult
	Ply      int
	Expected string
	From     string
	To       string
	Comment  string
	Shapes   []Shape
	Progress drill.Progress

	// Outcome is set on lineComplete and cardUpdated.
	Outcome  Outcome
	Mistakes int
	Hints    int

	// NextReview is the earliest upcoming review on nothingDue.
	NextReview time.Time

	// Err carries the cause of illegalMove, lineFailed and
	// progressUnreadable, and a failed progress write on cardUpdated.
	Err error
}

// Handler receives events.
type Handler func(Event)

type subscriber struct {
	id    int
	types map[EventType]bool
	fn    Handler
}

// Bus fans events out to subscribers in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for the given event types, or for every event when
// none are given. The returned func removes the subscription.
func (b *Bus) Subscribe(fn Handler, types ...EventType) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := subscriber{id: b.nextID, fn: fn}
	if len(types) > 0 {
		s.types = make(map[EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.subs = append(b.subs, s)

	id := s.id
	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every matching subscriber. Handlers may subscribe
// or unsubscribe while being called; the change applies to the next event.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s.types != nil && !s.types[e.Type] {
			continue
		}
		s.fn(e)
	}
}

// Len returns the number of subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
