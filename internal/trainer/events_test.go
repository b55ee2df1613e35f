package trainer

import (
	"testing"
	"time"
)

func TestBus_FilterAndOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(func(e Event) { got = append(got, "all:"+string(e.Type)) })
	b.Subscribe(func(e Event) { got = append(got, "hint:"+string(e.Type)) }, EventHint)

	b.Publish(Event{Type: EventStepped})
	b.Publish(Event{Type: EventHint})

	want := []string{"all:stepped", "all:hint", "hint:hint"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus()
	n := 0
	unsub := b.Subscribe(func(Event) { n++ })
	b.Publish(Event{Type: EventHint})
	unsub()
	unsub()
	b.Publish(Event{Type: EventHint})

	if n != 1 {
		t.Errorf("deliveries = %d, want 1", n)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	b := NewBus()
	calls := 0
	var unsub func()
	unsub = b.Subscribe(func(Event) {
		calls++
		unsub()
	})
	other := 0
	b.Subscribe(func(Event) { other++ })

	b.Publish(Event{Type: EventHint})
	b.Publish(Event{Type: EventHint})

	if calls != 1 {
		t.Errorf("self-unsubscribing handler called %d times, want 1", calls)
	}
	if other != 2 {
		t.Errorf("other handler called %d times, want 2", other)
	}
}

func TestManualPacer(t *testing.T) {
	p := NewManualPacer()
	var fired []uint64
	fire := func(task Task) { fired = append(fired, task.Token) }

	p.After(300*time.Millisecond, Task{Token: 1})
	cancel := p.After(100*time.Millisecond, Task{Token: 2})
	p.After(100*time.Millisecond, Task{Token: 3})
	cancel()
	cancel()

	if got := len(p.Pending()); got != 2 {
		t.Fatalf("Pending() = %d tasks, want 2", got)
	}
	if n := p.Advance(100*time.Millisecond, fire); n != 1 {
		t.Errorf("Advance(100ms) delivered %d, want 1", n)
	}
	if n := p.Advance(100*time.Millisecond, fire); n != 0 {
		t.Errorf("Advance(200ms) delivered %d, want 0", n)
	}
	if n := p.Flush(fire); n != 1 {
		t.Errorf("Flush() delivered %d, want 1", n)
	}
	if len(fired) != 2 || fired[0] != 3 || fired[1] != 1 {
		t.Errorf("fired = %v, want [3 1]", fired)
	}
}

func TestManualPacer_ChainedTasks(t *testing.T) {
	p := NewManualPacer()
	count := 0
	var fire func(Task)
	fire = func(task Task) {
		count++
		if task.Token < 3 {
			p.After(0, Task{Token: task.Token + 1})
		}
	}
	p.After(50*time.Millisecond, Task{Token: 1})

	if n := p.Advance(50*time.Millisecond, fire); n != 3 {
		t.Errorf("Advance() delivered %d, want 3", n)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}
