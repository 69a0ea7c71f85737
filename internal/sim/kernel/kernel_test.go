package kernel

import (
	"testing"

	"arksim/internal/event"
)

// mirrors the scheduler's ordering contract: a handler that emits more of
// its own tag plus a cascading second tag, run to a time cutoff, must
// dispatch in strict (t, insertion-order) sequence.
func TestRunOrderingAndCascade(t *testing.T) {
	var names []string
	var times []float64

	k2 := New(traceHooks{names: &names, times: &times})
	k2.Subscribe(event.DriverStartShift, func(ev event.Event) []event.Event {
		out := []event.Event{{T: ev.T, Tag: event.DriverAvailable}}
		if ev.DayIndex > 0 {
			out = append(out, event.Event{T: ev.T + 1, Tag: event.DriverStartShift, DayIndex: ev.DayIndex - 1})
		}
		return out
	})
	k2.Subscribe(event.DriverAvailable, func(ev event.Event) []event.Event {
		return []event.Event{{T: ev.T + 0.5, Tag: event.EndOfDay}}
	})

	if err := k2.Schedule(event.Event{T: 0, Tag: event.DriverStartShift, DayIndex: 2}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	until := 3.0
	processed, err := k2.Run(&until, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 9 {
		t.Fatalf("processed = %d, want 9", processed)
	}

	wantNames := []string{
		"DriverStartShift", "DriverAvailable", "EndOfDay",
		"DriverStartShift", "DriverAvailable", "EndOfDay",
		"DriverStartShift", "DriverAvailable", "EndOfDay",
	}
	wantTimes := []float64{0, 0, 0.5, 1, 1, 1.5, 2, 2, 2.5}
	if len(names) != len(wantNames) {
		t.Fatalf("names = %v, want %v", names, wantNames)
	}
	for i := range wantNames {
		if names[i] != wantNames[i] {
			t.Fatalf("names[%d] = %s, want %s", i, names[i], wantNames[i])
		}
		if times[i] != wantTimes[i] {
			t.Fatalf("times[%d] = %v, want %v", i, times[i], wantTimes[i])
		}
	}
}

type traceHooks struct {
	NoopHooks
	names *[]string
	times *[]float64
}

func (h traceHooks) DispatchStart(ev event.Event, qsize int, handlers int) {
	*h.names = append(*h.names, ev.Tag.String())
	*h.times = append(*h.times, ev.T)
}

func TestFIFOTieBreak(t *testing.T) {
	var order []string
	k := New(nil)
	k.Subscribe(event.DriverStartShift, func(ev event.Event) []event.Event {
		order = append(order, "A")
		return nil
	})
	k.Subscribe(event.DriverStartShift, func(ev event.Event) []event.Event {
		order = append(order, "B")
		return nil
	})
	must(t, k.Schedule(event.Event{T: 5, Tag: event.DriverStartShift}))
	must(t, k.Schedule(event.Event{T: 5, Tag: event.DriverStartShift}))

	if _, err := k.Run(nil, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"A", "B", "A", "B"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestMaxEventsGate(t *testing.T) {
	k := New(nil)
	k.Subscribe(event.DriverStartShift, func(ev event.Event) []event.Event { return nil })
	must(t, k.Schedule(event.Event{T: 0, Tag: event.DriverStartShift, DayIndex: 10}))
	processed, err := k.Run(nil, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if k.Now() != 0.0 {
		t.Fatalf("now = %v, want 0", k.Now())
	}
}

func TestPastSchedulingRaises(t *testing.T) {
	k := New(nil)
	k.Subscribe(event.DriverStartShift, func(ev event.Event) []event.Event {
		return []event.Event{{T: ev.T - 1.0, Tag: event.DriverAvailable}}
	})
	must(t, k.Schedule(event.Event{T: 1, Tag: event.DriverStartShift}))
	if _, err := k.Run(nil, 0); err == nil {
		t.Fatalf("expected error scheduling into the past")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
