// Package kernel implements the deterministic discrete-event scheduler: a
// time-ordered priority queue, a tag-indexed handler table, and a run loop.
// It is the one component of the core built directly on the standard
// library's container/heap rather than a third-party structure — no
// example repo in the reference corpus ships a priority-queue package, and
// a hand-rolled heap is the idiomatic Go answer (see DESIGN.md).
package kernel

import (
	"container/heap"
	"fmt"
	"time"

	"arksim/internal/event"
)

const epsilon = 1e-9

// CausalityError reports a fatal violation of the kernel's ordering
// contract: an event popped or produced with t earlier than allowed.
type CausalityError struct {
	Reason string
	Event  event.Event
	Now    float64
}

func (e *CausalityError) Error() string {
	return fmt.Sprintf("%s: event %s at t=%.6f violates now=%.6f", e.Reason, e.Event, e.Event.T, e.Now)
}

// Handler processes a dispatched event and returns follow-on events to be
// scheduled (in order) before the next event is popped.
type Handler func(ev event.Event) []event.Event

// Kernel owns the event heap and the handler table. It is not safe for
// concurrent use; callers run it from a single goroutine.
type Kernel struct {
	hooks Hooks
	heap  eventHeap
	subs  map[event.Tag][]Handler
	seq   int64
	now   float64
}

// New constructs a Kernel. If hooks is nil, NoopHooks is used.
func New(hooks Hooks) *Kernel {
	if hooks == nil {
		hooks = NoopHooks{}
	}
	k := &Kernel{
		hooks: hooks,
		subs:  make(map[event.Tag][]Handler),
	}
	heap.Init(&k.heap)
	return k
}

// Now returns the simulation time as of the most recently dispatched event
// (or 0 before the first dispatch).
func (k *Kernel) Now() float64 { return k.now }

// Subscribe registers handler for tag. Multiple handlers on the same tag
// run in registration order for every event of that tag.
func (k *Kernel) Subscribe(tag event.Tag, h Handler) {
	k.subs[tag] = append(k.subs[tag], h)
}

// Schedule inserts ev into the heap, assigning it a monotone insertion
// sequence. It returns a CausalityError if ev.T is more than epsilon
// behind the kernel's current time.
func (k *Kernel) Schedule(ev event.Event) error {
	if ev.T < k.now-epsilon {
		err := &CausalityError{Reason: "scheduled_past", Event: ev, Now: k.now}
		k.hooks.Error(ev, err.Reason, err)
		return err
	}
	ev.Seq = k.seq
	k.seq++
	heap.Push(&k.heap, ev)
	k.hooks.Schedule(ev, k.now, k.heap.Len())
	return nil
}

// Run pops and dispatches events while the heap's earliest time is <= until
// (if until is non-nil) and fewer than maxEvents (if maxEvents > 0) have
// been processed. It returns the number of events dispatched.
func (k *Kernel) Run(until *float64, maxEvents int) (int, error) {
	start := time.Now()
	untilVal := 0.0
	if until != nil {
		untilVal = *until
	}
	k.hooks.RunStart(untilVal, maxEvents, k.heap.Len())

	processed := 0
	for k.heap.Len() > 0 {
		if maxEvents > 0 && processed >= maxEvents {
			break
		}
		next := k.heap[0]
		if until != nil && next.T > *until {
			break
		}
		if next.T < k.now-epsilon {
			err := &CausalityError{Reason: "time_backwards", Event: next, Now: k.now}
			k.hooks.Error(next, err.Reason, err)
			return processed, err
		}
		ev := heap.Pop(&k.heap).(event.Event)
		k.now = ev.T

		handlers := k.subs[ev.Tag]
		k.hooks.DispatchStart(ev, k.heap.Len(), len(handlers))
		dispatchStart := time.Now()

		produced := 0
		for _, h := range handlers {
			out := h(ev)
			for _, nxt := range out {
				if err := k.Schedule(nxt); err != nil {
					return processed, err
				}
				produced++
			}
		}

		k.hooks.DispatchEnd(ev, produced, time.Since(dispatchStart).Seconds()*1000)
		processed++
	}

	lastT := k.now
	k.hooks.RunEnd(processed, lastT, k.heap.Len(), time.Since(start).Seconds()*1000)
	return processed, nil
}

// QueueLen reports the number of events currently in the heap.
func (k *Kernel) QueueLen() int { return k.heap.Len() }
