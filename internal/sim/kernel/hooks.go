package kernel

import "arksim/internal/event"

// Hooks is the kernel's observation-only callback set. Implementations must
// not mutate simulation state or schedule events; the kernel never checks
// this, but doing so breaks the determinism guarantee.
type Hooks interface {
	RunStart(until float64, maxEvents int, qsize int)
	Schedule(ev event.Event, now float64, qsize int)
	DispatchStart(ev event.Event, qsize int, handlers int)
	DispatchEnd(ev event.Event, produced int, dur float64)
	Error(ev event.Event, reason string, err error)
	RunEnd(processed int, lastT float64, qsize int, wallMs float64)
}

// NoopHooks implements Hooks with no-ops; embed it to override a subset.
type NoopHooks struct{}

func (NoopHooks) RunStart(float64, int, int)                {}
func (NoopHooks) Schedule(event.Event, float64, int)        {}
func (NoopHooks) DispatchStart(event.Event, int, int)       {}
func (NoopHooks) DispatchEnd(event.Event, int, float64)     {}
func (NoopHooks) Error(event.Event, string, error)          {}
func (NoopHooks) RunEnd(int, float64, int, float64)         {}
