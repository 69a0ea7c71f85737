package telemetry

import (
	"log"

	"arksim/internal/event"
)

// KernelLogHooks implements the kernel's Hooks contract: structured logging
// of every lifecycle callback (sampled per dispatch, per LogConfig), plus
// fan-out of milestone events into a Recorder. It satisfies kernel.Hooks
// structurally — telemetry does not import kernel, avoiding an import
// cycle with anything kernel-adjacent that might one day want telemetry.
// Grounded on io/kernel_logging.py KernelLoggingHooks.
type KernelLogHooks struct {
	Recorder    *Recorder
	Debug       bool
	SampleEvery int

	dispatches int64
}

// NewKernelLogHooks builds hooks that log at dispatch_start every
// sampleEvery'th event (1 = every event), always log run_start, run_end and
// error, and log schedule and dispatch_end only when debug is set.
func NewKernelLogHooks(rec *Recorder, debug bool, sampleEvery int) *KernelLogHooks {
	if sampleEvery <= 0 {
		sampleEvery = 1
	}
	return &KernelLogHooks{Recorder: rec, Debug: debug, SampleEvery: sampleEvery}
}

func (h *KernelLogHooks) RunStart(until float64, maxEvents int, qsize int) {
	log.Printf("run_start until=%.3f max_events=%d qsize=%d", until, maxEvents, qsize)
}

func (h *KernelLogHooks) Schedule(ev event.Event, now float64, qsize int) {
	if h.Debug {
		log.Printf("schedule %s now=%.3f qsize=%d", ev, now, qsize)
	}
}

func (h *KernelLogHooks) DispatchStart(ev event.Event, qsize int, handlers int) {
	h.dispatches++
	if h.dispatches%int64(h.SampleEvery) == 0 {
		log.Printf("dispatch %s qsize=%d handlers=%d", ev, qsize, handlers)
	}
	if h.Recorder == nil {
		return
	}
	if name, ok := milestoneName(ev.Tag); ok {
		h.Recorder.Emit(ev.T, name, ev.RiderID, ev.DriverID, ev.Reason, ev.Fare)
	}
}

func (h *KernelLogHooks) DispatchEnd(ev event.Event, produced int, ms float64) {
	if h.Debug {
		log.Printf("dispatch_end %s produced=%d dur_ms=%.3f", ev, produced, ms)
	}
}

func (h *KernelLogHooks) Error(ev event.Event, reason string, err error) {
	log.Printf("error %s reason=%s err=%v", ev, reason, err)
}

func (h *KernelLogHooks) RunEnd(processed int, lastT float64, qsize int, wallMs float64) {
	log.Printf("run_end processed=%d last_t=%.3f qsize=%d wall_ms=%.3f", processed, lastT, qsize, wallMs)
}

// milestoneName maps an event tag to its analytics milestone name, if it
// has one. Not every tag is a milestone: DriverLegArrive, BoardingStarted,
// and the like are operational, not analytics-worthy.
func milestoneName(tag event.Tag) (string, bool) {
	switch tag {
	case event.RiderRequestPlaced:
		return EventTripRequested, true
	case event.TripAssigned:
		return EventTripMatched, true
	case event.TripBoarded:
		return EventTripBoarded, true
	case event.TripCompleted:
		return EventTripCompleted, true
	case event.RiderCancel:
		return EventRiderCanceled, true
	case event.DriverCancel:
		return EventDriverCanceled, true
	default:
		return "", false
	}
}
