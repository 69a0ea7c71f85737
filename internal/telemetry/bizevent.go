// Package telemetry implements the core's observational surface: a
// structured-logging Hooks implementation for the kernel's lifecycle
// callbacks, and a fan-out analytics Recorder that serializes milestone
// events to any number of Sinks. Grounded on the prototype's
// io/kernel_logging.py (per-dispatch structured logging) and
// io/recorder.py / io/business_events.py (the BizEvent/AsyncSink/Recorder
// fan-out), re-expressed with Go's stdlib log and a buffered channel +
// worker goroutine instead of a Python logger and queue.Queue+thread.
package telemetry

// BizEvent is one analytics milestone, newline-delimited-JSON-serializable
// by any Sink. Grounded on io/business_events.py BusinessEvent.
type BizEvent struct {
	RunID    string  `json:"run_id"`
	SimTime  float64 `json:"sim_time"`
	Seq      int64   `json:"seq"`
	Name     string  `json:"name"`
	RiderID  int64   `json:"rider_id,omitempty"`
	DriverID int64   `json:"driver_id,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Fare     int64   `json:"fare,omitempty"`
}

// Milestone event names, matching the §6 "Analytics records" list.
const (
	EventTripRequested = "TripRequested"
	EventTripMatched   = "TripMatched"
	EventTripBoarded   = "TripBoarded"
	EventTripCompleted = "TripCompleted"
	EventRiderCanceled = "RiderCanceled"
	EventDriverCanceled = "DriverCanceled"
)
