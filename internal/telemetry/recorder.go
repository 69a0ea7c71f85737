package telemetry

import (
	"log"
	"sync"
)

// Recorder fans a stream of BizEvents out to every registered Sink from a
// single worker goroutine behind a 256-event buffer, so a slow sink stalls
// the kernel's run loop only once that buffer is full, and a failing sink
// is logged and skipped. Grounded on io/recorder.py's Recorder/AsyncSink,
// which runs a background thread draining a queue.Queue; re-expressed as a
// buffered channel feeding one goroutine per Recorder instead of one thread
// per process.
type Recorder struct {
	runID string
	sinks []Sink

	ch   chan BizEvent
	done chan struct{}
	wg   sync.WaitGroup

	mu  sync.Mutex
	seq int64
}

// NewRecorder starts the worker goroutine immediately; callers must call
// Close to flush and join it once a run finishes.
func NewRecorder(runID string, sinks ...Sink) *Recorder {
	r := &Recorder{
		runID: runID,
		sinks: sinks,
		ch:    make(chan BizEvent, 256),
		done:  make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

func (r *Recorder) loop() {
	defer r.wg.Done()
	for ev := range r.ch {
		for _, s := range r.sinks {
			if err := s.Write(ev); err != nil {
				log.Printf("telemetry: sink write failed for %s: %v", ev.Name, err)
			}
		}
	}
	close(r.done)
}

// Emit enqueues a milestone for run-wide sequencing and fan-out. It is
// called from KernelLogHooks.DispatchStart with values taken from the event
// itself, and blocks while the channel's buffer is full.
func (r *Recorder) Emit(simTime float64, name string, riderID, driverID int64, reason string, fare int64) {
	r.mu.Lock()
	seq := r.seq
	r.seq++
	r.mu.Unlock()

	r.ch <- BizEvent{
		RunID:    r.runID,
		SimTime:  simTime,
		Seq:      seq,
		Name:     name,
		RiderID:  riderID,
		DriverID: driverID,
		Reason:   reason,
		Fare:     fare,
	}
}

// Close drains the channel, closes every sink, and waits for the worker to
// exit. Per-sink close errors are logged, not returned, matching Emit's
// "never abort a run over telemetry" policy.
func (r *Recorder) Close() {
	close(r.ch)
	<-r.done
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			log.Printf("telemetry: sink close failed: %v", err)
		}
	}
}
