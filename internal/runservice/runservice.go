// Package runservice drives one scenario document from parse to finished
// telemetry, the shared path behind both the CLI and HTTP entrypoints.
// Grounded on the teacher's modules/order/service.go request/response shape
// (a Service wrapping a store-like registry, returning a typed result the
// transport layer serializes) adapted from order lifecycle to sim-run
// lifecycle.
package runservice

import (
	"fmt"
	"sync"

	"arksim/internal/sim/build"
	"arksim/internal/sim/seed"
	"arksim/internal/simconfig"
	"arksim/internal/telemetry"
)

// Status enumerates a run's lifecycle state.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run is one scenario execution's observable state. Fields other than ID
// are guarded by mu; readers use Snapshot.
type Run struct {
	ID string

	mu        sync.Mutex
	status    Status
	errMsg    string
	processed int
	lastT     float64
	memory    *telemetry.MemorySink

	done chan struct{}
}

// RunView is a consistent point-in-time copy of a run's state.
type RunView struct {
	ID        string
	Status    Status
	Err       string
	Processed int
	LastT     float64
}

// Snapshot returns the run's current state under the lock, so the HTTP
// surface can poll while the run's goroutine is still mutating it.
func (r *Run) Snapshot() RunView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunView{ID: r.ID, Status: r.status, Err: r.errMsg, Processed: r.processed, LastT: r.lastT}
}

// Events returns a snapshot of every analytics milestone recorded so far.
func (r *Run) Events() []telemetry.BizEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.memory == nil {
		return nil
	}
	return r.memory.Snapshot()
}

// Wait blocks until the run has finished (Status is Done or Failed). A CLI
// invocation is the run's only caller and can simply block; the HTTP
// surface instead polls Get and never calls Wait.
func (r *Run) Wait() {
	<-r.done
}

// Service registers and tracks runs in memory, so GET /runs/:id (and a CLI
// run's own caller) can observe a run's progress and result.
type Service struct {
	mu   sync.Mutex
	runs map[string]*Run

	sinkFactory func(runID string) []telemetry.Sink
}

// NewService builds a Service. extraSinks, if non-nil, is called once per
// run to build the sinks a deployment wants alongside the always-present
// MemorySink (e.g. a PostgresSink/RedisMirrorSink wired to a live DB/Redis).
func NewService(extraSinks func(runID string) []telemetry.Sink) *Service {
	return &Service{
		runs:        make(map[string]*Run),
		sinkFactory: extraSinks,
	}
}

// Submit starts a run in its own goroutine and returns immediately with the
// run's id; the caller observes progress via Get.
func (s *Service) Submit(runID string, scenario *simconfig.Scenario) *Run {
	run := &Run{ID: runID, status: StatusRunning, done: make(chan struct{})}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	go s.execute(run, scenario)
	return run
}

// Get looks up a previously submitted run by id.
func (s *Service) Get(runID string) (*Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	return r, ok
}

func (s *Service) execute(run *Run, scenario *simconfig.Scenario) {
	defer close(run.done)

	memory := telemetry.NewMemorySink()
	sinks := []telemetry.Sink{memory}
	if s.sinkFactory != nil {
		sinks = append(sinks, s.sinkFactory(run.ID)...)
	}
	rec := telemetry.NewRecorder(run.ID, sinks...)
	recClosed := false
	defer func() {
		if !recClosed {
			rec.Close()
		}
	}()

	hooks := telemetry.NewKernelLogHooks(rec, scenario.Log.Debug, scenario.Log.SampleEvery)

	run.mu.Lock()
	run.memory = memory
	run.mu.Unlock()

	core, err := build.From(scenario, hooks)
	if err != nil {
		run.fail(fmt.Errorf("runservice: build core: %w", err))
		return
	}

	horizon := float64(scenario.Sim.Duration)
	for _, ev := range seed.Batch(core, scenario.World, horizon) {
		if err := core.Kernel.Schedule(ev); err != nil {
			run.fail(fmt.Errorf("runservice: seed event: %w", err))
			return
		}
	}

	processed, err := core.Kernel.Run(&horizon, 0)
	if err != nil {
		run.fail(fmt.Errorf("runservice: run: %w", err))
		return
	}

	// Flush every milestone into the sinks before the run reads as done.
	rec.Close()
	recClosed = true

	run.mu.Lock()
	run.status = StatusDone
	run.processed = processed
	run.lastT = core.Kernel.Now()
	run.mu.Unlock()
}

func (r *Run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusFailed
	r.errMsg = err.Error()
}
