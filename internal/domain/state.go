// Package domain holds the process-wide simulated world: drivers, riders,
// trips, the idle set, and the active-assignment index. Grounded on the
// prototype's domain/state.py WorldState and domain/entities/{driver,rider}.py.
// WorldState is owned exclusively by the kernel's run loop; no locking is
// required because the scheduling model is single-threaded (see SPEC_FULL.md §5).
package domain

import "arksim/internal/event"

// DriverState enumerates a driver's motion/engagement state.
type DriverState int

const (
	DriverIdle DriverState = iota
	DriverToPickup
	DriverWait
	DriverToDropoff
	DriverToReposition
)

// Driver is a vehicle in the fleet.
type Driver struct {
	ID          int64
	Loc         event.Point
	State       DriverState
	TaskID      int64
	CurrentMove *MotionPlan
}

// Rider is a trip requester.
type Rider struct {
	ID      int64
	Pickup  event.Point
	Dropoff event.Point
	MaxWait float64
	WalkS   float64
}

// TripState is the shared record a rider and a (possibly unassigned)
// driver both reference. DriverID == -1 means unassigned.
type TripState struct {
	RiderID  int64
	DriverID int64
	Origin   event.Point
	Dest     event.Point

	DriverAtPickupT   *float64
	RiderAtPickupT    *float64
	BoardingStartedT  *float64
	Boarded           bool
	AlightingStartedT *float64
}

// ActiveTaskKey indexes a committed assignment by (driver, task version).
type ActiveTaskKey struct {
	DriverID int64
	TaskID   int64
}

// WorldState is the single mutable aggregate the run loop threads through
// every handler call.
type WorldState struct {
	Capacity int

	Drivers map[int64]*Driver
	Riders  map[int64]*Rider
	Trips   map[int64]*TripState

	idleOrder []int64          // FIFO order of idle driver ids; Go map iteration is
	idleSet   map[int64]struct{} // randomized per-process and cannot be used directly
	// without breaking cross-run determinism, so idle membership is tracked
	// in this ordered slice+set pair instead of a bare map (see DESIGN.md).

	ActiveTask map[ActiveTaskKey]int64
}

// NewWorldState builds an empty world with the given fleet capacity hint.
func NewWorldState(capacity int) *WorldState {
	return &WorldState{
		Capacity:   capacity,
		Drivers:    make(map[int64]*Driver),
		Riders:     make(map[int64]*Rider),
		Trips:      make(map[int64]*TripState),
		idleSet:    make(map[int64]struct{}),
		ActiveTask: make(map[ActiveTaskKey]int64),
	}
}

// AddDriver registers d in the world. If d.State is DriverIdle, it is also
// added to the idle set (invariant: id ∈ idle_driver_ids ⇔ state == idle).
func (w *WorldState) AddDriver(d *Driver) {
	w.Drivers[d.ID] = d
	if d.State == DriverIdle {
		w.markIdle(d.ID)
	}
}

// IsIdle reports whether id is currently in the idle set.
func (w *WorldState) IsIdle(id int64) bool {
	_, ok := w.idleSet[id]
	return ok
}

func (w *WorldState) markIdle(id int64) {
	if _, ok := w.idleSet[id]; ok {
		return
	}
	w.idleSet[id] = struct{}{}
	w.idleOrder = append(w.idleOrder, id)
}

// GetIdleDriver pops and returns the longest-idle driver, or nil if none
// are idle. Ordering is a deterministic FIFO over idle-entry order, kept
// in idleOrder/idleSet rather than a bare map, since Go's map iteration
// order is randomized per process and would otherwise break the
// determinism guarantee (two runs with identical config must produce
// identical dispatch traces).
func (w *WorldState) GetIdleDriver() *Driver {
	for len(w.idleOrder) > 0 {
		id := w.idleOrder[0]
		w.idleOrder = w.idleOrder[1:]
		if _, ok := w.idleSet[id]; !ok {
			continue // id no longer in the idle set; skip
		}
		delete(w.idleSet, id)
		return w.Drivers[id]
	}
	return nil
}

// ReturnIdle marks d idle, clears its motion plan, and re-adds it to the
// idle set.
func (w *WorldState) ReturnIdle(d *Driver) {
	d.State = DriverIdle
	d.CurrentMove = nil
	w.markIdle(d.ID)
}

// RemoveIdle drops id from the idle set and from idleOrder, so a driver
// that later returns to idle queues behind the drivers already idle.
func (w *WorldState) RemoveIdle(id int64) {
	if _, ok := w.idleSet[id]; !ok {
		return
	}
	delete(w.idleSet, id)
	for i, v := range w.idleOrder {
		if v == id {
			w.idleOrder = append(w.idleOrder[:i], w.idleOrder[i+1:]...)
			break
		}
	}
}
