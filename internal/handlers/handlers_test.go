package handlers

import (
	"math/rand/v2"
	"testing"

	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/oracle"
	"arksim/internal/oracle/mechanics"
	"arksim/internal/policy"
	"arksim/internal/sim/clock"
	"arksim/internal/sim/kernel"
)

// core bundles a wired kernel + world for scenario tests, mirroring the
// prototype's test fixtures (tests/app/conftest.py builds the same
// Demand+Trip+Idle+Fleet quartet against a fixed-speed oracle).
type core struct {
	k     *kernel.Kernel
	world *domain.WorldState
	idle  *Idle
	trace []event.Event
}

func newCore(pickupS, dropoffS, repositionS, maxDriverWaitS float64, dwell policy.DwellPolicy) *core {
	world := domain.NewWorldState(10)
	travel := oracle.NewFixed(pickupS, dropoffS, repositionS)
	c := clock.NewUTCEpoch(2024, 1, 1, 0, 0, 0) // a Monday

	cr := &core{world: world}
	k := kernel.New(traceHooks{trace: &cr.trace})

	demand := NewDemand(world, policy.NearestAssign{})
	trip := NewTrip(world, travel, c, dwell, policy.NewConstantPricing(0), maxDriverWaitS)
	idle := NewIdle(world, demand, travel, c, policy.NewCirculatingIdlePolicy(0, false), nil, nil)
	fleet := NewFleet(world)
	cr.idle = idle

	k.Subscribe(event.RiderRequestPlaced, demand.OnRiderRequestPlaced)
	k.Subscribe(event.RiderTimeout, demand.OnRiderTimeout)
	k.Subscribe(event.RiderCancel, trip.OnRiderCancel)
	k.Subscribe(event.RiderCancel, demand.OnRiderCancel)
	k.Subscribe(event.RiderRequeue, demand.OnRiderRequeue)

	k.Subscribe(event.TripAssigned, trip.OnTripAssigned)
	k.Subscribe(event.DriverLegArrive, trip.OnDriverLegArrive)
	k.Subscribe(event.RiderArrivePickup, trip.OnRiderArrivePickup)
	k.Subscribe(event.BoardingStarted, trip.OnBoardingStarted)
	k.Subscribe(event.BoardingComplete, trip.OnBoardingComplete)
	k.Subscribe(event.AlightingStarted, trip.OnAlightingStarted)
	k.Subscribe(event.AlightingComplete, trip.OnAlightingComplete)
	k.Subscribe(event.PickupDeadline, trip.OnPickupDeadline)
	k.Subscribe(event.DriverWaitTimeout, trip.OnDriverWaitTimeout)
	k.Subscribe(event.DriverCancel, trip.OnDriverCancel)

	k.Subscribe(event.TripCompleted, idle.OnTripCompleted)
	k.Subscribe(event.DriverAvailable, idle.OnDriverAvailable)

	k.Subscribe(event.DriverStartShift, fleet.OnDriverStartShift)

	cr.k = k
	return cr
}

func (c *core) schedule(t *testing.T, ev event.Event) {
	t.Helper()
	if err := c.k.Schedule(ev); err != nil {
		t.Fatalf("schedule %v: %v", ev, err)
	}
}

func (c *core) run(t *testing.T, until float64) {
	t.Helper()
	if _, err := c.k.Run(&until, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func (c *core) eventsOf(tag event.Tag) []event.Event {
	var out []event.Event
	for _, ev := range c.trace {
		if ev.Tag == tag {
			out = append(out, ev)
		}
	}
	return out
}

type traceHooks struct {
	kernel.NoopHooks
	trace *[]event.Event
}

func (h traceHooks) DispatchStart(ev event.Event, qsize int, handlers int) {
	*h.trace = append(*h.trace, ev)
}

func addDriver(c *core, t *testing.T, id int64, loc event.Point, shiftT float64) {
	c.schedule(t, event.Event{T: shiftT, Tag: event.DriverStartShift, DriverID: id, Loc: loc})
}

func placeRider(c *core, t *testing.T, riderID int64, reqT, maxWait, walkS float64) {
	c.schedule(t, event.Event{T: reqT, Tag: event.RiderRequestPlaced, RiderID: riderID, MaxWait: maxWait, WalkS: walkS})
}

// Scenario 1: baseline queue-and-serve (spec §8.1).
func TestBaselineQueueAndServe(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 601, 0, 999, 0)
	placeRider(c, t, 602, 5, 999, 0)
	c.run(t, 100)

	wantAssignedAt := map[int64]float64{601: 0, 602: 30}
	for _, ev := range c.eventsOf(event.TripAssigned) {
		if want, ok := wantAssignedAt[ev.RiderID]; !ok || ev.T != want {
			t.Fatalf("TripAssigned(r=%d) at t=%v, want %v", ev.RiderID, ev.T, wantAssignedAt[ev.RiderID])
		}
	}
	wantPickupAt := map[int64]float64{601: 10, 602: 40}
	for _, ev := range c.eventsOf(event.DriverLegArrive) {
		if ev.Kind != event.LegPickup {
			continue
		}
		if want := wantPickupAt[ev.RiderID]; ev.T != want {
			t.Fatalf("pickup arrive(r=%d) at t=%v, want %v", ev.RiderID, ev.T, want)
		}
	}
	wantCompletedAt := map[int64]float64{601: 30, 602: 60}
	for _, ev := range c.eventsOf(event.TripCompleted) {
		if want := wantCompletedAt[ev.RiderID]; ev.T != want {
			t.Fatalf("TripCompleted(r=%d) at t=%v, want %v", ev.RiderID, ev.T, want)
		}
	}
}

// Scenario 2: user cancel en route (spec §8.2).
func TestUserCancelEnRoute(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 0, 999, 0)
	placeRider(c, t, 2, 1, 999, 0)
	c.schedule(t, event.Event{T: 3, Tag: event.RiderCancel, RiderID: 1, Reason: "user"})
	c.run(t, 100)

	var r2Assigned bool
	for _, ev := range c.eventsOf(event.TripAssigned) {
		if ev.RiderID == 2 {
			r2Assigned = true
			if ev.T != 3 {
				t.Fatalf("TripAssigned(r=2) at t=%v, want 3", ev.T)
			}
		}
	}
	if !r2Assigned {
		t.Fatalf("expected r=2 to be assigned")
	}
	for _, ev := range c.eventsOf(event.TripBoarded) {
		if ev.RiderID == 1 {
			t.Fatalf("r=1 should never board")
		}
	}
	for _, ev := range c.eventsOf(event.DriverLegArrive) {
		if ev.RiderID != 2 {
			continue
		}
		switch ev.Kind {
		case event.LegPickup:
			if ev.T != 13 {
				t.Fatalf("pickup arrive(r=2) at t=%v, want 13", ev.T)
			}
		case event.LegDropoff:
			if ev.T != 33 {
				t.Fatalf("dropoff arrive(r=2) at t=%v, want 33", ev.T)
			}
		}
	}
}

// Scenario 3: pickup-deadline cancel and rematch (spec §8.3). r=10 is
// matched immediately but walks so long its deadline fires before
// boarding; the cancel frees the driver, who picks up the queued r=20 in
// the same instant.
func TestPickupDeadlineCancelAndRematch(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 10, 0, 8, 999)
	placeRider(c, t, 20, 5, 999, 0)
	c.run(t, 100)

	var canceled, assigned bool
	for _, ev := range c.eventsOf(event.RiderCancel) {
		if ev.RiderID == 10 && ev.Reason == "pickup_deadline" && ev.T == 8 {
			canceled = true
		}
	}
	for _, ev := range c.eventsOf(event.TripAssigned) {
		if ev.RiderID == 20 && ev.T == 8 {
			assigned = true
		}
		if ev.RiderID == 10 && ev.T > 0 {
			t.Fatalf("r=10 should never be reassigned after its deadline cancel")
		}
	}
	if !canceled {
		t.Fatalf("expected RiderCancel(r=10, reason=pickup_deadline, t=8)")
	}
	if !assigned {
		t.Fatalf("expected TripAssigned(r=20, t=8)")
	}
}

// A rider that waits in the queue before being matched carries a stale
// RiderTimeout anchored to its request time; once the rider is assigned,
// that timer must not cancel the live trip.
func TestQueueTimerDoesNotCancelLiveAssignment(t *testing.T) {
	c := newCore(5, 5, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 0, 999, 0)  // occupies the driver until t=10
	placeRider(c, t, 2, 1, 12, 0)   // queued; stale queue timer at t=13, matched at t=10
	c.run(t, 100)

	for _, ev := range c.eventsOf(event.RiderCancel) {
		if ev.RiderID == 2 {
			t.Fatalf("stale queue timer canceled r=2's live assignment at t=%v", ev.T)
		}
	}
	var completed bool
	for _, ev := range c.eventsOf(event.TripCompleted) {
		if ev.RiderID == 2 {
			completed = true
		}
	}
	if !completed {
		t.Fatalf("expected r=2's trip to complete")
	}
}

// Scenario 4: driver-wait timeout leads to requeue (spec §8.4).
func TestDriverWaitTimeoutRequeue(t *testing.T) {
	c := newCore(10, 20, 30, 3, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 100, 0, 999, 999)
	placeRider(c, t, 200, 11, 999, 0)
	c.run(t, 100)

	var canceled, assigned bool
	for _, ev := range c.eventsOf(event.DriverCancel) {
		if ev.Reason == "wait_timeout" && ev.T == 13 {
			canceled = true
		}
	}
	for _, ev := range c.eventsOf(event.TripAssigned) {
		if ev.RiderID == 200 && ev.T == 13 {
			assigned = true
		}
	}
	if !canceled {
		t.Fatalf("expected DriverCancel(reason=wait_timeout, t=13)")
	}
	if !assigned {
		t.Fatalf("expected TripAssigned(r=200, t=13)")
	}
	for _, ev := range c.eventsOf(event.TripBoarded) {
		if ev.RiderID == 100 {
			t.Fatalf("r=100 should never board")
		}
	}
}

// Scenario 5: dwell timing (spec §8.5).
func TestDwellTiming(t *testing.T) {
	c := newCore(10, 20, 30, 300, fixedDwell{boardS: 5, alightS: 3})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 0, 999, 0)
	c.run(t, 100)

	wantAt := func(tag event.Tag, t float64) bool {
		for _, ev := range c.eventsOf(tag) {
			if ev.T == t {
				return true
			}
		}
		return false
	}
	if !wantAt(event.BoardingStarted, 10) {
		t.Fatalf("expected BoardingStarted at t=10")
	}
	if !wantAt(event.BoardingComplete, 15) || !wantAt(event.TripBoarded, 15) {
		t.Fatalf("expected BoardingComplete/TripBoarded at t=15")
	}
	if !wantAt(event.DriverLegArrive, 35) {
		t.Fatalf("expected dropoff arrive at t=35")
	}
	if !wantAt(event.AlightingStarted, 35) {
		t.Fatalf("expected AlightingStarted at t=35")
	}
	if !wantAt(event.AlightingComplete, 38) || !wantAt(event.TripCompleted, 38) {
		t.Fatalf("expected AlightingComplete/TripCompleted at t=38")
	}
}

type fixedDwell struct{ boardS, alightS float64 }

func (d fixedDwell) BoardingDelay(int64, int64) float64  { return d.boardS }
func (d fixedDwell) AlightingDelay(int64, int64) float64 { return d.alightS }

// With the circulating policy on, an unmatched driver repositions between
// sampled points, leg after leg, and demand arriving mid-leg is matched
// the moment the current leg ends.
func TestContinualRepositionCirculatesIdleDriver(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	c.idle.pol = policy.NewCirculatingIdlePolicy(0, true)
	c.idle.od = mechanics.NewIdealized([]mechanics.Zone{{X0: 0, Y0: 0, X1: 1000, Y1: 1000}}, nil)
	c.idle.g = rand.New(rand.NewPCG(1, 2))
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 45, 999, 0)
	c.run(t, 100)

	var repoTimes []float64
	for _, ev := range c.eventsOf(event.DriverLegArrive) {
		if ev.Kind == event.LegReposition {
			repoTimes = append(repoTimes, ev.T)
		}
	}
	if len(repoTimes) < 2 || repoTimes[0] != 30 || repoTimes[1] != 60 {
		t.Fatalf("reposition arrivals = %v, want [30 60 ...]", repoTimes)
	}
	assigned := c.eventsOf(event.TripAssigned)
	if len(assigned) != 1 || assigned[0].T != 60 {
		t.Fatalf("TripAssigned = %v, want exactly one at t=60", assigned)
	}
	var completed bool
	for _, ev := range c.eventsOf(event.TripCompleted) {
		if ev.RiderID == 1 && ev.T == 90 {
			completed = true
		}
	}
	if !completed {
		t.Fatalf("expected TripCompleted(r=1, t=90)")
	}
}

// A boarded trip cannot be canceled: a rider cancel arriving mid-ride (or
// a stale pickup deadline firing after boarding) must leave the trip to
// run to completion.
func TestBoardedTripSurvivesCancel(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 0, 999, 0)
	// boarding completes at t=10; both a user cancel and a deadline land
	// after that
	c.schedule(t, event.Event{T: 12, Tag: event.RiderCancel, RiderID: 1, Reason: "user"})
	c.schedule(t, event.Event{T: 14, Tag: event.PickupDeadline, RiderID: 1})
	c.run(t, 100)

	completed := c.eventsOf(event.TripCompleted)
	if len(completed) != 1 || completed[0].T != 30 {
		t.Fatalf("TripCompleted = %v, want exactly one at t=30", completed)
	}
}

// Duplicate deadline timers for the same rider must collapse to a single
// canonical cancel.
func TestDuplicatePickupDeadlineSuppressed(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	addDriver(c, t, 1, event.Point{}, 0)
	placeRider(c, t, 1, 0, 5, 999) // assigned; Trip's deadline fires at t=5
	c.schedule(t, event.Event{T: 5, Tag: event.PickupDeadline, RiderID: 1})
	c.run(t, 100)

	if got := len(c.eventsOf(event.RiderCancel)); got != 1 {
		t.Fatalf("RiderCancel count = %d, want 1", got)
	}
}

// Stale events carrying an outdated task_id must be dropped silently
// rather than acted on.
func TestStaleTaskIDDropped(t *testing.T) {
	c := newCore(10, 20, 30, 300, policy.ZeroDwell{})
	d := &domain.Driver{ID: 1, State: domain.DriverIdle}
	c.world.AddDriver(d)
	c.schedule(t, event.Event{T: 1, Tag: event.DriverLegArrive, DriverID: 1, TaskID: d.TaskID - 1, Kind: event.LegPickup})
	c.run(t, 5)
	if d.State != domain.DriverIdle {
		t.Fatalf("stale DriverLegArrive mutated driver state: %v", d.State)
	}
}
