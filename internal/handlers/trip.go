package handlers

import (
	"math"

	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/oracle"
	"arksim/internal/policy"
	"arksim/internal/sim/clock"
)

// Trip is the central state machine: idle→to_pickup→wait→to_dropoff→idle,
// plus the cancellation/timeout paths that can interrupt it at any point.
// Grounded on app/controllers/trips.py TripHandler.
type Trip struct {
	world           *domain.WorldState
	travel          oracle.TravelTime
	clock           clock.SimClock
	dwell           policy.DwellPolicy
	pricing         policy.PricingPolicy
	maxDriverWaitS  float64

	riderCancelEmitted  map[int64]bool
	driverCancelEmitted map[domain.ActiveTaskKey]bool
}

func NewTrip(world *domain.WorldState, travel oracle.TravelTime, c clock.SimClock, dwell policy.DwellPolicy, pricing policy.PricingPolicy, maxDriverWaitS float64) *Trip {
	return &Trip{
		world:               world,
		travel:              travel,
		clock:               c,
		dwell:               dwell,
		pricing:             pricing,
		maxDriverWaitS:      maxDriverWaitS,
		riderCancelEmitted:  make(map[int64]bool),
		driverCancelEmitted: make(map[domain.ActiveTaskKey]bool),
	}
}

func (h *Trip) dowHour(t float64) (int, int) {
	dow, hour := h.clock.DowHourAt(t)
	return int(dow), hour
}

func (h *Trip) scheduleBoarding(now float64, trip *domain.TripState, d *domain.Driver) []event.Event {
	if trip.BoardingStartedT != nil || trip.Boarded {
		return nil
	}
	delay := h.dwell.BoardingDelay(trip.RiderID, d.ID)
	return []event.Event{
		{T: now, Tag: event.BoardingStarted, RiderID: trip.RiderID, DriverID: d.ID, TaskID: d.TaskID},
		{T: now + delay, Tag: event.BoardingComplete, RiderID: trip.RiderID, DriverID: d.ID, TaskID: d.TaskID},
	}
}

// OnTripAssigned verifies the task version, starts the pickup leg, indexes
// the active assignment, and schedules the rider's pickup deadline.
func (h *Trip) OnTripAssigned(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}
	trip := h.world.Trips[ev.RiderID]
	if trip == nil {
		return nil
	}
	trip.DriverID = d.ID
	h.world.ActiveTask[domain.ActiveTaskKey{DriverID: d.ID, TaskID: d.TaskID}] = trip.RiderID

	d.State = domain.DriverToPickup
	dow, hour := h.dowHour(ev.T)
	plan := h.travel.MovePlan(d.Loc, trip.Origin, ev.T, dow, hour, event.LegPickup)
	d.CurrentMove = &plan

	rider := h.world.Riders[trip.RiderID]
	return []event.Event{
		{T: plan.EndT, Tag: event.DriverLegArrive, DriverID: d.ID, RiderID: trip.RiderID, Kind: event.LegPickup, TaskID: d.TaskID},
		{T: ev.T + rider.MaxWait, Tag: event.PickupDeadline, RiderID: trip.RiderID},
	}
}

// OnDriverLegArrive handles the end of any driver motion leg: pickup
// arrival (wait or immediate boarding), dropoff arrival (alighting), or
// reposition arrival (return to idle).
func (h *Trip) OnDriverLegArrive(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}

	switch ev.Kind {
	case event.LegPickup:
		trip := h.world.Trips[ev.RiderID]
		if d.CurrentMove != nil {
			d.Loc = d.CurrentMove.End
		}
		d.CurrentMove = nil
		if trip == nil {
			// canceled while en route; already idle via onRiderCancel
			return []event.Event{{T: ev.T, Tag: event.DriverAvailable, DriverID: d.ID}}
		}
		d.State = domain.DriverWait
		driverAt := ev.T
		trip.DriverAtPickupT = &driverAt
		if trip.RiderAtPickupT != nil && !trip.Boarded {
			return h.scheduleBoarding(ev.T, trip, d)
		}
		return []event.Event{{T: ev.T + h.maxDriverWaitS, Tag: event.DriverWaitTimeout, DriverID: d.ID, TaskID: d.TaskID}}

	case event.LegDropoff:
		trip := h.world.Trips[ev.RiderID]
		if d.CurrentMove != nil {
			d.Loc = d.CurrentMove.End
		}
		d.CurrentMove = nil
		delay := h.dwell.AlightingDelay(trip.RiderID, d.ID)
		return []event.Event{
			{T: ev.T, Tag: event.AlightingStarted, RiderID: trip.RiderID, DriverID: d.ID, TaskID: d.TaskID},
			{T: ev.T + delay, Tag: event.AlightingComplete, RiderID: trip.RiderID, DriverID: d.ID, TaskID: d.TaskID},
		}

	case event.LegReposition:
		if d.CurrentMove != nil {
			d.Loc = d.CurrentMove.End
		}
		h.world.ReturnIdle(d)
		// announce availability so the idle handler can match queued demand
		// from the new position, or keep the driver circulating
		return []event.Event{{T: ev.T, Tag: event.DriverAvailable, DriverID: d.ID}}
	}
	return nil
}

// OnRiderArrivePickup marks the rider present at the pickup point and
// schedules boarding if the driver is already waiting there.
func (h *Trip) OnRiderArrivePickup(ev event.Event) []event.Event {
	trip := h.world.Trips[ev.RiderID]
	if trip == nil || trip.Boarded {
		return nil
	}
	arriveT := ev.T
	trip.RiderAtPickupT = &arriveT
	d := h.world.Drivers[trip.DriverID]
	if d != nil && d.State == domain.DriverWait && !trip.Boarded {
		return h.scheduleBoarding(ev.T, trip, d)
	}
	return nil
}

// OnBoardingComplete marks the trip boarded, starts the dropoff leg, and
// announces TripBoarded.
func (h *Trip) OnBoardingComplete(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}
	trip := h.world.Trips[ev.RiderID]
	if trip == nil || trip.Boarded {
		return nil
	}
	trip.Boarded = true
	d.State = domain.DriverToDropoff
	dow, hour := h.dowHour(ev.T)
	plan := h.travel.MovePlan(d.Loc, trip.Dest, ev.T, dow, hour, event.LegDropoff)
	d.CurrentMove = &plan
	return []event.Event{
		{T: ev.T, Tag: event.TripBoarded, RiderID: trip.RiderID, DriverID: d.ID},
		{T: plan.EndT, Tag: event.DriverLegArrive, DriverID: d.ID, RiderID: trip.RiderID, Kind: event.LegDropoff, TaskID: d.TaskID},
	}
}

// OnAlightingComplete frees the driver and announces TripCompleted,
// carrying the trip's fare so the analytics recorder sees it without
// consulting world state the handler is about to drop.
func (h *Trip) OnAlightingComplete(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}
	trip := h.world.Trips[ev.RiderID]
	h.world.ReturnIdle(d)
	delete(h.world.ActiveTask, domain.ActiveTaskKey{DriverID: d.ID, TaskID: ev.TaskID})
	if trip == nil {
		return nil
	}
	fare := h.fare(ev.T, trip)
	delete(h.world.Trips, ev.RiderID)
	delete(h.world.Riders, ev.RiderID)
	return []event.Event{{T: ev.T, Tag: event.TripCompleted, RiderID: trip.RiderID, DriverID: d.ID, Fare: fare}}
}

// fare prices the finished trip: straight-line trip distance, on-board
// duration, and the boarding wall time (for time-of-day rates).
func (h *Trip) fare(now float64, trip *domain.TripState) int64 {
	boardedAt := now
	if trip.BoardingStartedT != nil {
		boardedAt = *trip.BoardingStartedT
	}
	req := policy.PricingRequest{
		DistanceKm:  math.Hypot(trip.Dest.X-trip.Origin.X, trip.Dest.Y-trip.Origin.Y) / 1000,
		DurationMin: (now - boardedAt) / 60,
		RequestTime: h.clock.ToWall(boardedAt),
	}
	return h.pricing.Price(req).Total().Amount
}

// OnBoardingStarted records the dwell start time; idempotent and
// task-version-guarded, otherwise observational.
func (h *Trip) OnBoardingStarted(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}
	trip := h.world.Trips[ev.RiderID]
	if trip != nil && trip.BoardingStartedT == nil {
		t := ev.T
		trip.BoardingStartedT = &t
	}
	return nil
}

// OnAlightingStarted mirrors OnBoardingStarted for the dropoff dwell.
func (h *Trip) OnAlightingStarted(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}
	trip := h.world.Trips[ev.RiderID]
	if trip != nil && trip.AlightingStartedT == nil {
		t := ev.T
		trip.AlightingStartedT = &t
	}
	return nil
}

// OnPickupDeadline idempotently converts a rider's pickup deadline into the
// canonical RiderCancel. A boarded (or already-gone) trip is past its
// deadline window and the stale timer is dropped.
func (h *Trip) OnPickupDeadline(ev event.Event) []event.Event {
	trip := h.world.Trips[ev.RiderID]
	if trip == nil || trip.Boarded {
		return nil
	}
	if h.riderCancelEmitted[ev.RiderID] {
		return nil
	}
	h.riderCancelEmitted[ev.RiderID] = true
	return []event.Event{{T: ev.T, Tag: event.RiderCancel, RiderID: ev.RiderID, Reason: "pickup_deadline"}}
}

// OnRiderCancel frees the assigned driver (if any), invalidating its
// in-flight task, and drops the trip/rider records. A no-op for a boarded
// or already-absent trip, and for an unassigned trip (Demand handles that
// case).
func (h *Trip) OnRiderCancel(ev event.Event) []event.Event {
	trip := h.world.Trips[ev.RiderID]
	if trip == nil || trip.Boarded {
		return nil
	}
	if trip.DriverID == -1 {
		return nil
	}
	d := h.world.Drivers[trip.DriverID]
	if d == nil {
		return nil
	}

	delete(h.world.ActiveTask, domain.ActiveTaskKey{DriverID: d.ID, TaskID: d.TaskID})

	if d.CurrentMove != nil && d.State == domain.DriverToPickup {
		d.Loc = d.CurrentMove.Pos(ev.T)
	}
	d.TaskID++
	d.CurrentMove = nil
	h.world.ReturnIdle(d)

	delete(h.world.Trips, ev.RiderID)
	delete(h.world.Riders, ev.RiderID)

	return []event.Event{{T: ev.T, Tag: event.DriverAvailable, DriverID: d.ID}}
}

// OnDriverWaitTimeout idempotently converts a driver's pickup wait into the
// canonical DriverCancel. A timer with a stale task version, or one that
// fires after the driver has left the waiting state (the rider boarded),
// is dropped.
func (h *Trip) OnDriverWaitTimeout(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID || d.State != domain.DriverWait {
		return nil
	}
	key := domain.ActiveTaskKey{DriverID: ev.DriverID, TaskID: ev.TaskID}
	if h.driverCancelEmitted[key] {
		return nil
	}
	h.driverCancelEmitted[key] = true
	return []event.Event{{T: ev.T, Tag: event.DriverCancel, DriverID: ev.DriverID, TaskID: ev.TaskID, Reason: "wait_timeout"}}
}

// OnDriverCancel frees the driver, invalidates its task, clears the trip's
// driver link, and requeues the rider (if the trip still exists). A cancel
// carrying a stale task version is dropped.
func (h *Trip) OnDriverCancel(ev event.Event) []event.Event {
	d := h.world.Drivers[ev.DriverID]
	if d == nil || ev.TaskID != d.TaskID {
		return nil
	}

	key := domain.ActiveTaskKey{DriverID: ev.DriverID, TaskID: ev.TaskID}
	riderID, hadRider := h.world.ActiveTask[key]
	delete(h.world.ActiveTask, key)

	d.TaskID++
	d.CurrentMove = nil
	h.world.ReturnIdle(d)

	out := []event.Event{{T: ev.T, Tag: event.DriverAvailable, DriverID: d.ID}}
	if hadRider {
		if trip := h.world.Trips[riderID]; trip != nil {
			trip.DriverID = -1
		}
		out = append(out, event.Event{T: ev.T, Tag: event.RiderRequeue, RiderID: riderID})
	}
	return out
}
