// Package handlers implements the core's business logic: Demand, Trip,
// Idle, and Fleet, each a cooperating set of kernel-subscribed handler
// functions that mutate the shared WorldState and return follow-on events.
// Grounded on the prototype's app/controllers/*.py modules.
package handlers

import (
	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/policy"
)

// Demand owns the FIFO queue of unmatched rider ids and the
// request/cancel/requeue lifecycle that feeds it. Grounded on
// app/controllers/demand.py DemandHandler.
type Demand struct {
	world   *domain.WorldState
	matcher policy.MatchingPolicy
	queue   []int64
}

func NewDemand(world *domain.WorldState, matcher policy.MatchingPolicy) *Demand {
	return &Demand{world: world, matcher: matcher}
}

func (d *Demand) inQueue(riderID int64) int {
	for i, id := range d.queue {
		if id == riderID {
			return i
		}
	}
	return -1
}

func (d *Demand) removeFromQueue(riderID int64) {
	if i := d.inQueue(riderID); i >= 0 {
		d.queue = append(d.queue[:i], d.queue[i+1:]...)
	}
}

// OnRiderRequestPlaced registers the rider and trip, models the walk (or
// immediate presence), and either matches an idle driver now or enqueues
// the rider with a queue-expiry timer. The timer is RiderTimeout, not
// PickupDeadline: it only means anything while the rider is still queued.
// A rider matched before it fires gets a PickupDeadline from Trip's
// OnTripAssigned, anchored to the match time, and the stale RiderTimeout
// no-ops — two timers anchored to different clocks must not share a tag,
// or the earlier one cancels a live assignment.
func (d *Demand) OnRiderRequestPlaced(ev event.Event) []event.Event {
	r := &domain.Rider{ID: ev.RiderID, Pickup: ev.Pickup, Dropoff: ev.Dropoff, MaxWait: ev.MaxWait, WalkS: ev.WalkS}
	d.world.Riders[r.ID] = r
	trip := &domain.TripState{RiderID: r.ID, DriverID: -1, Origin: r.Pickup, Dest: r.Dropoff}
	d.world.Trips[r.ID] = trip

	var out []event.Event
	if r.WalkS > 0 {
		out = append(out, event.Event{T: ev.T + r.WalkS, Tag: event.RiderArrivePickup, RiderID: r.ID})
	} else {
		t := ev.T
		trip.RiderAtPickupT = &t
	}

	if drv := d.matcher.SelectDriver(d.world, r); drv != nil {
		drv.TaskID++
		trip.DriverID = drv.ID
		out = append(out, event.Event{T: ev.T, Tag: event.TripAssigned, DriverID: drv.ID, RiderID: r.ID, TaskID: drv.TaskID})
	} else {
		d.queue = append(d.queue, r.ID)
		out = append(out, event.Event{T: ev.T + r.MaxWait, Tag: event.RiderTimeout, RiderID: r.ID})
	}
	return out
}

// OnRiderTimeout expires a rider that is still waiting in the queue when
// its timer fires, dropping its trip/rider state. The queue-membership
// check is the whole contract: a rider matched in the meantime is no
// longer queued, so the timer is stale and nothing happens (the trip's
// own PickupDeadline, scheduled at assignment, bounds it from there).
func (d *Demand) OnRiderTimeout(ev event.Event) []event.Event {
	if d.inQueue(ev.RiderID) < 0 {
		return nil
	}
	d.removeFromQueue(ev.RiderID)
	delete(d.world.Trips, ev.RiderID)
	delete(d.world.Riders, ev.RiderID)
	return nil
}

// OnRiderCancel removes a queued rider and drops its trip/rider records.
// Idempotent: a rider already removed (e.g. because Trip handled an
// assigned cancel first) is simply absent from the queue and maps. A
// boarded trip is past the point of cancellation and is left untouched.
func (d *Demand) OnRiderCancel(ev event.Event) []event.Event {
	if trip := d.world.Trips[ev.RiderID]; trip != nil && trip.Boarded {
		return nil
	}
	d.removeFromQueue(ev.RiderID)
	delete(d.world.Trips, ev.RiderID)
	delete(d.world.Riders, ev.RiderID)
	return nil
}

// OnRiderRequeue reinserts a rider at the front of the queue, retaining
// priority over fresh demand, as long as its trip record still exists.
func (d *Demand) OnRiderRequeue(ev event.Event) []event.Event {
	if _, ok := d.world.Trips[ev.RiderID]; ok {
		d.queue = append([]int64{ev.RiderID}, d.queue...)
	}
	return nil
}

// TryMatchFromQueue pops the oldest queued rider and binds it to an idle
// driver if one exists. Called by Idle on TripCompleted/DriverAvailable.
// Pops at most one pair per call (§9 open-question resolution).
func (d *Demand) TryMatchFromQueue(now float64) []event.Event {
	if len(d.queue) == 0 {
		return nil
	}
	drv := d.matcher.SelectDriver(d.world, d.world.Riders[d.queue[0]])
	if drv == nil {
		return nil
	}
	riderID := d.queue[0]
	d.queue = d.queue[1:]
	trip := d.world.Trips[riderID]
	trip.DriverID = drv.ID
	drv.TaskID++
	return []event.Event{{T: now, Tag: event.TripAssigned, DriverID: drv.ID, RiderID: riderID, TaskID: drv.TaskID}}
}
