package handlers

import (
	"math/rand/v2"

	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/oracle"
	"arksim/internal/oracle/mechanics"
	"arksim/internal/policy"
	"arksim/internal/sim/clock"
)

// Idle bridges trip completion/driver availability back into Demand's
// queue and, when the circulating idle policy asks for it, keeps unmatched
// drivers moving between sampled demand points. Grounded on
// app/controllers/idle.py IdleHandler.
type Idle struct {
	world  *domain.WorldState
	demand *Demand
	travel oracle.TravelTime
	clock  clock.SimClock
	pol    policy.IdlePolicy

	// od and g pick reposition targets; g is a dedicated registry stream so
	// circulation draws never perturb demand seeding. Both nil disables
	// repositioning regardless of the policy.
	od mechanics.ODSampler
	g  *rand.Rand
}

func NewIdle(world *domain.WorldState, demand *Demand, travel oracle.TravelTime, c clock.SimClock, pol policy.IdlePolicy, od mechanics.ODSampler, g *rand.Rand) *Idle {
	return &Idle{world: world, demand: demand, travel: travel, clock: c, pol: pol, od: od, g: g}
}

// OnTripCompleted and OnDriverAvailable both retry the queue first: a
// freshly idle driver may immediately satisfy the oldest waiting rider.
// Only when no match happens does the circulating policy send the driver
// off toward a freshly sampled demand point; the reposition arrival
// announces DriverAvailable again, so an unmatched driver keeps
// circulating until demand shows up.
func (h *Idle) OnTripCompleted(ev event.Event) []event.Event {
	return h.onFreed(ev.T, ev.DriverID)
}

func (h *Idle) OnDriverAvailable(ev event.Event) []event.Event {
	return h.onFreed(ev.T, ev.DriverID)
}

func (h *Idle) onFreed(now float64, driverID int64) []event.Event {
	if out := h.demand.TryMatchFromQueue(now); len(out) > 0 {
		return out
	}
	if h.pol.ContinualReposition && h.od != nil && h.world.IsIdle(driverID) {
		return h.MaybeReposition(now, driverID, h.od.SampleOrigin(h.g))
	}
	return nil
}

// MaybeReposition preempts any in-flight task for driver_id (bumping
// task_id, invalidating whatever stale DriverLegArrive/timeout is still in
// the heap for it), then builds a plan to target, delayed by the policy's
// pre-reposition dwell. A zero-or-negative duration plan (target == current
// location) leaves the driver idle instead of scheduling a no-op leg.
func (h *Idle) MaybeReposition(now float64, driverID int64, target event.Point) []event.Event {
	d := h.world.Drivers[driverID]
	if d == nil {
		return nil
	}
	d.TaskID++
	h.world.RemoveIdle(d.ID)

	startT := now + h.pol.DwellS
	dow, hour := h.clock.DowHourAt(startT)
	plan := h.travel.MovePlan(d.Loc, target, startT, int(dow), hour, event.LegReposition)
	if plan.EndT-startT <= 0 {
		h.world.ReturnIdle(d)
		return nil
	}

	d.State = domain.DriverToReposition
	d.CurrentMove = &plan
	return []event.Event{{T: plan.EndT, Tag: event.DriverLegArrive, DriverID: d.ID, Kind: event.LegReposition, TaskID: d.TaskID}}
}
