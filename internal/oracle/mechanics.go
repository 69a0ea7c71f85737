package oracle

import (
	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/oracle/mechanics"
	"arksim/internal/sim/clock"
)

// Mechanics composes a route planner, a speed sampler, and a path
// traverser into the TravelTime contract, deriving every duration from
// an actual route rather than a fixed constant. Grounded on the
// prototype's domain/mechanics/mechanics_core.py Mechanics façade
// (`eta`/`move_plan`).
type Mechanics struct {
	Router    mechanics.RoutePlanner
	Speed     mechanics.SpeedSampler
	Traverser mechanics.Traverser
	Clock     clock.SimClock
}

func NewMechanics(router mechanics.RoutePlanner, speed mechanics.SpeedSampler, traverser mechanics.Traverser, c clock.SimClock) Mechanics {
	return Mechanics{Router: router, Speed: speed, Traverser: traverser, Clock: c}
}

func (m Mechanics) buildPlan(a, b event.Point, t0 float64) domain.MovePlan {
	dow, hour := m.Clock.DowHourAt(t0)
	path := m.Router.Route(a, b)
	return m.Traverser.Plan(path, t0, m.Speed, int(dow), hour)
}

// DurationToPickup/DurationToDropoff give a scalar ETA for callers that
// only need a number (e.g. a matching policy scoring candidate drivers),
// without committing to a plan. Grounded on services/travel_time.py
// MechanicsTravelTime._duration, re-expressed on top of the same
// route+traverser composition MovePlan uses rather than a flat
// distance/speed division, so the scalar and the plan never disagree.
func (m Mechanics) DurationToPickup(d *domain.Driver, trip *domain.TripState, now float64) float64 {
	return m.buildPlan(d.Loc, trip.Origin, now).EndT - now
}

func (m Mechanics) DurationToDropoff(d *domain.Driver, trip *domain.TripState, now float64) float64 {
	return m.buildPlan(trip.Origin, trip.Dest, now).EndT - now
}

// DurationReposition has no target to route to at this call site (the Idle
// handler only learns the target inside maybe_reposition, which calls
// MovePlan directly instead); mirrors services/travel_time.py
// MechanicsTravelTime.duration_reposition's documented stub ("if you have a
// plan/target, compute to that; else 0").
func (m Mechanics) DurationReposition(*domain.Driver, float64) float64 {
	return 0
}

// MovePlan routes a to b through the composed router/speed/traverser chain
// and collapses the result to a single-leg MotionPlan. The leg kind is
// irrelevant here — Mechanics prices every leg the same way regardless of
// its business purpose, unlike Fixed.
func (m Mechanics) MovePlan(a, b event.Point, t0 float64, _, _ int, _ event.LegKind) domain.MotionPlan {
	return m.buildPlan(a, b, t0).AsMotionPlan()
}
