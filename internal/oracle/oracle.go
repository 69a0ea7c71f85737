// Package oracle implements the travel-time contract the Trip and Idle
// handlers consult to turn a driver/trip pair into a MotionPlan, plus the
// concrete implementations the corpus's mechanics model is built from.
// Grounded on the prototype's policy/travel_time.py FixedSpeedModel and
// services/travel_time.py MechanicsTravelTime.
package oracle

import (
	"arksim/internal/domain"
	"arksim/internal/event"
)

// TravelTime is the contract the core's handlers depend on. It never
// performs I/O: every implementation is pure and deterministic given its
// inputs (and, for Mechanics, its RNG substream).
type TravelTime interface {
	DurationToPickup(d *domain.Driver, trip *domain.TripState, now float64) float64
	DurationToDropoff(d *domain.Driver, trip *domain.TripState, now float64) float64
	DurationReposition(d *domain.Driver, now float64) float64

	// MovePlan computes the full leg from a to b starting at t0, given the
	// day-of-week/hour in effect (for time-of-day-aware speed samplers) and
	// which kind of leg this is (Fixed uses kind to pick the right constant;
	// Mechanics ignores it, since its route/speed composition is the same
	// regardless of purpose). Trip and Idle build every driver leg — pickup,
	// dropoff, and reposition — through this one call, matching §4.4's
	// "compute motion plan ... using the travel-time oracle and current
	// (day-of-week, hour)" uniformly across leg kinds.
	MovePlan(a, b event.Point, t0 float64, dow, hour int, kind event.LegKind) domain.MotionPlan
}
