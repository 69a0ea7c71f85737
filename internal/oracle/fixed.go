package oracle

import (
	"arksim/internal/domain"
	"arksim/internal/event"
)

// Fixed returns constant durations regardless of distance or time of day.
// Grounded on policy/travel_time.py FixedSpeedModel / config/models.py
// TravelTimeServiceFixedModel; this is the oracle every concrete scenario
// in SPEC_FULL.md §8 is built against.
type Fixed struct {
	PickupS     float64
	DropoffS    float64
	RepositionS float64
}

func NewFixed(pickupS, dropoffS, repositionS float64) Fixed {
	return Fixed{PickupS: pickupS, DropoffS: dropoffS, RepositionS: repositionS}
}

func (f Fixed) DurationToPickup(*domain.Driver, *domain.TripState, float64) float64 {
	return f.PickupS
}

func (f Fixed) DurationToDropoff(*domain.Driver, *domain.TripState, float64) float64 {
	return f.DropoffS
}

func (f Fixed) DurationReposition(*domain.Driver, float64) float64 {
	return f.RepositionS
}

func (f Fixed) durationFor(kind event.LegKind) float64 {
	switch kind {
	case event.LegPickup:
		return f.PickupS
	case event.LegDropoff:
		return f.DropoffS
	default:
		return f.RepositionS
	}
}

// MovePlan builds a straight interpolation from a to b, taking however long
// the constant for kind says it takes — time of day and route shape never
// factor in, matching FixedSpeedModel's whole premise.
func (f Fixed) MovePlan(a, b event.Point, t0 float64, _, _ int, kind event.LegKind) domain.MotionPlan {
	dur := f.durationFor(kind)
	return domain.MotionPlan{Start: a, End: b, StartT: t0, EndT: t0 + dur}
}
