package mechanics

import (
	"math"

	"arksim/internal/event"
)

// RoutePlanner turns an origin/destination pair into a Path. Grounded on
// domain/mechanics/mechanics_routers.py EuclidRouter/ManhattanRouter; the
// network router is not implemented (it needs a prebuilt graph asset this
// repo does not ship — see DESIGN.md).
type RoutePlanner interface {
	Route(a, b event.Point) Path
	DistanceM(a, b event.Point) float64
}

// Euclidean routes as a single straight-line segment.
type Euclidean struct{}

func (Euclidean) DistanceM(a, b event.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func (e Euclidean) Route(a, b event.Point) Path {
	l := e.DistanceM(a, b)
	return Path{Segments: []Segment{{Start: a, End: b, LengthM: l}}, TotalLengthM: l}
}

// Manhattan routes as two axis-aligned segments (horizontal then vertical),
// grounded on mechanics_routers.py ManhattanRouter.
type Manhattan struct{}

func (Manhattan) DistanceM(a, b event.Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}

func (m Manhattan) Route(a, b event.Point) Path {
	corner := event.Point{X: b.X, Y: a.Y}
	dx := math.Abs(b.X - a.X)
	dy := math.Abs(b.Y - a.Y)
	return Path{
		Segments: []Segment{
			{Start: a, End: corner, LengthM: dx},
			{Start: corner, End: b, LengthM: dy},
		},
		TotalLengthM: dx + dy,
	}
}
