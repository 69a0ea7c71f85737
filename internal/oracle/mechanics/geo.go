// Package mechanics implements the idealized/edge-aware trip-mechanics
// model the core's Mechanics oracle is built from: an OD sampler, a route
// planner, a speed sampler, and a piecewise-constant-speed traverser.
// Grounded on the prototype's domain/mechanics/* modules.
package mechanics

import "arksim/internal/event"

// Segment is one straight-line piece of a Path, carrying an optional
// network edge id for edge-aware speed lookups.
type Segment struct {
	Start, End event.Point
	LengthM    float64
	EdgeID     int
	HasEdgeID  bool
}

// Path is an ordered sequence of segments a route planner produces between
// two points, plus its total length. Grounded on
// domain/entities/geography.Path.
type Path struct {
	Segments     []Segment
	TotalLengthM float64
}
