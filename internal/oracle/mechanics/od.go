package mechanics

import (
	"math/rand/v2"

	"arksim/internal/event"
)

// ODSampler draws origin/destination points for demand seeding. Grounded on
// domain/mechanics/mechanics_od_samplers.py OriginDestinationSampler
// implementations; only the idealized (zone-rectangle) sampler is
// implemented, matching config/models.py's default and the only kind any
// scenario in SPEC_FULL.md §8 selects (empirical/network need a shapefile
// or prebuilt graph asset this repo does not ship — see DESIGN.md).
type ODSampler interface {
	SampleOrigin(g *rand.Rand) event.Point
	SampleDestination(g *rand.Rand) event.Point
}

// Zone is an axis-aligned rectangle [X0,Y0]–[X1,Y1] in projected meters.
type Zone struct {
	X0, Y0, X1, Y1 float64
}

// Idealized samples uniformly within a weighted choice of rectangular
// zones. Grounded on mechanics_od_samplers.py IdealizedODSampler.
type Idealized struct {
	Zones   []Zone
	Weights []float64 // nil means uniform over zones
}

func NewIdealized(zones []Zone, weights []float64) Idealized {
	return Idealized{Zones: zones, Weights: weights}
}

func (s Idealized) pick(g *rand.Rand) Zone {
	if len(s.Zones) == 1 {
		return s.Zones[0]
	}
	if len(s.Weights) == 0 {
		return s.Zones[g.IntN(len(s.Zones))]
	}
	total := 0.0
	for _, w := range s.Weights {
		total += w
	}
	r := g.Float64() * total
	acc := 0.0
	for i, w := range s.Weights {
		acc += w
		if r < acc {
			return s.Zones[i]
		}
	}
	return s.Zones[len(s.Zones)-1]
}

func (s Idealized) uniform(g *rand.Rand, z Zone) event.Point {
	return event.Point{
		X: z.X0 + g.Float64()*(z.X1-z.X0),
		Y: z.Y0 + g.Float64()*(z.Y1-z.Y0),
	}
}

func (s Idealized) SampleOrigin(g *rand.Rand) event.Point      { return s.uniform(g, s.pick(g)) }
func (s Idealized) SampleDestination(g *rand.Rand) event.Point { return s.uniform(g, s.pick(g)) }
