package mechanics

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// SpeedSampler returns a speed in meters/second for a segment being
// traversed at simulation time t. Grounded on
// domain/mechanics/mechanics_speed_samplers.py.
type SpeedSampler interface {
	SpeedMPS(t float64, edgeID int, hasEdgeID bool, dow, hour int) float64
}

const minSpeedMPS = 0.1

// Global returns one constant speed regardless of leg, time, or edge.
// Grounded on mechanics_speed_samplers.py GlobalSpeedSampler.
type Global struct {
	VMPS float64
}

func (g Global) SpeedMPS(float64, int, bool, int, int) float64 {
	return g.VMPS
}

// Constant mirrors the prototype's ConstantSpeedSampler, which keeps
// separate pickup/dropoff speeds in config for operator-facing clarity even
// though the core's traverser has no leg-kind signal to pick between them
// (MovePlan collapses pickup/dropoff/reposition through the same Route+
// Traverse chain — see Mechanics.MovePlan). SpeedMPS averages the two so a
// scenario author's pickup/dropoff split still shows up in the resulting
// travel times rather than being silently dropped.
type Constant struct {
	PickupMPS  float64
	DropoffMPS float64
}

func (c Constant) SpeedMPS(float64, int, bool, int, int) float64 {
	return (c.PickupMPS + c.DropoffMPS) / 2
}

// DistDraw draws a fresh speed from a distribution every call, seeded from
// an RNG substream so draws stay reproducible across runs. Grounded on
// mechanics_speed_samplers.py DistDrawSpeedSampler (lognormal as exp of a
// normal draw; gamma as the sum of k exponential draws scaled by theta,
// matching the prototype's fallback-to-sum-of-exponentials implementation
// for integer shape k).
type DistDraw struct {
	RNG        *rand.Rand
	Dist       string // "lognormal" | "gamma"
	Mu, Sigma  float64
	K          int
	Theta      float64
	FallbackMPS float64
}

func (d DistDraw) SpeedMPS(float64, int, bool, int, int) float64 {
	switch d.Dist {
	case "lognormal":
		mu, sigma := d.Mu, d.Sigma
		if sigma == 0 {
			sigma = 0.25
		}
		if mu == 0 {
			mu = 2.0
		}
		v := math.Exp(mu + sigma*d.RNG.NormFloat64())
		return max(v, minSpeedMPS)
	case "gamma":
		k := d.K
		if k < 1 {
			k = 9
		}
		theta := d.Theta
		if theta == 0 {
			theta = 1.0
		}
		s := 0.0
		for i := 0; i < k; i++ {
			s += -math.Log(1.0 - d.RNG.Float64())
		}
		return max(s*theta, minSpeedMPS)
	default:
		return d.FallbackMPS
	}
}

// EdgeAware applies a day-of-week/hour multiplier and a per-edge multiplier
// on top of a base speed. Grounded on mechanics_speed_samplers.py
// EdgeAwareSpeedSampler; this is the sampler a `Live`-calibrated scenario
// populates from real travel-time samples (see oracle/calibrate.go).
type EdgeAware struct {
	BaseMPS  float64
	TODFac   map[string]float64 // "dow:hour" -> factor
	EdgeFac  map[int]float64    // edge id -> factor
}

func (e EdgeAware) SpeedMPS(_ float64, edgeID int, hasEdgeID bool, dow, hour int) float64 {
	v := e.BaseMPS
	if f, ok := e.TODFac[todKey(dow, hour)]; ok {
		v *= f
	}
	if hasEdgeID {
		if f, ok := e.EdgeFac[edgeID]; ok {
			v *= f
		}
	}
	return max(v, minSpeedMPS)
}

func todKey(dow, hour int) string {
	return fmt.Sprintf("%d:%d", dow, hour)
}
