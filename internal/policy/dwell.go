// Package policy holds the pluggable collaborators the core consults but
// does not own the implementation of: matching, idle behavior, dwell
// timing, and pricing. Grounded on the prototype's policy/*.py modules.
package policy

import "arksim/internal/sim/rng"

// DwellPolicy supplies boarding/alighting delays for a given rider/driver
// pair, so the Trip handler can schedule BoardingComplete/AlightingComplete
// without itself drawing randomness.
type DwellPolicy interface {
	BoardingDelay(riderID, driverID int64) float64
	AlightingDelay(riderID, driverID int64) float64
}

// ExpBoardAlight draws boarding/alighting dwell times from independent
// exponential distributions, one substream per (rider, driver) pair so
// dwell draws are reproducible regardless of dispatch order. Grounded on
// policy/dwell.py ExpBoardingAlightingPolicy.
type ExpBoardAlight struct {
	RNG          *rng.Registry
	BoardMeanS   float64
	AlightMeanS  float64
}

func NewExpBoardAlight(r *rng.Registry, boardMeanS, alightMeanS float64) *ExpBoardAlight {
	return &ExpBoardAlight{RNG: r, BoardMeanS: boardMeanS, AlightMeanS: alightMeanS}
}

func (p *ExpBoardAlight) BoardingDelay(riderID, driverID int64) float64 {
	g := p.RNG.Substream("boarding", riderID, driverID)
	return clip(g.ExpFloat64()*p.BoardMeanS, 1.0, 60.0)
}

func (p *ExpBoardAlight) AlightingDelay(riderID, driverID int64) float64 {
	g := p.RNG.Substream("alighting", riderID, driverID)
	return clip(g.ExpFloat64()*p.AlightMeanS, 1.0, 60.0)
}

// ZeroDwell is a test double with no boarding/alighting delay, grounded on
// the prototype's own ZeroDwell test helper (tests/app/test_cancels_and_timeouts.py).
type ZeroDwell struct{}

func (ZeroDwell) BoardingDelay(int64, int64) float64  { return 0 }
func (ZeroDwell) AlightingDelay(int64, int64) float64 { return 0 }

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
