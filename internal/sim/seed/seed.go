// Package seed builds the initial event batch a caller schedules before
// kernel.Run: rider arrivals over [0, horizon) and driver shifts at t=0.
// The core itself never generates demand or supply (see SPEC_FULL.md §6,
// "callers obtain a built core and feed it an initial event batch") — this
// package is the one caller every entrypoint (CLI, HTTP) shares so the two
// surfaces can't drift on how a scenario's demand is interpreted.
package seed

import (
	"math"
	"math/rand/v2"

	"arksim/internal/event"
	"arksim/internal/sim/build"
	"arksim/internal/simconfig"
)

// Batch generates a deterministic rider-arrival/driver-shift event list for
// one horizon, drawing from the core's RNG registry ("arrivals" and
// "driver_spawn" substreams) and OD sampler so two runs built from the same
// scenario produce byte-identical seeding.
func Batch(c *build.Core, w simconfig.WorldConfig, horizonS float64) []event.Event {
	var out []event.Event

	spawn := c.RNG.Stream("driver_spawn")
	for i := 0; i < w.Capacity; i++ {
		loc := c.OD.SampleOrigin(spawn)
		out = append(out, event.Event{
			T:        0,
			Tag:      event.DriverStartShift,
			DriverID: int64(i + 1),
			Loc:      loc,
		})
	}

	out = append(out, arrivals(c, w, horizonS)...)
	return out
}

// arrivals draws a Poisson process of rider requests over [0, horizon) from
// the "arrivals" substream, independent of driver_spawn's draws, matching
// the RNG registry's guarantee that sibling streams never perturb each
// other regardless of draw order.
func arrivals(c *build.Core, w simconfig.WorldConfig, horizonS float64) []event.Event {
	g := c.RNG.Stream("arrivals")
	if w.ArrivalRatePerS <= 0 {
		return nil
	}

	var out []event.Event
	t := 0.0
	riderID := int64(1)
	for {
		t += interarrival(g, w.ArrivalRatePerS)
		if t >= horizonS {
			break
		}
		origin := c.OD.SampleOrigin(g)
		dest := c.OD.SampleDestination(g)
		out = append(out, event.Event{
			T:       t,
			Tag:     event.RiderRequestPlaced,
			RiderID: riderID,
			Pickup:  origin,
			Dropoff: dest,
			MaxWait: w.DefaultMaxWaitS,
		})
		riderID++
	}
	return out
}

func interarrival(g *rand.Rand, ratePerS float64) float64 {
	u := g.Float64()
	if u <= 0 {
		u = 1e-12
	}
	return -math.Log(u) / ratePerS
}
