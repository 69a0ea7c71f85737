// Package build assembles a runnable core — kernel, world, handler
// quartet, and supporting services — from a parsed scenario document.
// Grounded on the prototype's app/build.py build()/app/wiring.py wire(),
// re-expressed as a single constructor instead of a two-phase
// build-then-wire split, since Go's explicit Subscribe calls don't need
// the separate wiring module Python uses to avoid circular imports.
package build

import (
	"fmt"
	"math/rand/v2"

	"arksim/internal/domain"
	"arksim/internal/event"
	"arksim/internal/handlers"
	"arksim/internal/oracle"
	"arksim/internal/oracle/mechanics"
	"arksim/internal/policy"
	"arksim/internal/sim/clock"
	"arksim/internal/sim/kernel"
	"arksim/internal/sim/rng"
	"arksim/internal/simconfig"
)

// Core bundles everything a caller needs to seed and run a scenario, plus
// the handler instances themselves (a caller that wants to drive
// maybe_reposition directly, or inspect the queue in a test, reaches
// through Idle/Demand).
type Core struct {
	Kernel *kernel.Kernel
	World  *domain.WorldState
	Clock  clock.SimClock
	RNG    *rng.Registry

	Demand       *handlers.Demand
	Trip         *handlers.Trip
	Idle         *handlers.Idle
	Fleet        *handlers.Fleet
	Housekeeping *handlers.Housekeeping

	Travel  oracle.TravelTime
	Pricing policy.PricingPolicy

	// OD draws rider origin/destination pairs for demand seeding. It is
	// independent of Travel's kind: even a "fixed" travel-time scenario
	// needs real-looking pickup/dropoff points to place in a
	// RiderRequestPlaced event.
	OD mechanics.ODSampler
}

// From builds a Core from a parsed scenario, wiring every handler
// subscription in the same order the prototype's wiring.py does, and
// seeding the kernel with the scenario's opening EndOfDay tick (day 0)
// from app/build.py's initial seed.
func From(s *simconfig.Scenario, hooks kernel.Hooks) (*Core, error) {
	c := &Core{}
	c.World = domain.NewWorldState(s.World.Capacity)
	c.Clock = clock.NewUTCEpoch(s.Sim.Epoch[0], s.Sim.Epoch[1], s.Sim.Epoch[2], s.Sim.Epoch[3], s.Sim.Epoch[4], s.Sim.Epoch[5])
	c.RNG = rng.New(s.Sim.Seed, s.Name, s.Sim.Worker)

	travel, err := buildTravelTime(s, c.Clock, c.RNG)
	if err != nil {
		return nil, err
	}
	c.Travel = travel

	dwell, err := buildDwell(s, c.RNG)
	if err != nil {
		return nil, err
	}

	pricing, err := buildPricing(s)
	if err != nil {
		return nil, err
	}
	c.Pricing = pricing

	od, err := buildODSampler(s.Mechanics.ODSampler)
	if err != nil {
		return nil, err
	}
	c.OD = od

	c.Kernel = kernel.New(hooks)

	matcher, err := buildMatching(s)
	if err != nil {
		return nil, err
	}
	idlePol := policy.NewCirculatingIdlePolicy(s.Idle.DwellS, s.Idle.ContinualReposition)

	c.Demand = handlers.NewDemand(c.World, matcher)
	c.Trip = handlers.NewTrip(c.World, c.Travel, c.Clock, dwell, pricing, s.Sim.MaxDriverWaitS)
	c.Idle = handlers.NewIdle(c.World, c.Demand, c.Travel, c.Clock, idlePol, c.OD, c.RNG.Stream("reposition"))
	c.Fleet = handlers.NewFleet(c.World)
	c.Housekeeping = handlers.NewHousekeeping(c.World)

	subscribe(c)

	if err := c.Kernel.Schedule(event.Event{T: 0, Tag: event.EndOfDay, DayIndex: 0}); err != nil {
		return nil, fmt.Errorf("build: seed initial EndOfDay: %w", err)
	}

	return c, nil
}

// subscribe registers every handler in the order app/wiring.py's wire()
// does: cancellation paths first (so a canonical cancel's subscribers are
// registered before anything that might race it), then demand, fleet,
// trips, idle-on-completion, and housekeeping last.
func subscribe(c *Core) {
	k := c.Kernel

	k.Subscribe(event.PickupDeadline, c.Trip.OnPickupDeadline)
	k.Subscribe(event.DriverWaitTimeout, c.Trip.OnDriverWaitTimeout)

	k.Subscribe(event.RiderCancel, c.Trip.OnRiderCancel)
	k.Subscribe(event.RiderCancel, c.Demand.OnRiderCancel)

	k.Subscribe(event.DriverCancel, c.Trip.OnDriverCancel)
	k.Subscribe(event.RiderRequeue, c.Demand.OnRiderRequeue)

	k.Subscribe(event.DriverAvailable, c.Idle.OnDriverAvailable)

	k.Subscribe(event.RiderRequestPlaced, c.Demand.OnRiderRequestPlaced)
	k.Subscribe(event.RiderTimeout, c.Demand.OnRiderTimeout)

	k.Subscribe(event.DriverStartShift, c.Fleet.OnDriverStartShift)

	k.Subscribe(event.TripAssigned, c.Trip.OnTripAssigned)
	k.Subscribe(event.DriverLegArrive, c.Trip.OnDriverLegArrive)
	k.Subscribe(event.RiderArrivePickup, c.Trip.OnRiderArrivePickup)

	k.Subscribe(event.BoardingStarted, c.Trip.OnBoardingStarted)
	k.Subscribe(event.BoardingComplete, c.Trip.OnBoardingComplete)
	k.Subscribe(event.AlightingStarted, c.Trip.OnAlightingStarted)
	k.Subscribe(event.AlightingComplete, c.Trip.OnAlightingComplete)

	k.Subscribe(event.TripCompleted, c.Idle.OnTripCompleted)

	k.Subscribe(event.EndOfDay, c.Housekeeping.OnEndOfDay)
}

func buildTravelTime(s *simconfig.Scenario, c clock.SimClock, r *rng.Registry) (oracle.TravelTime, error) {
	switch s.TravelTime.Kind {
	case "fixed":
		f := s.TravelTime.Fixed
		return oracle.NewFixed(f.PickupS, f.DropoffS, f.RepositionS), nil
	case "mechanics":
		router, err := buildRoutePlanner(s.Mechanics.RoutePlanner)
		if err != nil {
			return nil, err
		}
		speed, err := buildSpeedSampler(s.Mechanics.SpeedSampler, r.Substream("mechanics_speed", s.Mechanics.Seed))
		if err != nil {
			return nil, err
		}
		trav, err := buildTraverser(s.Mechanics.PathTraverser)
		if err != nil {
			return nil, err
		}
		return oracle.NewMechanics(router, speed, trav, c), nil
	default:
		return nil, fmt.Errorf("build: unknown travel_time.kind %q", s.TravelTime.Kind)
	}
}

func buildSpeedSampler(cfg simconfig.SpeedSamplerConfig, g *rand.Rand) (mechanics.SpeedSampler, error) {
	switch cfg.Kind {
	case "global":
		return mechanics.Global{VMPS: cfg.Global.VMPS}, nil
	case "constant":
		return mechanics.Constant{PickupMPS: cfg.Constant.PickupMPS, DropoffMPS: cfg.Constant.DropoffMPS}, nil
	case "distribution":
		d := cfg.Distribution
		dd := mechanics.DistDraw{RNG: g, Dist: d.Dist, FallbackMPS: d.FallbackMPS}
		dd.Mu = d.Params["mu"]
		dd.Sigma = d.Params["sigma"]
		dd.K = int(d.Params["k"])
		dd.Theta = d.Params["theta"]
		return dd, nil
	case "edge_aware":
		e := cfg.EdgeAware
		return mechanics.EdgeAware{BaseMPS: e.BaseMPS, TODFac: e.TFac, EdgeFac: e.EFac}, nil
	default:
		return nil, fmt.Errorf("build: unknown speed_sampler.kind %q", cfg.Kind)
	}
}

func buildODSampler(cfg simconfig.ODSamplerConfig) (mechanics.ODSampler, error) {
	switch cfg.Kind {
	case "idealized":
		zones := make([]mechanics.Zone, len(cfg.Idealized.Zones))
		for i, z := range cfg.Idealized.Zones {
			zones[i] = mechanics.Zone{X0: z[0], Y0: z[1], X1: z[2], Y1: z[3]}
		}
		return mechanics.NewIdealized(zones, cfg.Idealized.Weights), nil
	default:
		return nil, fmt.Errorf("build: unsupported od_sampler.kind %q", cfg.Kind)
	}
}

func buildRoutePlanner(cfg simconfig.RoutePlannerConfig) (mechanics.RoutePlanner, error) {
	switch cfg.Kind {
	case "euclidean":
		return mechanics.Euclidean{}, nil
	case "manhattan":
		return mechanics.Manhattan{}, nil
	default:
		return nil, fmt.Errorf("build: unsupported route_planner.kind %q", cfg.Kind)
	}
}

func buildTraverser(cfg simconfig.PathTraverserConfig) (mechanics.Traverser, error) {
	switch cfg.Kind {
	case "piecewise_const":
		return mechanics.PiecewiseConst{}, nil
	default:
		return nil, fmt.Errorf("build: unsupported path_traverser.kind %q", cfg.Kind)
	}
}

func buildDwell(s *simconfig.Scenario, r *rng.Registry) (policy.DwellPolicy, error) {
	switch s.Dwell.Kind {
	case "exponential_board_alight":
		return policy.NewExpBoardAlight(r, s.Dwell.BoardMeanS, s.Dwell.AlightMeanS), nil
	case "zero":
		return policy.ZeroDwell{}, nil
	default:
		return nil, fmt.Errorf("build: unknown dwell.kind %q", s.Dwell.Kind)
	}
}

func buildMatching(s *simconfig.Scenario) (policy.MatchingPolicy, error) {
	switch s.Matching.Kind {
	case "nearest_assign":
		return policy.NearestAssign{}, nil
	default:
		return nil, fmt.Errorf("build: unknown matching.kind %q", s.Matching.Kind)
	}
}

func buildPricing(s *simconfig.Scenario) (policy.PricingPolicy, error) {
	switch s.Pricing.Kind {
	case "constant":
		return policy.NewConstantPricing(int64(s.Pricing.Fare)), nil
	case "metered":
		return policy.NewMeteredPricing(), nil
	default:
		return nil, fmt.Errorf("build: unknown pricing.kind %q", s.Pricing.Kind)
	}
}
