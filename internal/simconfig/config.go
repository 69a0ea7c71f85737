// Package simconfig parses the YAML scenario document that selects every
// pluggable collaborator the core consults (travel-time oracle, mechanics
// composition, matching/idle/dwell/pricing policies) and the run-level
// knobs (epoch, seed, horizon, capacity, logging). Grounded on the
// prototype's config/models.py pydantic tree; discriminated unions are
// decoded by hand since yaml.v3 has no pydantic-style tagged-union
// support, matching the "kind" Literal discriminator the prototype uses.
package simconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Scenario is the root document, mirroring config/models.py's ScenarioModel.
type Scenario struct {
	Name  string `yaml:"name"`
	RunID string `yaml:"run_id"`

	Sim  SimConfig  `yaml:"sim"`
	Log  LogConfig  `yaml:"log"`
	World WorldConfig `yaml:"world"`

	TravelTime TravelTimeConfig `yaml:"travel_time"`
	Mechanics  MechanicsConfig  `yaml:"mechanics"`

	Idle     IdlePolicyConfig     `yaml:"idle"`
	Matching MatchingPolicyConfig `yaml:"matching"`
	Dwell    DwellPolicyConfig    `yaml:"dwell"`
	Pricing  PricingPolicyConfig  `yaml:"pricing"`
}

// SimConfig anchors the run's epoch, seed, and horizon, plus the two
// process-identity knobs the RNG registry's key tuple needs (scenario name
// lives on Scenario.Name; worker is this field).
type SimConfig struct {
	Epoch          [6]int  `yaml:"epoch"` // year, month, day, hour, minute, second
	Seed           int64   `yaml:"seed"`
	Worker         int     `yaml:"worker"`
	Duration       int     `yaml:"duration"` // seconds
	MaxDriverWaitS float64 `yaml:"max_driver_wait_s"`
}

func (s *SimConfig) setDefaults() {
	if s.MaxDriverWaitS <= 0 {
		s.MaxDriverWaitS = 300
	}
}

// LogConfig selects the ambient log verbosity and dispatch sampling rate.
type LogConfig struct {
	Level       string `yaml:"level"`
	Debug       bool   `yaml:"debug"`
	SampleEvery int    `yaml:"sample_every"`
}

func (l *LogConfig) setDefaults() {
	if l.Level == "" {
		l.Level = "INFO"
	}
	if l.SampleEvery <= 0 {
		l.SampleEvery = 1
	}
}

// WorldConfig sizes the fleet, carries opaque geo metadata (bounding box,
// projection name, …) consumed by whichever mechanics components a
// scenario selects, and the demand-seeding knobs a CLI/HTTP entrypoint
// uses to build the initial rider-arrival/driver-shift event batch (the
// core itself never generates demand — see SPEC_FULL.md §6 seeding).
type WorldConfig struct {
	Capacity         int            `yaml:"capacity"`
	Geo              map[string]any `yaml:"geo"`
	ArrivalRatePerS  float64        `yaml:"arrival_rate_per_s"`
	DefaultMaxWaitS  float64        `yaml:"default_max_wait_s"`
}

func (w *WorldConfig) setDefaults() {
	if w.Capacity <= 0 {
		w.Capacity = 4
	}
	if w.ArrivalRatePerS <= 0 {
		w.ArrivalRatePerS = 0.05
	}
	if w.DefaultMaxWaitS <= 0 {
		w.DefaultMaxWaitS = 300
	}
}

// Load parses and defaults a scenario document from raw YAML bytes.
func Load(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("simconfig: parse scenario: %w", err)
	}
	s.Sim.setDefaults()
	s.Log.setDefaults()
	s.World.setDefaults()
	s.setUnionDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setUnionDefaults fills in every discriminated union whose YAML section
// was omitted entirely (UnmarshalYAML only runs on present keys), matching
// the defaults each union's own decoder applies to an empty kind.
func (s *Scenario) setUnionDefaults() {
	if s.TravelTime.Kind == "" {
		s.TravelTime.Kind = "fixed"
		s.TravelTime.Fixed = &FixedTravelTimeConfig{PickupS: 10, DropoffS: 20, RepositionS: 30}
	}
	if s.Mechanics.ODSampler.Kind == "" {
		s.Mechanics.ODSampler.Kind = "idealized"
		s.Mechanics.ODSampler.Idealized = &IdealizedODConfig{Zones: [][4]float64{{0, 0, 10000, 10000}}}
	}
	if s.Mechanics.SpeedSampler.Kind == "" {
		s.Mechanics.SpeedSampler.Kind = "global"
		s.Mechanics.SpeedSampler.Global = &GlobalSpeedConfig{VMPS: 8.94}
	}
	if s.Mechanics.RoutePlanner.Kind == "" {
		s.Mechanics.RoutePlanner.Kind = "manhattan"
	}
	if s.Mechanics.PathTraverser.Kind == "" {
		s.Mechanics.PathTraverser.Kind = "piecewise_const"
	}
	if s.Dwell.Kind == "" {
		s.Dwell.Kind = "exponential_board_alight"
		s.Dwell.BoardMeanS = 7.0
		s.Dwell.AlightMeanS = 5.0
	}
	if s.Idle.Kind == "" {
		s.Idle.Kind = "circulating"
	}
	if s.Matching.Kind == "" {
		s.Matching.Kind = "nearest_assign"
	}
	if s.Pricing.Kind == "" {
		s.Pricing.Kind = "constant"
	}
}

// Validate checks the cross-field invariants models.py enforces with
// pydantic validators (nonnegative fixed durations, zone/weight length
// agreement, a duration > 0 run).
func (s *Scenario) Validate() error {
	if s.Sim.Duration <= 0 {
		return fmt.Errorf("simconfig: sim.duration must be > 0")
	}
	if s.TravelTime.Fixed != nil {
		f := s.TravelTime.Fixed
		if f.PickupS < 0 || f.DropoffS < 0 || f.RepositionS < 0 {
			return fmt.Errorf("simconfig: travel_time.fixed durations must be >= 0")
		}
	}
	if s.Mechanics.ODSampler.Idealized != nil {
		od := s.Mechanics.ODSampler.Idealized
		if od.Weights != nil && len(od.Weights) != len(od.Zones) {
			return fmt.Errorf("simconfig: mechanics.od_sampler.weights must have length %d, got %d", len(od.Zones), len(od.Weights))
		}
	}
	return nil
}
