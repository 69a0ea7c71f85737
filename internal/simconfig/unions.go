package simconfig

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// kindPeek is decoded first from any discriminated-union node to learn
// which concrete variant to decode next, mirroring the "kind" Literal
// discriminator field every *Model union in config/models.py uses. yaml.v3
// has no pydantic-style tagged-union support, so each union type below
// implements yaml.Unmarshaler by hand: decode the node twice, once into
// kindPeek and once into whichever concrete struct the kind selects.
type kindPeek struct {
	Kind string `yaml:"kind"`
}

// ---------------------------------------------------------------- travel_time

// TravelTimeConfig selects Fixed or Mechanics, matching TravelTimeUnion.
type TravelTimeConfig struct {
	Kind      string
	Fixed     *FixedTravelTimeConfig
	Mechanics *MechanicsTravelTimeConfig
}

type FixedTravelTimeConfig struct {
	PickupS     float64 `yaml:"pickup_s"`
	DropoffS    float64 `yaml:"dropoff_s"`
	RepositionS float64 `yaml:"reposition_s"`
}

type MechanicsTravelTimeConfig struct {
	MinSpeedMPS float64 `yaml:"min_speed_mps"`
}

func (t *TravelTimeConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "fixed":
		f := FixedTravelTimeConfig{PickupS: 10, DropoffS: 20, RepositionS: 30}
		if err := value.Decode(&f); err != nil {
			return err
		}
		t.Kind = "fixed"
		t.Fixed = &f
	case "mechanics":
		m := MechanicsTravelTimeConfig{MinSpeedMPS: 0.1}
		if err := value.Decode(&m); err != nil {
			return err
		}
		t.Kind = "mechanics"
		t.Mechanics = &m
	default:
		return fmt.Errorf("simconfig: unknown travel_time.kind %q", peek.Kind)
	}
	return nil
}

// ---------------------------------------------------------------- mechanics

// MechanicsConfig composes the OD sampler, speed sampler, route planner,
// and path traverser, matching config/models.py's MechanicsModel.
type MechanicsConfig struct {
	Seed          int64               `yaml:"seed"`
	ODSampler     ODSamplerConfig     `yaml:"od_sampler"`
	SpeedSampler  SpeedSamplerConfig  `yaml:"speed_sampler"`
	RoutePlanner  RoutePlannerConfig  `yaml:"route_planner"`
	PathTraverser PathTraverserConfig `yaml:"path_traverser"`
}

// ODSamplerConfig selects Idealized (the only implemented kind — empirical
// and network OD samplers need a shapefile/graph asset this repo does not
// ship, see DESIGN.md).
type ODSamplerConfig struct {
	Kind      string
	Idealized *IdealizedODConfig
}

type IdealizedODConfig struct {
	Zones   [][4]float64 `yaml:"zones"`
	Weights []float64    `yaml:"weights"`
}

func (o *ODSamplerConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "idealized":
		v := IdealizedODConfig{Zones: [][4]float64{{0, 0, 10000, 10000}}}
		if err := value.Decode(&v); err != nil {
			return err
		}
		o.Kind = "idealized"
		o.Idealized = &v
	case "empirical", "network":
		return fmt.Errorf("simconfig: od_sampler.kind %q has no implementation in this build (see DESIGN.md)", peek.Kind)
	default:
		return fmt.Errorf("simconfig: unknown od_sampler.kind %q", peek.Kind)
	}
	return nil
}

// SpeedSamplerConfig selects Global, Constant, Distribution, or EdgeAware.
type SpeedSamplerConfig struct {
	Kind         string
	Global       *GlobalSpeedConfig
	Constant     *ConstantSpeedConfig
	Distribution *DistributionSpeedConfig
	EdgeAware    *EdgeAwareSpeedConfig
}

type GlobalSpeedConfig struct {
	VMPS float64 `yaml:"v_mps"`
}

type ConstantSpeedConfig struct {
	PickupMPS  float64 `yaml:"pickup_mps"`
	DropoffMPS float64 `yaml:"dropoff_mps"`
}

type DistributionSpeedConfig struct {
	Dist        string             `yaml:"dist"`
	Params      map[string]float64 `yaml:"params"`
	FallbackMPS float64            `yaml:"fallback_mps"`
}

type EdgeAwareSpeedConfig struct {
	BaseMPS float64            `yaml:"base_mps"`
	TFac    map[string]float64 `yaml:"tfac"`
	EFac    map[int]float64    `yaml:"efac"`
}

func (s *SpeedSamplerConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "global":
		v := GlobalSpeedConfig{VMPS: 8.94}
		if err := value.Decode(&v); err != nil {
			return err
		}
		s.Kind = "global"
		s.Global = &v
	case "constant":
		v := ConstantSpeedConfig{PickupMPS: 8.94, DropoffMPS: 8.94}
		if err := value.Decode(&v); err != nil {
			return err
		}
		s.Kind = "constant"
		s.Constant = &v
	case "distribution":
		v := DistributionSpeedConfig{FallbackMPS: 8.94}
		if err := value.Decode(&v); err != nil {
			return err
		}
		s.Kind = "distribution"
		s.Distribution = &v
	case "edge_aware":
		v := EdgeAwareSpeedConfig{BaseMPS: 8.94}
		if err := value.Decode(&v); err != nil {
			return err
		}
		s.Kind = "edge_aware"
		s.EdgeAware = &v
	default:
		return fmt.Errorf("simconfig: unknown speed_sampler.kind %q", peek.Kind)
	}
	return nil
}

// RoutePlannerConfig selects Euclidean or Manhattan (network needs a
// prebuilt graph asset this repo does not ship, see DESIGN.md).
type RoutePlannerConfig struct {
	Kind string
}

func (r *RoutePlannerConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "manhattan":
		r.Kind = "manhattan"
	case "euclidean":
		r.Kind = "euclidean"
	case "network":
		return fmt.Errorf("simconfig: route_planner.kind \"network\" has no implementation in this build (see DESIGN.md)")
	default:
		return fmt.Errorf("simconfig: unknown route_planner.kind %q", peek.Kind)
	}
	return nil
}

// PathTraverserConfig has a single implemented kind, piecewise_const.
type PathTraverserConfig struct {
	Kind string
}

func (p *PathTraverserConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "piecewise_const":
		p.Kind = "piecewise_const"
	default:
		return fmt.Errorf("simconfig: unknown path_traverser.kind %q", peek.Kind)
	}
	return nil
}

// ---------------------------------------------------------------- policies

type DwellPolicyConfig struct {
	Kind        string
	BoardMeanS  float64 `yaml:"board_mean_s"`
	AlightMeanS float64 `yaml:"alight_mean_s"`
}

func (d *DwellPolicyConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "exponential_board_alight":
		type plain struct {
			BoardMeanS  float64 `yaml:"board_mean_s"`
			AlightMeanS float64 `yaml:"alight_mean_s"`
		}
		v := plain{BoardMeanS: 7.0, AlightMeanS: 5.0}
		if err := value.Decode(&v); err != nil {
			return err
		}
		d.Kind = "exponential_board_alight"
		d.BoardMeanS = v.BoardMeanS
		d.AlightMeanS = v.AlightMeanS
	case "zero":
		d.Kind = "zero"
	default:
		return fmt.Errorf("simconfig: unknown dwell.kind %q", peek.Kind)
	}
	return nil
}

type IdlePolicyConfig struct {
	Kind                string
	DwellS              float64 `yaml:"dwell_s"`
	ContinualReposition bool    `yaml:"continual_reposition"`
}

func (i *IdlePolicyConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "circulating":
		type plain struct {
			DwellS              float64 `yaml:"dwell_s"`
			ContinualReposition bool    `yaml:"continual_reposition"`
		}
		var v plain
		if err := value.Decode(&v); err != nil {
			return err
		}
		i.Kind = "circulating"
		i.DwellS = v.DwellS
		i.ContinualReposition = v.ContinualReposition
	default:
		return fmt.Errorf("simconfig: unknown idle.kind %q", peek.Kind)
	}
	return nil
}

type MatchingPolicyConfig struct {
	Kind string
}

func (m *MatchingPolicyConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "nearest_assign":
		m.Kind = "nearest_assign"
	default:
		return fmt.Errorf("simconfig: unknown matching.kind %q", peek.Kind)
	}
	return nil
}

type PricingPolicyConfig struct {
	Kind string
	Fare float64 `yaml:"fare"`
}

func (p *PricingPolicyConfig) UnmarshalYAML(value *yaml.Node) error {
	var peek kindPeek
	if err := value.Decode(&peek); err != nil {
		return err
	}
	switch peek.Kind {
	case "", "constant":
		type plain struct {
			Fare float64 `yaml:"fare"`
		}
		var v plain
		if err := value.Decode(&v); err != nil {
			return err
		}
		p.Kind = "constant"
		p.Fare = v.Fare
	case "metered":
		p.Kind = "metered"
	default:
		return fmt.Errorf("simconfig: unknown pricing.kind %q", peek.Kind)
	}
	return nil
}
