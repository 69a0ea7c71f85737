package mechanics

import (
	"math/rand/v2"
	"testing"

	"arksim/internal/event"
)

func TestEuclideanRoute(t *testing.T) {
	a := event.Point{X: 0, Y: 0}
	b := event.Point{X: 3, Y: 4}
	r := Euclidean{}
	if got := r.DistanceM(a, b); got != 5 {
		t.Fatalf("distance = %v, want 5", got)
	}
	path := r.Route(a, b)
	if len(path.Segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(path.Segments))
	}
	if path.TotalLengthM != 5 {
		t.Fatalf("total length = %v, want 5", path.TotalLengthM)
	}
}

func TestManhattanRoute(t *testing.T) {
	a := event.Point{X: 0, Y: 0}
	b := event.Point{X: 3, Y: 4}
	r := Manhattan{}
	if got := r.DistanceM(a, b); got != 7 {
		t.Fatalf("distance = %v, want 7", got)
	}
	path := r.Route(a, b)
	if len(path.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(path.Segments))
	}
	if path.TotalLengthM != 7 {
		t.Fatalf("total length = %v, want 7", path.TotalLengthM)
	}
	if path.Segments[0].End != (event.Point{X: 3, Y: 0}) {
		t.Fatalf("corner = %v, want (3,0)", path.Segments[0].End)
	}
}

func TestPiecewiseConstPlan(t *testing.T) {
	a := event.Point{X: 0, Y: 0}
	b := event.Point{X: 10, Y: 0}
	path := Euclidean{}.Route(a, b)
	speed := Global{VMPS: 2}
	plan := PiecewiseConst{}.Plan(path, 100, speed, 1, 8)
	if plan.StartT != 100 {
		t.Fatalf("StartT = %v, want 100", plan.StartT)
	}
	if plan.EndT != 105 {
		t.Fatalf("EndT = %v, want 105 (10m at 2m/s)", plan.EndT)
	}
	if plan.TotalLengthM != 10 {
		t.Fatalf("TotalLengthM = %v, want 10", plan.TotalLengthM)
	}
}

func TestEdgeAwareAppliesFactorsAndFloors(t *testing.T) {
	e := EdgeAware{
		BaseMPS: 10,
		TODFac:  map[string]float64{"1:8": 0.5},
		EdgeFac: map[int]float64{42: 2.0},
	}
	if got := e.SpeedMPS(0, 42, true, 1, 8); got != 10 {
		t.Fatalf("speed = %v, want 10 (10*0.5*2.0)", got)
	}
	if got := e.SpeedMPS(0, 99, false, 1, 8); got != 5 {
		t.Fatalf("speed without edge factor = %v, want 5", got)
	}
	floor := EdgeAware{BaseMPS: 1, TODFac: map[string]float64{"1:8": 0.0001}}
	if got := floor.SpeedMPS(0, 0, false, 1, 8); got < minSpeedMPS {
		t.Fatalf("speed %v fell below floor %v", got, minSpeedMPS)
	}
}

func TestIdealizedODSamplerStaysWithinZone(t *testing.T) {
	zones := []Zone{{X0: 0, Y0: 0, X1: 10, Y1: 10}, {X0: 100, Y0: 100, X1: 110, Y1: 110}}
	s := NewIdealized(zones, []float64{1, 0}) // always pick zone 0
	g := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		p := s.SampleOrigin(g)
		if p.X < 0 || p.X > 10 || p.Y < 0 || p.Y > 10 {
			t.Fatalf("sample %v outside zone 0", p)
		}
	}
}
