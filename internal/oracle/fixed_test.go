package oracle

import (
	"testing"

	"arksim/internal/event"
)

func TestFixedDurationsMatchConstants(t *testing.T) {
	f := NewFixed(10, 20, 30)
	if got := f.DurationToPickup(nil, nil, 0); got != 10 {
		t.Fatalf("pickup = %v, want 10", got)
	}
	if got := f.DurationToDropoff(nil, nil, 0); got != 20 {
		t.Fatalf("dropoff = %v, want 20", got)
	}
	if got := f.DurationReposition(nil, 0); got != 30 {
		t.Fatalf("reposition = %v, want 30", got)
	}
}

func TestFixedMovePlanPicksConstantByKind(t *testing.T) {
	f := NewFixed(10, 20, 30)
	a := event.Point{X: 0, Y: 0}
	b := event.Point{X: 100, Y: 100}

	cases := []struct {
		kind event.LegKind
		want float64
	}{
		{event.LegPickup, 10},
		{event.LegDropoff, 20},
		{event.LegReposition, 30},
	}
	for _, c := range cases {
		plan := f.MovePlan(a, b, 5, 1, 12, c.kind)
		if plan.StartT != 5 {
			t.Fatalf("kind %v: StartT = %v, want 5", c.kind, plan.StartT)
		}
		if got := plan.EndT - plan.StartT; got != c.want {
			t.Fatalf("kind %v: duration = %v, want %v", c.kind, got, c.want)
		}
		if plan.Start != a || plan.End != b {
			t.Fatalf("kind %v: plan endpoints not preserved", c.kind)
		}
	}
}
