package domain

import "arksim/internal/event"

// MotionPlan is a single driver leg: start/end coordinates and times, with
// linear interpolation between them. Grounded on the prototype's
// domain/entities/motion.py MoveTask.
type MotionPlan struct {
	Start   event.Point
	End     event.Point
	StartT  float64
	EndT    float64
}

// Frac returns the fraction of the leg complete at t, clamped to [0, 1].
func (p MotionPlan) Frac(t float64) float64 {
	if p.EndT <= p.StartT {
		return 1
	}
	f := (t - p.StartT) / (p.EndT - p.StartT)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Pos returns the interpolated position at t.
func (p MotionPlan) Pos(t float64) event.Point {
	f := p.Frac(t)
	return event.Point{
		X: p.Start.X + (p.End.X-p.Start.X)*f,
		Y: p.Start.Y + (p.End.Y-p.Start.Y)*f,
	}
}

// MoveTask is one segment of a multi-segment MovePlan.
type MoveTask = MotionPlan

// MovePlan generalizes MotionPlan to an ordered sequence of legs, used by
// route planners that produce more than one segment (e.g. a network route
// or a Manhattan two-segment path). Grounded on the prototype's
// domain/entities/motion.py MovePlan.
type MovePlan struct {
	Tasks         []MoveTask
	TotalLengthM  float64
	StartT        float64
	EndT          float64
}

// Pos scans the plan's tasks for the one active at t and interpolates
// within it. If t is past the plan's end, the last task's end position is
// returned.
func (p MovePlan) Pos(t float64) event.Point {
	if len(p.Tasks) == 0 {
		return event.Point{}
	}
	idx := p.currentTaskIndex(t)
	return p.Tasks[idx].Pos(t)
}

// currentTaskIndex returns the index of the task active at t.
func (p MovePlan) currentTaskIndex(t float64) int {
	for i, task := range p.Tasks {
		if t <= task.EndT || i == len(p.Tasks)-1 {
			return i
		}
	}
	return len(p.Tasks) - 1
}

// AsMotionPlan collapses a single-task MovePlan into a MotionPlan, or the
// envelope of a multi-task plan (first start, last end) when the caller
// only needs a coarse single-leg view.
func (p MovePlan) AsMotionPlan() MotionPlan {
	if len(p.Tasks) == 0 {
		return MotionPlan{}
	}
	if len(p.Tasks) == 1 {
		return p.Tasks[0]
	}
	first, last := p.Tasks[0], p.Tasks[len(p.Tasks)-1]
	return MotionPlan{Start: first.Start, End: last.End, StartT: first.StartT, EndT: last.EndT}
}
