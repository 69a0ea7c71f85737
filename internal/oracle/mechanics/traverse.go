package mechanics

import "arksim/internal/domain"

// Traverser turns a Path plus a SpeedSampler into a domain.MovePlan,
// accumulating time segment by segment at whatever speed the sampler
// reports for that segment's edge and time. Grounded on
// domain/mechanics/mechanics_path_traversers.py PiecewiseConstSpeedTraverser.
type Traverser interface {
	Plan(path Path, t0 float64, speed SpeedSampler, dow, hour int) domain.MovePlan
}

// PiecewiseConst walks each segment at a speed resampled per segment,
// matching mechanics_path_traversers.py's plan().
type PiecewiseConst struct{}

func (PiecewiseConst) Plan(path Path, t0 float64, speed SpeedSampler, dow, hour int) domain.MovePlan {
	t := t0
	tasks := make([]domain.MoveTask, 0, len(path.Segments))
	for _, seg := range path.Segments {
		v := speed.SpeedMPS(t, seg.EdgeID, seg.HasEdgeID, dow, hour)
		if v < minSpeedMPS {
			v = minSpeedMPS
		}
		dt := seg.LengthM / v
		tasks = append(tasks, domain.MoveTask{Start: seg.Start, End: seg.End, StartT: t, EndT: t + dt})
		t += dt
	}
	return domain.MovePlan{Tasks: tasks, TotalLengthM: path.TotalLengthM, StartT: t0, EndT: t}
}
