package policy

import "arksim/internal/domain"

// MatchingPolicy selects which idle driver, if any, should be bound to a
// waiting rider. Grounded on policy/assign.py / policy/matching.py
// NearestAssign — the prototype's "nearest" selection degrades to "any
// idle driver" once geospatial ranking is out of scope, a simplification
// the source spec itself makes by never threading distance into
// try_match_from_queue.
type MatchingPolicy interface {
	SelectDriver(w *domain.WorldState, rider *domain.Rider) *domain.Driver
}

// NearestAssign pulls the longest-idle driver from the world's idle set.
// A true nearest-distance ranking needs a geo index (such as the teacher's
// matching/store.go Redis GEO search, which this repository does not
// carry); the deterministic core never ranks by distance, matching the
// source implementation.
type NearestAssign struct{}

func (NearestAssign) SelectDriver(w *domain.WorldState, _ *domain.Rider) *domain.Driver {
	return w.GetIdleDriver()
}
