package policy

// IdlePolicy governs how long an idle driver dwells before repositioning,
// and whether it keeps repositioning indefinitely while no match is found.
// Grounded on policy/idle.py CirculatingIdlePolicy.
type IdlePolicy struct {
	DwellS              float64
	ContinualReposition bool
}

func NewCirculatingIdlePolicy(dwellS float64, continualReposition bool) IdlePolicy {
	return IdlePolicy{DwellS: dwellS, ContinualReposition: continualReposition}
}
