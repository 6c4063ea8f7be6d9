package systems

import "github.com/pthm-cable/ecosim/components"

// Death thresholds, in intervals. A counter must exceed its limit.
const (
	ExposureLimit   = 1 * components.Month
	ThirstLimit     = 1 * components.Month
	StarvationLimit = 3 * components.Month
)

// deathRule is a pure predicate over an individual's counters and its
// species attributes.
type deathRule struct {
	cause components.Cause
	dies  func(v *components.Vitals, s *components.Species) bool
}

// deathRules are evaluated in order; the first match is the cause of death.
var deathRules = []deathRule{
	{components.CauseAge, func(v *components.Vitals, s *components.Species) bool {
		return v.Age > s.LifeSpan
	}},
	{components.CauseExposure, func(v *components.Vitals, _ *components.Species) bool {
		return v.Exposure > ExposureLimit
	}},
	{components.CauseThirst, func(v *components.Vitals, _ *components.Species) bool {
		return v.Thirst > ThirstLimit
	}},
	{components.CauseStarvation, func(v *components.Vitals, _ *components.Species) bool {
		return v.Starvation > StarvationLimit
	}},
}

func evaluateDeath(v *components.Vitals, s *components.Species) (components.Cause, bool) {
	for _, rule := range deathRules {
		if rule.dies(v, s) {
			return rule.cause, true
		}
	}
	return 0, false
}
