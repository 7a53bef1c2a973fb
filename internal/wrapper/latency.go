package wrapper

import "time"

// overheadCeiling is the absolute cap on gitai's own added latency, the
// fallback ceiling for every command class (spec.md §4.7 step 5).
const overheadCeiling = 270 * time.Millisecond

// ExceedsBudget reports whether one wrapper invocation's attribution
// overhead violated its latency budget. Each command class is allowed to
// pass on EITHER of two grounds -- a bounded relative blowup over the
// subprocess itself, or an absolute overhead ceiling -- so a violation
// requires both grounds to fail at once.
func ExceedsBudget(class CommandClass, subprocess, overhead time.Duration) bool {
	if overhead <= overheadCeiling {
		return false
	}

	var relativeCeiling float64
	switch class {
	case ClassCommit, ClassRebase, ClassCherryPick, ClassReset:
		relativeCeiling = 1.1
	case ClassFetch, ClassPull, ClassPush:
		relativeCeiling = 1.5
	default:
		return true // "anything else" has no relative ground, only the absolute ceiling
	}

	total := subprocess + overhead
	return float64(total) > relativeCeiling*float64(subprocess)
}
