package rewrite

import "github.com/git-ai-oss/gitai/internal/attribution"

// Class names the rewrite shape the translator has classified a history
// change as, per spec.md §4.4's "Classification rule."
type Class string

const (
	ClassFastForward  Class = "fast_forward"
	ClassMergePass    Class = "merge_pass_through"
	ClassLinearRebase Class = "linear_rebase"
	ClassSquash       Class = "squash"
	ClassCherryPick   Class = "cherry_pick"
	ClassAmend        Class = "amend"
)

// Topology describes the shape of a rewrite when no explicit rewrite
// event was logged, so Classify can fall back to inspecting it.
type Topology struct {
	ParentCount            int
	MergeCommitEqualsHead   bool
	SourceRangeLen          int
	TargetRangeLen          int
	SingleCommitParentDiffers bool
}

// Classify chooses a rewrite Class, preferring an explicit rewrite event
// from the event log when present (spec.md §4.4: "It consults the rewrite
// event log for explicit merge-squash/rebase-complete events; if absent,
// it inspects the commit topology").
func Classify(event *attribution.RewriteEvent, topo Topology) Class {
	if event != nil {
		switch event.Kind {
		case attribution.EventMergeSquash:
			return ClassSquash
		case attribution.EventRebaseComplete:
			return ClassLinearRebase
		}
	}

	switch {
	case topo.ParentCount >= 2:
		return ClassMergePass
	case topo.MergeCommitEqualsHead:
		return ClassFastForward
	case topo.SourceRangeLen > 1 && topo.SourceRangeLen == topo.TargetRangeLen:
		return ClassLinearRebase
	case topo.SourceRangeLen > 1 && topo.TargetRangeLen == 1:
		return ClassSquash
	case topo.SingleCommitParentDiffers:
		return ClassCherryPick
	default:
		return ClassAmend
	}
}
