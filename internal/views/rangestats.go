package views

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
)

// RangeStats is spec.md §4.8's aggregate over a commit range: a summed
// CommitStats total plus the count of commits whose authorship note was
// missing (not an error -- a commit with no AI edits legitimately has no
// note).
type RangeStats struct {
	Total       CommitStats
	CommitCount int
}

// RangeStatsOptions configures RangeStats.
type RangeStatsOptions struct {
	// Ignore lists paths to exclude from every commit's stats, per
	// spec.md §4.8 "honoring an ignore list."
	Ignore map[string]bool
}

// RangeStats aggregates per-commit Stats across every commit reachable
// from toHex back to (exclusive of) fromHex. Each commit's own authorship
// note is already the authoritative final AI mapping for its content, so
// summing per-commit stats across the range does not double-count the way
// a naive line-diff over the whole range would (spec.md §4.8 "a
// classification step that uses blame-style projection of the range's
// added lines to avoid double-counting").
func RangeStats(fromHex, toHex string, opts RangeStatsOptions) (*RangeStats, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{From: plumbing.NewHash(toHex), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "walking range", err)
	}
	defer iter.Close()

	fromHash := plumbing.NewHash(fromHex)
	out := &RangeStats{}
	var walkErr error
	_ = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == fromHash {
			return errStopWalk
		}
		cs, err := statsForCommit(repo, c, opts.Ignore)
		if err != nil {
			walkErr = err
			return errStopWalk
		}
		mergeStats(&out.Total, cs)
		out.CommitCount++
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// mergeStats adds src's counters into dst, merging the per-(tool,model)
// breakdown by key. Rebuilds dst.ByToolModel from a map rather than
// mutating through slice-index pointers, since append-triggered
// reallocation would otherwise orphan earlier pointers mid-merge.
func mergeStats(dst *CommitStats, src *CommitStats) {
	dst.HumanAdditions += src.HumanAdditions
	dst.AIAdditions += src.AIAdditions
	dst.AIAccepted += src.AIAccepted
	dst.MixedFiles += src.MixedFiles
	dst.TotalAIAdditions += src.TotalAIAdditions
	dst.TotalAIDeletions += src.TotalAIDeletions

	byKey := make(map[[2]string]ToolModelStat, len(dst.ByToolModel)+len(src.ByToolModel))
	for _, tm := range dst.ByToolModel {
		byKey[[2]string{tm.Tool, tm.Model}] = tm
	}
	for _, tm := range src.ByToolModel {
		key := [2]string{tm.Tool, tm.Model}
		existing := byKey[key]
		existing.Tool, existing.Model = tm.Tool, tm.Model
		existing.LinesAdded += tm.LinesAdded
		existing.LinesAccepted += tm.LinesAccepted
		byKey[key] = existing
	}
	dst.ByToolModel = dst.ByToolModel[:0]
	for _, tm := range byKey {
		dst.ByToolModel = append(dst.ByToolModel, tm)
	}
}
