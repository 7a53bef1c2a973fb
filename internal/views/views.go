// Package views implements the derived-view layer from spec.md §4.8: blame,
// per-commit stats, range stats, AI-touched-file traversal, and prompt
// lookup. Every view is built on the same primitive -- walking a commit
// range oldest-to-newest, projecting each step's authorship log onto the
// running full-file attribution the way internal/fusion projects one
// checkpoint onto another -- generalized from "checkpoint since last
// commit" to "commit since its parent."
package views

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
)

// errStopWalk breaks out of a repo.Log ForEach walk once the caller's
// commit budget is exhausted, matching the teacher's own errStop/
// errStopIteration sentinel used the same way in strategy/common.go and
// explain.go.
var errStopWalk = giterrors.New(giterrors.KindExternalTool, "commit walk budget exhausted")

// commitStep is one historical commit's effect on a single file, used by
// both Blame and Stats to avoid re-walking history twice.
type commitStep struct {
	commit *object.Commit
	log    *attribution.AuthorshipLog // nil if this commit carries no note
}

// walkPathHistory returns the commits that touched path, reachable from
// start, oldest first, each paired with its authorship log (nil if none).
// Equivalent to `git log --follow=false -- path` without the rename
// tracking spec.md §1 places out of scope.
func walkPathHistory(repo *git.Repository, start *object.Commit, path string, maxCommits int) ([]commitStep, error) {
	if start == nil {
		return nil, nil
	}
	iter, err := repo.Log(&git.LogOptions{From: start.Hash, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "walking history for "+path, err)
	}
	defer iter.Close()

	var steps []commitStep
	var stepErr error
	_ = iter.ForEach(func(c *object.Commit) error {
		if maxCommits > 0 && len(steps) >= maxCommits {
			return errStopWalk
		}
		parentContent, perr := parentFileContent(repo, c, path)
		if perr != nil {
			stepErr = perr
			return errStopWalk
		}
		thisContent := contentAt(repo, c, path)
		if parentContent == thisContent {
			return nil // this commit did not touch path
		}
		logEntry, lerr := notes.Read(c.Hash.String())
		if lerr != nil {
			stepErr = giterrors.Wrap(giterrors.KindExternalTool, "reading authorship note for "+c.Hash.String(), lerr)
			return errStopWalk
		}
		steps = append(steps, commitStep{commit: c, log: logEntry})
		return nil
	})
	if stepErr != nil {
		return nil, stepErr
	}

	// iter yields newest-first; reverse to oldest-first so callers can fold
	// forward the same direction the working log's checkpoints are folded.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, nil
}

func contentAt(repo *git.Repository, c *object.Commit, path string) string {
	tree, err := c.Tree()
	if err != nil {
		return ""
	}
	return gitrepo.FileContent(tree, path)
}

func parentFileContent(repo *git.Repository, c *object.Commit, path string) (string, error) {
	if c.NumParents() == 0 {
		return "", nil
	}
	parent, err := c.Parent(0)
	if err != nil {
		return "", giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent of "+c.Hash.String(), err)
	}
	return contentAt(repo, parent, path), nil
}

// foldStep projects priorFull (the full, human-inclusive attribution as of
// the previous commit) forward through the diff between the parent's and
// this commit's content, then overrides the result with this commit's
// authorship-log attestation for path, which is authoritative for every
// line it names (spec.md §4.2's overlay rule, generalized from
// checkpoint-granularity to commit-granularity).
func foldStep(priorFull []attribution.LineRange, beforeContent, afterContent string, attestation []attribution.LineRange) []attribution.LineRange {
	hunks := diffutil.LineDiff(beforeContent, afterContent)
	carried := diffutil.ProjectRanges(hunks, priorFull)
	freshHuman := diffutil.InsertedRanges(hunks, attribution.HumanAuthor)
	base := attribution.Canonicalize(append(carried, freshHuman...))
	return applyOverride(base, attestation)
}

// applyOverride returns base with every line covered by override replaced
// by override's author. Clips base against override explicitly (rather
// than relying on attribution.Canonicalize's input-order-sensitive overlap
// rule) since override must win unconditionally here regardless of which
// slice the caller happens to list first.
func applyOverride(base, override []attribution.LineRange) []attribution.LineRange {
	if len(override) == 0 {
		return attribution.Canonicalize(base)
	}
	var clipped []attribution.LineRange
	for _, b := range base {
		clipped = append(clipped, subtractRanges(b, override)...)
	}
	merged := append(clipped, override...)
	return attribution.Canonicalize(merged)
}

// subtractRanges removes every portion of b covered by any range in cuts,
// returning the (possibly empty, possibly split) remainder with b's
// original author.
func subtractRanges(b attribution.LineRange, cuts []attribution.LineRange) []attribution.LineRange {
	remaining := []attribution.LineRange{b}
	for _, cut := range cuts {
		var next []attribution.LineRange
		for _, r := range remaining {
			lo := max(r.Start, cut.Start)
			hi := min(r.End, cut.End)
			if lo > hi {
				next = append(next, r)
				continue
			}
			if r.Start < lo {
				next = append(next, attribution.LineRange{Start: r.Start, End: lo - 1, Author: r.Author})
			}
			if r.End > hi {
				next = append(next, attribution.LineRange{Start: hi + 1, End: r.End, Author: r.Author})
			}
		}
		remaining = next
	}
	return remaining
}
