package views

import (
	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
)

// defaultBlameCommitScanLimit bounds how far back Blame walks history,
// matching the teacher's commitScanLimit used for the same reason
// (strategy/common.go, explain.go): unbounded history walks on a large
// repository are a real latency hazard and the spec accepts a bounded
// traversal (spec.md §5 "small asynchronous tasks... bounded").
const defaultBlameCommitScanLimit = 5000

// BlameOptions configures a Blame call.
type BlameOptions struct {
	// LineStart/LineEnd restrict the result to that inclusive 1-indexed
	// range; zero values mean "whole file."
	LineStart, LineEnd int
	// MaxCommits overrides defaultBlameCommitScanLimit; zero uses the default.
	MaxCommits int
}

// BlameLine is one line's resolved authorship.
type BlameLine struct {
	Line   int
	Author string // prompt hash, attribution.HumanAuthor, or attribution.UnknownAuthor
}

// BlameResult is the per-line authorship walk over one file at HEAD.
type BlameResult struct {
	Path    string
	Lines   []BlameLine
	Prompts map[string]attribution.PromptRecord
}

// Blame walks path's commit history oldest-to-newest, folding each
// commit's authorship-log attestation onto the running full-file
// attribution, and returns the resulting per-line authorship at HEAD
// (spec.md §4.8 "Blame... projecting prior authorship logs onto current
// line numbers using diffs").
func Blame(path string, opts BlameOptions) (*BlameResult, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, err
	}
	head, err := gitrepo.HeadCommit(repo)
	if err != nil {
		return nil, err
	}
	if head == nil {
		return &BlameResult{Path: path, Prompts: map[string]attribution.PromptRecord{}}, nil
	}

	maxCommits := opts.MaxCommits
	if maxCommits == 0 {
		maxCommits = defaultBlameCommitScanLimit
	}
	steps, err := walkPathHistory(repo, head, path, maxCommits)
	if err != nil {
		return nil, err
	}

	var full []attribution.LineRange
	prompts := make(map[string]attribution.PromptRecord)
	for _, step := range steps {
		parentContent, err := parentFileContent(repo, step.commit, path)
		if err != nil {
			return nil, err
		}
		thisContent := contentAt(repo, step.commit, path)

		var attestation []attribution.LineRange
		if step.log != nil {
			for _, fa := range step.log.Attestations {
				if fa.Path == path {
					attestation = fa.Ranges
					break
				}
			}
			for hash, rec := range step.log.Prompts {
				prompts[hash] = rec
			}
		}
		full = foldStep(full, parentContent, thisContent, attestation)
	}

	headContent := contentAt(repo, head, path)
	totalLines := diffutil.CountLines(headContent)
	lo, hi := 1, totalLines
	if opts.LineStart > 0 {
		lo = opts.LineStart
	}
	if opts.LineEnd > 0 {
		hi = opts.LineEnd
	}

	lines := make([]BlameLine, 0, hi-lo+1)
	for line := lo; line <= hi && line <= totalLines; line++ {
		lines = append(lines, BlameLine{Line: line, Author: attribution.FindAuthor(full, line)})
	}

	used := make(map[string]attribution.PromptRecord, len(prompts))
	for _, l := range lines {
		if rec, ok := prompts[l.Author]; ok {
			used[l.Author] = rec
		}
	}

	return &BlameResult{Path: path, Lines: lines, Prompts: used}, nil
}
