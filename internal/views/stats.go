package views

import (
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/diffutil"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
)

// ToolModelStat aggregates line counts for one (tool, model) pair.
type ToolModelStat struct {
	Tool          string
	Model         string
	LinesAdded    int
	LinesAccepted int
}

// CommitStats is spec.md §4.8's per-commit breakdown: line counts by
// author class, plus a per-(tool,model) breakdown.
type CommitStats struct {
	CommitSHA string

	HumanAdditions   int
	AIAdditions      int // lines this commit's prompts added, per their counters
	AIAccepted       int // AI-attributed lines surviving in the committed content
	MixedFiles       int // files touched by both a human edit and a surviving AI range
	TotalAIAdditions int
	TotalAIDeletions int

	ByToolModel []ToolModelStat
}

// Stats computes spec.md §4.8's per-commit statistics for commitHex by
// reading its authorship note (which already carries the final per-file
// AI ranges and per-prompt counters) and diffing the commit against its
// parent for the human-authored remainder.
func Stats(commitHex string) (*CommitStats, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(plumbing.NewHash(commitHex))
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading commit "+commitHex, err)
	}
	return statsForCommit(repo, commit, nil)
}

// statsForCommit is Stats's body, factored out so RangeStats can reuse it
// per commit without re-opening the repository, and so it can honor an
// ignore list (spec.md §4.8 "Range stats... honoring an ignore list").
func statsForCommit(repo *git.Repository, commit *object.Commit, ignore map[string]bool) (*CommitStats, error) {
	commitHex := commit.Hash.String()
	changedFiles, err := changedFilePaths(repo, commit)
	if err != nil {
		return nil, err
	}

	log, err := notes.Read(commitHex)
	if err != nil {
		return nil, err
	}

	stats := &CommitStats{CommitSHA: commitHex}
	aiRangesByPath := make(map[string][]attribution.LineRange)
	if log != nil {
		for _, fa := range log.Attestations {
			aiRangesByPath[fa.Path] = fa.Ranges
		}
		byToolModel := make(map[[2]string]*ToolModelStat)
		for _, rec := range log.Prompts {
			stats.TotalAIAdditions += rec.TotalLinesAdded
			stats.TotalAIDeletions += rec.TotalLinesDeleted
			stats.AIAdditions += rec.TotalLinesAdded

			key := [2]string{rec.AgentID.Tool, rec.AgentID.Model}
			tm, ok := byToolModel[key]
			if !ok {
				tm = &ToolModelStat{Tool: rec.AgentID.Tool, Model: rec.AgentID.Model}
				byToolModel[key] = tm
			}
			tm.LinesAdded += rec.TotalLinesAdded
			tm.LinesAccepted += rec.AcceptedLines
		}
		for _, tm := range byToolModel {
			stats.ByToolModel = append(stats.ByToolModel, *tm)
		}
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent of "+commitHex, err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent tree of "+commitHex, err)
		}
	}
	commitTree, err := commit.Tree()
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading tree for "+commitHex, err)
	}

	for _, path := range changedFiles {
		if ignore[path] {
			continue
		}
		before := gitrepo.FileContent(parentTree, path)
		after := gitrepo.FileContent(commitTree, path)
		if diffutil.IsBinary(before) || diffutil.IsBinary(after) {
			continue
		}
		aiRanges := aiRangesByPath[path]
		aiLines := 0
		for _, r := range aiRanges {
			aiLines += r.Len()
		}
		stats.AIAccepted += aiLines

		// A line this commit newly inserted counts as a human addition
		// only if the final attestation does not claim it as AI -- an
		// attested range may cover lines carried over unchanged from an
		// earlier commit, which this commit did not add.
		hunks := diffutil.LineDiff(before, after)
		inserted := diffutil.InsertedRanges(hunks, attribution.HumanAuthor)
		var humanAdded int
		for _, r := range inserted {
			for _, sub := range subtractRanges(r, aiRanges) {
				humanAdded += sub.Len()
			}
		}
		stats.HumanAdditions += humanAdded

		if humanAdded > 0 && aiLines > 0 {
			stats.MixedFiles++
		}
	}

	return stats, nil
}

// changedFilePaths lists the files commit changed relative to its first
// parent (or all files, for a root commit), via the same parentTree.Diff
// idiom the teacher uses in explain.go's commitInfo builder.
func changedFilePaths(repo *git.Repository, commit *object.Commit) ([]string, error) {
	commitTree, err := commit.Tree()
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading tree for "+commit.Hash.String(), err)
	}
	if commit.NumParents() == 0 {
		return filesIn(commitTree)
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent of "+commit.Hash.String(), err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent tree of "+commit.Hash.String(), err)
	}
	changes, err := parentTree.Diff(commitTree)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "diffing "+commit.Hash.String(), err)
	}
	paths := make([]string, 0, len(changes))
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		paths = append(paths, name)
	}
	return paths, nil
}

func filesIn(tree *object.Tree) ([]string, error) {
	var paths []string
	err := tree.Files().ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "listing tree files", err)
	}
	return paths, nil
}
