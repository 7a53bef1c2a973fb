package wrapper

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/fusion"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/promptstore"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

const fuseLockTimeout = 5 * time.Second

// fuseAndAttach implements spec.md §4.7's `commit → fusion + serialize +
// notes-add` post-command step: it folds the working log accumulated
// against preHeadHex into one authorship log for the new HEAD, attaches it
// as a note, and rotates the working log onto the new base commit.
func (p *Pipeline) fuseAndAttach(preHeadHex string) error {
	repo, err := gitrepo.Open()
	if err != nil {
		return err
	}
	newHex, err := gitrepo.HeadHex(repo)
	if err != nil {
		return err
	}
	if newHex == "" || newHex == preHeadHex {
		return nil
	}

	base := preHeadHex
	if base == "" {
		base = workinglog.InitialBaseSentinel
	}
	log, err := workinglog.Open(base)
	if err != nil {
		return err
	}
	if err := log.Lock().Acquire(fuseLockTimeout); err != nil {
		return err
	}
	defer log.Lock().Release()

	checkpoints, err := log.Checkpoints()
	if err != nil {
		return err
	}
	initial, err := log.Initial()
	if err != nil {
		return err
	}

	oldTree, err := gitrepo.CommitTree(repo, preHeadHex)
	if err != nil {
		return err
	}
	newTree, err := gitrepo.CommitTree(repo, newHex)
	if err != nil {
		return err
	}

	changedPaths, err := changedPathsBetween(oldTree, newTree)
	if err != nil {
		return err
	}

	committed := make(map[string]string, len(changedPaths))
	for _, path := range changedPaths {
		committed[path] = gitrepo.FileContent(newTree, path)
	}

	var enrich func(string) (attribution.PromptRecord, bool)
	if store, err := promptstore.Global(); err == nil {
		enrich = store.Enricher()
	}

	result := fusion.Fuse(fusion.Input{
		BaseCommitSHA:    newHex,
		ToolVersion:      p.ToolVersion,
		Initial:          initial,
		Checkpoints:      checkpoints,
		CommittedContent: committed,
		Lookup:           log.Cache(),
		Enrich:           enrich,
	})

	if err := notes.Attach(newHex, result.AuthorshipLog); err != nil {
		return err
	}

	if err := log.Destroy(); err != nil {
		return err
	}

	if result.InitialAttributions != nil && len(result.InitialAttributions.Files) > 0 {
		nextLog, err := workinglog.Open(newHex)
		if err != nil {
			return err
		}
		if err := nextLog.WriteInitial(result.InitialAttributions); err != nil {
			return err
		}
	}

	return nil
}

// changedPathsBetween returns the repository-relative paths that differ
// between oldTree and newTree. A nil oldTree (the repository's first
// commit) means every path in newTree is "changed".
func changedPathsBetween(oldTree, newTree *object.Tree) ([]string, error) {
	if newTree == nil {
		return nil, nil
	}
	if oldTree == nil {
		var out []string
		err := newTree.Files().ForEach(func(f *object.File) error {
			out = append(out, f.Name)
			return nil
		})
		if err != nil {
			return nil, giterrors.Wrap(giterrors.KindExternalTool, "listing initial commit files", err)
		}
		return out, nil
	}
	changes, err := oldTree.Diff(newTree)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindExternalTool, "diffing commit trees", err)
	}
	return changedPathsFrom(changes), nil
}

func changedPathsFrom(changes object.Changes) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			name = c.From.Name
		}
		out = append(out, name)
	}
	return out
}
