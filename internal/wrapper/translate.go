package wrapper

import (
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/rewrite"
)

// translateRewrite implements spec.md §4.7's `merge/rebase/cherry-pick →
// translator` post-command step for the common single-operation case: the
// rewrite just completed is fully described by HEAD and its parent(s). A
// multi-commit rewrite range (an interactive rebase covering several
// commits, a squash merge) needs the full commit range the wrapper alone
// doesn't have in hand; those are re-run precisely via the explicit
// `squash-authorship` CLI subcommand (spec.md §6.3), which calls
// rewrite.Squash/LinearRebase directly with a caller-supplied commit list.
func (p *Pipeline) translateRewrite(class rewrite.Class) error {
	repo, err := gitrepo.Open()
	if err != nil {
		return err
	}
	newHex, err := gitrepo.HeadHex(repo)
	if err != nil || newHex == "" {
		return err
	}

	commit, err := repo.CommitObject(plumbing.NewHash(newHex))
	if err != nil {
		return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading HEAD commit", err)
	}

	if class == rewrite.ClassMergePass {
		return p.translateMerge(commit, newHex)
	}
	return p.translateSingleParent(commit, newHex, class)
}

func (p *Pipeline) translateSingleParent(commit *object.Commit, newHex string, class rewrite.Class) error {
	if commit.NumParents() == 0 {
		return nil
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent commit", err)
	}
	oldHex := parent.Hash.String()

	oldLog, err := notes.Read(oldHex)
	if err != nil {
		return err
	}
	if oldLog == nil {
		return nil // nothing attributed on the prior commit; nothing to translate
	}

	oldTree, err := parent.Tree()
	if err != nil {
		return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading parent tree", err)
	}
	newTree, err := commit.Tree()
	if err != nil {
		return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading commit tree", err)
	}
	changedPaths, err := changedPathsBetween(oldTree, newTree)
	if err != nil {
		return err
	}

	oldContent := func(path string) string { return gitrepo.FileContent(oldTree, path) }
	newContent := func(path string) string { return gitrepo.FileContent(newTree, path) }

	var translated = rewrite.CherryPick
	if class == rewrite.ClassAmend {
		translated = rewrite.Amend
	}

	return notes.Attach(newHex, translated(oldLog, changedPaths, oldContent, newContent, newHex, p.ToolVersion))
}

func (p *Pipeline) translateMerge(commit *object.Commit, newHex string) error {
	if commit.NumParents() < 2 {
		return nil
	}
	newTree, err := commit.Tree()
	if err != nil {
		return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading merge commit tree", err)
	}

	var parents []rewrite.MergeParent
	var mergedPaths []string
	seen := make(map[string]bool)

	for i := 0; i < commit.NumParents(); i++ {
		parent, err := commit.Parent(i)
		if err != nil {
			return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading merge parent", err)
		}
		parentLog, err := notes.Read(parent.Hash.String())
		if err != nil {
			return err
		}
		if parentLog == nil {
			continue
		}
		parentTree, err := parent.Tree()
		if err != nil {
			return giterrors.Wrap(giterrors.KindNotAGitRepo, "loading merge parent tree", err)
		}
		paths, err := changedPathsBetween(parentTree, newTree)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if !seen[path] {
				seen[path] = true
				mergedPaths = append(mergedPaths, path)
			}
		}
		pt := parentTree
		parents = append(parents, rewrite.MergeParent{
			Log:          parentLog,
			ChangedPaths: paths,
			Content:      func(path string) string { return gitrepo.FileContent(pt, path) },
		})
	}
	if len(parents) == 0 {
		return nil
	}

	newContent := func(path string) string { return gitrepo.FileContent(newTree, path) }
	translated := rewrite.MergePassThrough(parents, newContent, mergedPaths, newHex, p.ToolVersion)
	return notes.Attach(newHex, translated)
}
