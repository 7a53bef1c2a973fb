package cli

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
	"github.com/git-ai-oss/gitai/internal/rewrite"
)

// newSquashAuthorshipCmd implements spec.md §4.4.3/§6.3's force translator
// path: `squash-authorship <base> <new-sha> <old-sha>` rebuilds new-sha's
// authorship note from the union of the authorship logs attached to every
// commit strictly between base and old-sha, clipped against new-sha's
// actual content. Used when the automatic post-rewrite classification
// (internal/wrapper/hooks.go) can't determine the squash boundary itself,
// e.g. a `git reset --soft` followed by a manual commit.
func newSquashAuthorshipCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "squash-authorship <base> <new-sha> <old-sha>",
		Short: "Force-rebuild a commit's authorship note from a squashed commit range",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !assumeYes {
				ok, err := confirm(
					"Rewrite authorship note?",
					fmt.Sprintf("This overwrites the authorship note attached to %s.", args[1]),
				)
				if err != nil {
					return fmt.Errorf("gitai: squash-authorship: %w", err)
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "gitai: squash-authorship: aborted")
					return nil
				}
			}

			result, newHex, err := squashAuthorship(args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("gitai: squash-authorship: %w", err)
			}
			if result == nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "gitai: squash-authorship: no source commits had an authorship note; nothing to do")
				return nil
			}
			if err := notes.Attach(newHex, result); err != nil {
				return fmt.Errorf("gitai: squash-authorship: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attached rebuilt authorship note to %s\n", newHex)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func squashAuthorship(baseRev, newRev, oldRev string) (*attribution.AuthorshipLog, string, error) {
	repo, err := gitrepo.Open()
	if err != nil {
		return nil, "", err
	}
	baseHex, err := gitrepo.ResolveHex(repo, baseRev)
	if err != nil {
		return nil, "", err
	}
	newHex, err := gitrepo.ResolveHex(repo, newRev)
	if err != nil {
		return nil, "", err
	}
	oldHex, err := gitrepo.ResolveHex(repo, oldRev)
	if err != nil {
		return nil, "", err
	}

	sources, err := sourceLogsFromRange(repo, baseHex, oldHex)
	if err != nil {
		return nil, "", err
	}
	if len(sources) == 0 {
		return nil, newHex, nil
	}

	baseTree, err := gitrepo.CommitTree(repo, baseHex)
	if err != nil {
		return nil, "", err
	}
	oldTree, err := gitrepo.CommitTree(repo, oldHex)
	if err != nil {
		return nil, "", err
	}
	newTree, err := gitrepo.CommitTree(repo, newHex)
	if err != nil {
		return nil, "", err
	}
	changedPaths, err := changedPathsBetween(baseTree, oldTree)
	if err != nil {
		return nil, "", err
	}

	baseContent := func(path string) string { return gitrepo.FileContent(baseTree, path) }
	newContent := func(path string) string { return gitrepo.FileContent(newTree, path) }

	return rewrite.Squash(sources, changedPaths, baseContent, newContent, newHex, Version), newHex, nil
}

// errStopRangeWalk breaks out of a repo.Log ForEach walk once the source
// range's lower bound (baseHex) is reached.
var errStopRangeWalk = giterrors.New(giterrors.KindExternalTool, "squash range walk complete")

// sourceLogsFromRange reads every authorship note attached to a commit
// strictly between baseHex (exclusive) and oldHex (inclusive), oldest
// first, so Squash's "later overrides earlier" rule lines up with commit
// order, pairing each log with a resolver for that exact commit's own
// tree so Squash can re-project it forward rather than assuming its line
// numbers already line up with the next commit's.
func sourceLogsFromRange(repo *git.Repository, baseHex, oldHex string) ([]rewrite.SquashSource, error) {
	iter, err := repo.Log(&git.LogOptions{From: plumbing.NewHash(oldHex), Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "walking squash range", err)
	}
	defer iter.Close()

	baseHash := plumbing.NewHash(baseHex)
	var hexes []string
	var walkErr error
	_ = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == baseHash {
			return errStopRangeWalk
		}
		hexes = append(hexes, c.Hash.String())
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sources := make([]rewrite.SquashSource, 0, len(hexes))
	for i := len(hexes) - 1; i >= 0; i-- { // reverse: oldest first
		hex := hexes[i]
		log, err := notes.Read(hex)
		if err != nil {
			return nil, err
		}
		if log == nil {
			continue
		}
		tree, err := gitrepo.CommitTree(repo, hex)
		if err != nil {
			return nil, err
		}
		sources = append(sources, rewrite.SquashSource{
			Log:     log,
			Content: func(path string) string { return gitrepo.FileContent(tree, path) },
		})
	}
	return sources, nil
}

// changedPathsBetween lists every path that differs between two trees, by
// the same tree.Diff idiom internal/wrapper's commitfuse.go uses. A nil
// oldTree (the repository's first commit) means every path in newTree
// counts as changed.
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
			return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "listing initial commit files", err)
		}
		return out, nil
	}
	changes, err := oldTree.Diff(newTree)
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "diffing trees", err)
	}
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.To.Name
		if name == "" {
			name = c.From.Name
		}
		paths = append(paths, name)
	}
	return paths, nil
}
