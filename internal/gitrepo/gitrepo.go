// Package gitrepo centralizes go-git repository access shared by the
// checkpoint recorder, rewrite translator, and notes sync: opening the
// current repository, resolving HEAD, and reading blob content out of a
// tree by path. Grounded on the teacher's strategy.OpenRepository and
// getFileContent helpers.
package gitrepo

import (
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/git-ai-oss/gitai/internal/giterrors"
	"github.com/git-ai-oss/gitai/internal/paths"
)

// Open opens the repository containing the current working directory,
// following .git-file worktree pointers and the shared common dir.
func Open() (*git.Repository, error) {
	root, err := paths.RepoRoot()
	if err != nil {
		root = "."
	}
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "opening repository", err)
	}
	return repo, nil
}

// HeadCommit resolves HEAD to its commit object. Returns (nil, nil) on an
// empty repository (no commits yet) rather than an error, since spec.md §8
// requires checkpoint + first commit to work without error.
func HeadCommit(repo *git.Repository) (*object.Commit, error) {
	ref, err := repo.Head()
	if err != nil {
		if err == plumbing.ErrReferenceNotFound {
			return nil, nil
		}
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "resolving HEAD", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading HEAD commit", err)
	}
	return commit, nil
}

// HeadHex returns HEAD's hex SHA, or "" on an empty repository.
func HeadHex(repo *git.Repository) (string, error) {
	commit, err := HeadCommit(repo)
	if err != nil || commit == nil {
		return "", err
	}
	return commit.Hash.String(), nil
}

// FileContent reads path's content out of tree. Returns "" if the tree is
// nil, the path is absent, or the file is binary (contains a NUL byte) --
// line-oriented diffing does not apply to binary content.
func FileContent(tree *object.Tree, path string) string {
	if tree == nil {
		return ""
	}
	f, err := tree.File(path)
	if err != nil {
		return ""
	}
	content, err := f.Contents()
	if err != nil {
		return ""
	}
	if strings.Contains(content, "\x00") {
		return ""
	}
	return content
}

// ResolveHex resolves a revision expression (a branch, tag, short SHA, or
// "HEAD"-relative expression) to its full commit hex, for CLI commands
// that accept arbitrary commit-ish arguments.
func ResolveHex(repo *git.Repository, rev string) (string, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", giterrors.Wrap(giterrors.KindNotAGitRepo, "resolving revision "+rev, err)
	}
	return hash.String(), nil
}

// CommitTree resolves a commit hex to its tree, tolerating an empty hex
// (treated as the empty tree).
func CommitTree(repo *git.Repository, hex string) (*object.Tree, error) {
	if hex == "" {
		return nil, nil
	}
	commit, err := repo.CommitObject(plumbing.NewHash(hex))
	if err != nil {
		return nil, giterrors.Wrap(giterrors.KindNotAGitRepo, "loading commit", err)
	}
	return commit.Tree()
}
