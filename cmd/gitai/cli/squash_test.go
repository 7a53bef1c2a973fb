package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
)

func TestSquashAuthorshipRebuildsNoteFromRange(t *testing.T) {
	dir := initCLITestRepo(t)
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	baseRef, err := repo.Head()
	require.NoError(t, err)
	baseHex := baseRef.Hash().String()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\nc\n"), 0o644))
	_, err = wt.Add("new.txt")
	require.NoError(t, err)
	oldHash, err := wt.Commit("old squashed commit", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@t.com"},
	})
	require.NoError(t, err)
	oldHex := oldHash.String()

	require.NoError(t, notes.Attach(oldHex, &attribution.AuthorshipLog{
		SchemaVersion: "1",
		BaseCommitSHA: baseHex,
		Attestations: []attribution.FileAttribution{
			{Path: "new.txt", Ranges: []attribution.LineRange{{Start: 1, End: 3, Author: "hash-1"}}},
		},
		Prompts: map[string]attribution.PromptRecord{
			"hash-1": {PromptHash: "hash-1", FirstMessage: "write new.txt", AgentID: attribution.AgentID{Tool: "claude-code"}, TotalLinesAdded: 3},
		},
	}))

	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(baseHex)}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\nc\n"), 0o644))
	_, err = wt.Add("new.txt")
	require.NoError(t, err)
	newHash, err := wt.Commit("rewritten squash commit", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@t.com"},
	})
	require.NoError(t, err)
	newHex := newHash.String()

	result, gotNewHex, err := squashAuthorship(baseHex, newHex, oldHex)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, newHex, gotNewHex)
	require.Len(t, result.Attestations, 1)
	require.Equal(t, "new.txt", result.Attestations[0].Path)
	require.Equal(t, []attribution.LineRange{{Start: 1, End: 3, Author: "hash-1"}}, result.Attestations[0].Ranges)
	require.Contains(t, result.Prompts, "hash-1")
}

func TestSquashAuthorshipNoSourceNotesIsNoOp(t *testing.T) {
	dir := initCLITestRepo(t)
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	baseHexObj, err := gitrepo.Open()
	require.NoError(t, err)
	baseHex, err := gitrepo.HeadHex(baseHexObj)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.txt"), []byte("x\n"), 0o644))
	_, err = wt.Add("plain.txt")
	require.NoError(t, err)
	oldHash, err := wt.Commit("plain commit", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@t.com"},
	})
	require.NoError(t, err)

	result, newHex, err := squashAuthorship(baseHex, oldHash.String(), oldHash.String())
	require.NoError(t, err)
	require.Nil(t, result)
	require.Equal(t, oldHash.String(), newHex)
}
