package checkpointrec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/paths"
)

func initRepoWithCommit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "t", Email: "t@t.com"},
	})
	require.NoError(t, err)

	t.Chdir(dir)
	paths.ResetCache()
	return dir
}

func TestRecordAIInsertNewFile(t *testing.T) {
	dir := initRepoWithCommit(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\nc\n"), 0o644))

	res, err := Record(Request{
		Kind:        attribution.KindAIAgent,
		AgentID:     &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Transcript:  "do a thing",
		EditedPaths: []string{"new.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.CheckpointsWritten)
	assert.Equal(t, 3, res.LinesAdded)
	assert.Equal(t, 0, res.LinesDeleted)
}

func TestRecordNoChangesIsNoOp(t *testing.T) {
	initRepoWithCommit(t)

	res, err := Record(Request{
		Kind:        attribution.KindHuman,
		EditedPaths: []string{"README.md"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CheckpointsWritten)
	assert.Equal(t, 0, res.LinesAdded)
	assert.Equal(t, 0, res.LinesDeleted)
}

func TestRecordIgnoresInfrastructurePath(t *testing.T) {
	dir := initRepoWithCommit(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".gitai"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitai", "settings.json"), []byte("{}"), 0o644))

	res, err := Record(Request{
		Kind:        attribution.KindHuman,
		EditedPaths: []string{".gitai/settings.json"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CheckpointsWritten)
}

func TestRecordHonorsIgnoreMatch(t *testing.T) {
	dir := initRepoWithCommit(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor.txt"), []byte("x\n"), 0o644))

	res, err := Record(Request{
		Kind:        attribution.KindHuman,
		EditedPaths: []string{"vendor.txt"},
		IgnoreMatch: func(path string) bool { return path == "vendor.txt" },
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CheckpointsWritten)
}
