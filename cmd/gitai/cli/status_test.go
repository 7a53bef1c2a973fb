package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/checkpointrec"
	"github.com/git-ai-oss/gitai/internal/paths"
)

func initCLITestRepo(t *testing.T) string {
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

func TestStatusCommandNoPendingCheckpoints(t *testing.T) {
	initCLITestRepo(t)

	var out bytes.Buffer
	cmd := newStatusCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "pending checkpoints: 0") {
		t.Fatalf("expected zero pending checkpoints, got: %s", out.String())
	}
}

func TestStatusCommandReportsPendingCheckpoint(t *testing.T) {
	dir := initCLITestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\n"), 0o644))

	_, err := checkpointrec.Record(checkpointrec.Request{
		Kind:        attribution.KindAIAgent,
		AgentID:     &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Transcript:  "write new.txt",
		EditedPaths: []string{"new.txt"},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := newStatusCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "pending checkpoints: 1") {
		t.Fatalf("expected one pending checkpoint, got: %s", out.String())
	}
}

func TestStatusCommandJSON(t *testing.T) {
	initCLITestRepo(t)

	var out bytes.Buffer
	cmd := newStatusCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), `"pending_checkpoints": 0`) {
		t.Fatalf("expected JSON output with pending_checkpoints, got: %s", out.String())
	}
}
