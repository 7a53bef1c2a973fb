package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/checkpointrec"
)

func TestDiffCommandNoPendingCheckpoints(t *testing.T) {
	initCLITestRepo(t)

	var out bytes.Buffer
	cmd := newDiffCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "no pending checkpoints") {
		t.Fatalf("expected 'no pending checkpoints', got: %s", out.String())
	}
}

func TestDiffCommandReportsAIRanges(t *testing.T) {
	dir := initCLITestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\nc\n"), 0o644))

	_, err := checkpointrec.Record(checkpointrec.Request{
		Kind:        attribution.KindAIAgent,
		AgentID:     &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Transcript:  "write new.txt",
		EditedPaths: []string{"new.txt"},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := newDiffCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "new.txt") {
		t.Fatalf("expected new.txt to appear in diff output, got: %s", out.String())
	}
}

func TestDiffCommandJSON(t *testing.T) {
	initCLITestRepo(t)

	var out bytes.Buffer
	cmd := newDiffCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())

	if strings.TrimSpace(out.String()) != "{}" {
		t.Fatalf("expected empty JSON object for no pending checkpoints, got: %s", out.String())
	}
}
