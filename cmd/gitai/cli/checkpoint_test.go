package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckpointCommandRecordsFromHookInput(t *testing.T) {
	dir := initCLITestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("a\nb\n"), 0o644))

	payload := `{"tool":"generic-tool","session_id":"conv1","prompt":"write new.txt","edited_files":["new.txt"]}`

	var out bytes.Buffer
	cmd := newCheckpointCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generic-json", "--hook-input", payload})
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "checkpoints=1") {
		t.Fatalf("expected one checkpoint recorded, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "lines_added=2") {
		t.Fatalf("expected two added lines, got: %s", out.String())
	}
}

func TestCheckpointCommandUnknownPresetIsNonFatal(t *testing.T) {
	initCLITestRepo(t)

	var out, errOut bytes.Buffer
	cmd := newCheckpointCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"no-such-preset", "--hook-input", "{}"})
	require.NoError(t, cmd.Execute())

	if !strings.Contains(errOut.String(), "checkpoint:") {
		t.Fatalf("expected a checkpoint error message on stderr, got: %s", errOut.String())
	}
}

func TestCheckpointCommandNoEditedFilesIsNoOp(t *testing.T) {
	initCLITestRepo(t)

	var out bytes.Buffer
	cmd := newCheckpointCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"generic-json", "--hook-input", `{"tool":"generic-tool","session_id":"conv1"}`})
	require.NoError(t, cmd.Execute())

	if out.String() != "" {
		t.Fatalf("expected no output for a hook with no edited files, got: %s", out.String())
	}
}
