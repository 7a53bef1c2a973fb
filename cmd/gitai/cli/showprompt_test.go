package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/gitrepo"
	"github.com/git-ai-oss/gitai/internal/notes"
)

func attachTestNote(t *testing.T, hex, promptHash string) {
	t.Helper()
	log := &attribution.AuthorshipLog{
		SchemaVersion: "1",
		BaseCommitSHA: hex,
		Prompts: map[string]attribution.PromptRecord{
			promptHash: {
				PromptHash:      promptHash,
				FirstMessage:    "write the thing",
				Messages:        []string{"write the thing"},
				AgentID:         attribution.AgentID{Tool: "claude-code", Model: "opus"},
				TotalLinesAdded: 3,
			},
		},
	}
	require.NoError(t, notes.Attach(hex, log))
}

func TestShowPromptCommandFindsOccurrence(t *testing.T) {
	initCLITestRepo(t)
	repo, err := gitrepo.Open()
	require.NoError(t, err)
	hex, err := gitrepo.HeadHex(repo)
	require.NoError(t, err)
	attachTestNote(t, hex, "hash-1")

	var out bytes.Buffer
	cmd := newShowPromptCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"hash-1"})
	require.NoError(t, cmd.Execute())

	if !strings.Contains(out.String(), "write the thing") {
		t.Fatalf("expected prompt text in output, got: %s", out.String())
	}
	if !strings.Contains(out.String(), "claude-code/opus") {
		t.Fatalf("expected tool/model line, got: %s", out.String())
	}
}

func TestShowPromptCommandUnknownHash(t *testing.T) {
	initCLITestRepo(t)

	var out, errOut bytes.Buffer
	cmd := newShowPromptCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"missing-hash"})
	require.NoError(t, cmd.Execute())

	if !strings.Contains(errOut.String(), "no commit references prompt") {
		t.Fatalf("expected a not-found message, got stderr: %s", errOut.String())
	}
}
