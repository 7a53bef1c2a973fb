package rewrite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/git-ai-oss/gitai/internal/workinglog"
)

func openTestLog(t *testing.T) *workinglog.Log {
	t.Helper()
	log, err := workinglog.OpenDir(filepath.Join(t.TempDir(), "working-log"))
	require.NoError(t, err)
	return log
}

func TestReconstructWorkingLogUnionsLostAttributions(t *testing.T) {
	log := openTestLog(t)
	defer func() { _ = log.Destroy() }()

	log1 := attribution.NewAuthorshipLog("base", "1.0.0")
	log1.Attestations = []attribution.FileAttribution{
		{Path: "f.txt", Ranges: []attribution.LineRange{{Start: 1, End: 1, Author: "promptA"}}},
	}
	log1.Prompts["promptA"] = attribution.PromptRecord{PromptHash: "promptA"}

	log2 := attribution.NewAuthorshipLog("base", "1.0.0")
	log2.Attestations = []attribution.FileAttribution{
		{Path: "f.txt", Ranges: []attribution.LineRange{{Start: 2, End: 2, Author: "promptB"}}},
	}
	log2.Prompts["promptB"] = attribution.PromptRecord{PromptHash: "promptB"}

	require.NoError(t, ReconstructWorkingLog(log, []*attribution.AuthorshipLog{log1, log2}))

	initial, err := log.Initial()
	require.NoError(t, err)
	require.NotNil(t, initial)
	require.Contains(t, initial.Files, "f.txt")
	assert.Len(t, initial.Files["f.txt"].Ranges, 2)
	assert.Contains(t, initial.Prompts, "promptA")
	assert.Contains(t, initial.Prompts, "promptB")
}
