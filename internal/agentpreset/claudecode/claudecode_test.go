package claudecode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
)

func TestRunUserPromptSubmitCarriesPromptText(t *testing.T) {
	p := &Preset{}
	out, err := p.Run([]byte(`{"hook_event_name":"UserPromptSubmit","session_id":"abc","prompt":"fix the bug"}`))
	require.NoError(t, err)
	assert.Equal(t, attribution.KindAIAgent, out.Kind)
	assert.Equal(t, "abc", out.AgentID.ConversationID)
	assert.Equal(t, "fix the bug", out.Transcript)
}

func TestRunMissingSessionIDGeneratesFallback(t *testing.T) {
	p := &Preset{}
	out, err := p.Run([]byte(`{"hook_event_name":"UserPromptSubmit","prompt":"hi"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, out.AgentID.ConversationID)
}

func TestRunStopExtractsEditedFilesFromTranscript(t *testing.T) {
	dir := t.TempDir()
	transcriptPath := filepath.Join(dir, "transcript.jsonl")
	content := `{"type":"user","message":{"content":"please edit main.go"}}
{"type":"assistant","message":{"model":"claude-sonnet-4","content":[{"type":"tool_use","name":"Edit","input":{"file_path":"main.go"}}]}}
`
	require.NoError(t, os.WriteFile(transcriptPath, []byte(content), 0o644))

	p := &Preset{}
	out, err := p.Run([]byte(`{"hook_event_name":"Stop","session_id":"s1","transcript_path":"` + transcriptPath + `"}`))
	require.NoError(t, err)
	require.Len(t, out.EditedFilepaths, 1)
	assert.Equal(t, "main.go", out.EditedFilepaths[0])
	assert.Equal(t, "please edit main.go", out.Transcript)
	assert.Equal(t, "claude-sonnet-4", out.AgentID.Model)
}

func TestRunInvalidJSONIsPresetError(t *testing.T) {
	p := &Preset{}
	_, err := p.Run([]byte(`not json`))
	require.Error(t, err)
}
