package genericjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
)

func TestRunKnownTool(t *testing.T) {
	p := &Preset{}
	out, err := p.Run([]byte(`{"tool":"cursor","model":"gpt-5","session_id":"s1","edited_files":["a.go"]}`))
	require.NoError(t, err)
	assert.Equal(t, "cursor", out.AgentID.Tool)
	assert.Equal(t, []string{"a.go"}, out.EditedFilepaths)
}

func TestRunMissingToolFallsBackToUnknown(t *testing.T) {
	p := &Preset{}
	out, err := p.Run([]byte(`{"session_id":"s1"}`))
	require.NoError(t, err)
	assert.Equal(t, attribution.UnknownAuthor, out.AgentID.Tool)
}
