package tabwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/attribution"
)

func TestWatcherDetectsWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := New("copilot", []string{dir})
	require.NoError(t, err)
	defer w.Close()

	target := filepath.Join(dir, "completion.go")
	require.NoError(t, os.WriteFile(target, []byte("package x\n"), 0o644))

	select {
	case ev := <-w.Events():
		assert.Equal(t, "copilot", ev.Tool)
		out := ev.ToOutput()
		assert.Equal(t, attribution.KindAITab, out.Kind)
		assert.Contains(t, out.EditedFilepaths, filepath.Clean(target))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file-write event")
	}
}

func TestEventToOutputSetsConversationID(t *testing.T) {
	ev := Event{Path: "a.go", Tool: "cursor-tab", Timestamp: time.Unix(0, 0)}
	out := ev.ToOutput()
	assert.NotEmpty(t, out.AgentID.ConversationID)
	assert.Equal(t, "cursor-tab", out.AgentID.Tool)
}
