package telemetry

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCommandQueuesEvent(t *testing.T) {
	c := NewClient("machine-1", "")
	c.TrackCommand("gitai blame", "claude-code", []string{"json"})

	events := c.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "cli_command_executed", events[0].Name)
	assert.Equal(t, "gitai blame", events[0].Properties["command"])
}

func TestCloseFlushesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	c := NewClient("machine-1", path)
	c.TrackCommand("gitai stats", "", nil)
	c.TrackLatencyViolation("post-command-hook", 0, 0)

	require.NoError(t, c.Close())
	assert.Empty(t, c.Events())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var lines int
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestCloseWithNoPathIsNoOp(t *testing.T) {
	c := NewClient("machine-1", "")
	c.TrackCommand("gitai status", "", nil)
	require.NoError(t, c.Close())
	assert.Empty(t, c.Events())
}
