package workinglog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	dir := t.TempDir()
	return &Log{dir: dir, lock: newLock(filepath.Join(dir, "lock"))}
}

func TestAppendSkipsEmptyCheckpoint(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.Append(attribution.Checkpoint{}))

	_, err := os.Stat(log.checkpointsPath())
	assert.True(t, os.IsNotExist(err))
}

func TestAppendAndReadRoundTrip(t *testing.T) {
	log := newTestLog(t)
	cp := attribution.Checkpoint{
		Kind: attribution.KindHuman,
		Files: []attribution.CheckpointFile{
			{Path: "a.go", ContentHashAfter: "deadbeef"},
		},
	}
	require.NoError(t, log.Append(cp))
	require.NoError(t, log.Append(cp))

	got, err := log.Checkpoints()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.go", got[0].Files[0].Path)
}

func TestAppendTolerantOfTrailingGarbage(t *testing.T) {
	log := newTestLog(t)
	cp := attribution.Checkpoint{
		Kind:  attribution.KindHuman,
		Files: []attribution.CheckpointFile{{Path: "a.go"}},
	}
	require.NoError(t, log.Append(cp))

	f, err := os.OpenFile(log.checkpointsPath(), os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, _ = f.WriteString(`{"kind":"human","files":[{"path":`) // truncated garbage, no newline
	require.NoError(t, f.Close())

	got, err := log.Checkpoints()
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestInitialReadWriteRoundTrip(t *testing.T) {
	log := newTestLog(t)

	none, err := log.Initial()
	require.NoError(t, err)
	assert.Nil(t, none)

	init := &attribution.InitialAttributions{
		Files: map[string]attribution.FileAttribution{
			"a.go": {Path: "a.go", Ranges: []attribution.LineRange{{Start: 1, End: 2, Author: "promptA"}}},
		},
		Prompts: map[string]attribution.PromptRecord{
			"promptA": {PromptHash: "promptA"},
		},
	}
	require.NoError(t, log.WriteInitial(init))

	got, err := log.Initial()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, init.Files, got.Files)
}

func TestContentCachePutIsIdempotentAndReadable(t *testing.T) {
	log := newTestLog(t)
	cache := log.Cache()

	hash1, err := cache.Put("hello world")
	require.NoError(t, err)
	hash2, err := cache.Put("hello world")
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)

	content, ok := cache.Content(hash1)
	require.True(t, ok)
	assert.Equal(t, "hello world", content)
}

func TestContentCacheEmptyHashIsNewFileSentinel(t *testing.T) {
	log := newTestLog(t)
	content, ok := log.Cache().Content("")
	assert.True(t, ok)
	assert.Equal(t, "", content)
}

func TestLockStealsAbandonedLock(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "lock")

	// Simulate an abandoned lock from a long-dead PID.
	require.NoError(t, os.WriteFile(lockPath, []byte("999999999\n1\n"), 0o600))

	lock := newLock(lockPath)
	require.NoError(t, lock.Acquire(time.Second))
	require.NoError(t, lock.Release())
}

func TestLockAcquireReleaseRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := newLock(filepath.Join(dir, "lock"))

	require.NoError(t, lock.Acquire(time.Second))
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Acquire(time.Second))
	require.NoError(t, lock.Release())
}
