package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackendStoreLoadClearRoundTrip(t *testing.T) {
	b := &FileBackend{Dir: t.TempDir(), AppID: "gitai-test"}

	_, ok, err := b.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Store("s3cr3t"))

	value, ok, err := b.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s3cr3t", value)

	require.NoError(t, b.Clear())
	_, ok, err = b.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileBackendClearOnEmptyIsNotError(t *testing.T) {
	b := &FileBackend{Dir: t.TempDir(), AppID: "gitai-test"}
	assert.NoError(t, b.Clear())
}

func TestFileBackendName(t *testing.T) {
	b := &FileBackend{}
	assert.Equal(t, "file", b.Name())
}
