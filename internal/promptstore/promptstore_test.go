package promptstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertThenGetRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prompts.jsonl"))
	require.NoError(t, err)

	rec := attribution.PromptRecord{PromptHash: "abc", FirstMessage: "do the thing", AcceptedLines: 3}
	require.NoError(t, s.Upsert("abc", rec))

	got, ok := s.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "do the thing", got.FirstMessage)
	assert.Equal(t, 3, got.AcceptedLines)
}

func TestUpsertFreshestWins(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prompts.jsonl"))
	require.NoError(t, err)

	require.NoError(t, s.Upsert("abc", attribution.PromptRecord{AcceptedLines: 1}))
	require.NoError(t, s.Upsert("abc", attribution.PromptRecord{AcceptedLines: 5}))

	got, ok := s.Get("abc")
	require.True(t, ok)
	assert.Equal(t, 5, got.AcceptedLines)
}

func TestReplaySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.jsonl")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert("abc", attribution.PromptRecord{AcceptedLines: 7}))

	s2, err := Open(path)
	require.NoError(t, err)
	got, ok := s2.Get("abc")
	require.True(t, ok)
	assert.Equal(t, 7, got.AcceptedLines)
}

func TestReplayToleratesCorruptTrailingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.jsonl")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert("abc", attribution.PromptRecord{AcceptedLines: 1}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, _ = f.WriteString(`{"prompt_hash":"xyz","record":{`)
	require.NoError(t, f.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	got, ok := s2.Get("abc")
	require.True(t, ok)
	assert.Equal(t, 1, got.AcceptedLines)
	_, ok = s2.Get("xyz")
	assert.False(t, ok)
}

func TestUpsertBatchIsAllOrNothingOnSuccess(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prompts.jsonl"))
	require.NoError(t, err)

	require.NoError(t, s.UpsertBatch(map[string]attribution.PromptRecord{
		"a": {AcceptedLines: 1},
		"b": {AcceptedLines: 2},
	}))

	_, ok := s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("b")
	assert.True(t, ok)
}

func TestEnricherDelegatesToGet(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "prompts.jsonl"))
	require.NoError(t, err)
	require.NoError(t, s.Upsert("abc", attribution.PromptRecord{AcceptedLines: 9}))

	enrich := s.Enricher()
	rec, ok := enrich("abc")
	require.True(t, ok)
	assert.Equal(t, 9, rec.AcceptedLines)
}
