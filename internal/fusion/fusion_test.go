package fusion

import (
	"testing"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLookup map[string]string

func (m mapLookup) Content(hash string) (string, bool) {
	v, ok := m[hash]
	return v, ok
}

func withHash(lookup mapLookup, content string) (mapLookup, string) {
	hash := attribution.ContentHash([]byte(content))
	lookup[hash] = content
	return lookup, hash
}

func TestFuseAIInsertHumanCommit(t *testing.T) {
	lookup := mapLookup{}
	var hBefore, hAfter string
	lookup, hBefore = withHash(lookup, "")
	lookup, hAfter = withHash(lookup, "a\nb\nc\n")

	cp := attribution.Checkpoint{
		Kind:    attribution.KindAIAgent,
		AgentID: &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Files: []attribution.CheckpointFile{
			{Path: "new.txt", ContentHashBefore: hBefore, ContentHashAfter: hAfter},
		},
	}

	result := Fuse(Input{
		BaseCommitSHA:    "",
		Checkpoints:      []attribution.Checkpoint{cp},
		CommittedContent: map[string]string{"new.txt": "a\nb\nc\n"},
		Lookup:           lookup,
	})

	require.Len(t, result.AuthorshipLog.Attestations, 1)
	fa := result.AuthorshipLog.Attestations[0]
	assert.Equal(t, "new.txt", fa.Path)
	require.Len(t, fa.Ranges, 1)
	assert.Equal(t, 1, fa.Ranges[0].Start)
	assert.Equal(t, 3, fa.Ranges[0].End)

	promptHash := fa.Ranges[0].Author
	rec, ok := result.AuthorshipLog.Prompts[promptHash]
	require.True(t, ok)
	assert.Equal(t, 3, rec.AcceptedLines)
}

func TestFuseAIThenHumanOverride(t *testing.T) {
	lookup := mapLookup{}
	var hEmpty, hAIContent, hHumanContent string
	lookup, hEmpty = withHash(lookup, "")
	lookup, hAIContent = withHash(lookup, "a\nb\nc\nd\ne\n")
	lookup, hHumanContent = withHash(lookup, "a\nb\nX\nd\ne\n")

	aiCheckpoint := attribution.Checkpoint{
		Kind:    attribution.KindAIAgent,
		AgentID: &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Files: []attribution.CheckpointFile{
			{Path: "f.txt", ContentHashBefore: hEmpty, ContentHashAfter: hAIContent},
		},
	}
	humanCheckpoint := attribution.Checkpoint{
		Kind: attribution.KindHuman,
		Files: []attribution.CheckpointFile{
			{Path: "f.txt", ContentHashBefore: hAIContent, ContentHashAfter: hHumanContent},
		},
	}

	result := Fuse(Input{
		Checkpoints:      []attribution.Checkpoint{aiCheckpoint, humanCheckpoint},
		CommittedContent: map[string]string{"f.txt": "a\nb\nX\nd\ne\n"},
		Lookup:           lookup,
	})

	require.Len(t, result.AuthorshipLog.Attestations, 1)
	fa := result.AuthorshipLog.Attestations[0]
	require.Len(t, fa.Ranges, 2)
	assert.Equal(t, attribution.LineRange{Start: 1, End: 2, Author: fa.Ranges[0].Author}, fa.Ranges[0])
	assert.Equal(t, attribution.LineRange{Start: 4, End: 5, Author: fa.Ranges[1].Author}, fa.Ranges[1])
	assert.Equal(t, fa.Ranges[0].Author, fa.Ranges[1].Author)

	rec := result.AuthorshipLog.Prompts[fa.Ranges[0].Author]
	assert.Equal(t, 1, rec.OverriddenLines)
	assert.Equal(t, 4, rec.AcceptedLines)
}

func TestFuseNoCheckpointsYieldsEmptyAttestations(t *testing.T) {
	result := Fuse(Input{
		Checkpoints:      nil,
		CommittedContent: map[string]string{"f.txt": "a\nb\n"},
		Lookup:           mapLookup{},
	})
	assert.Empty(t, result.AuthorshipLog.Attestations)
}

func TestFuseUntouchedFileCarriesToInitialAttributions(t *testing.T) {
	lookup := mapLookup{}
	var hEmpty, hAfter string
	lookup, hEmpty = withHash(lookup, "")
	lookup, hAfter = withHash(lookup, "x\ny\n")

	cp := attribution.Checkpoint{
		Kind:    attribution.KindAIAgent,
		AgentID: &attribution.AgentID{Tool: "claude-code", ConversationID: "conv1"},
		Files: []attribution.CheckpointFile{
			{Path: "uncommitted.txt", ContentHashBefore: hEmpty, ContentHashAfter: hAfter},
		},
	}

	result := Fuse(Input{
		Checkpoints:      []attribution.Checkpoint{cp},
		CommittedContent: map[string]string{}, // nothing committed this round
		Lookup:           lookup,
	})

	assert.Empty(t, result.AuthorshipLog.Attestations)
	require.Contains(t, result.InitialAttributions.Files, "uncommitted.txt")
	assert.Len(t, result.InitialAttributions.Files["uncommitted.txt"].Ranges, 1)
}
