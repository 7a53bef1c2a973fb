package serialize

import (
	"testing"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() *attribution.AuthorshipLog {
	log := attribution.NewAuthorshipLog("deadbeefcafe", "0.1.0")
	log.Attestations = []attribution.FileAttribution{
		{
			Path: "main.go",
			Ranges: []attribution.LineRange{
				{Start: 1, End: 3, Author: "promptA"},
				{Start: 4, End: 5, Author: attribution.HumanAuthor},
			},
		},
	}
	log.Prompts["promptA"] = attribution.PromptRecord{
		PromptHash:      "promptA",
		FirstMessage:    "add a hello world",
		TotalLinesAdded: 3,
		AcceptedLines:   3,
	}
	return log
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	log := sampleLog()

	data, err := Marshal(log)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, log.SchemaVersion, parsed.SchemaVersion)
	assert.Equal(t, log.BaseCommitSHA, parsed.BaseCommitSHA)
	assert.Equal(t, log.Attestations, parsed.Attestations)
	assert.Equal(t, log.Prompts, parsed.Prompts)
}

func TestMarshalIsByteStable(t *testing.T) {
	log := sampleLog()

	first, err := Marshal(log)
	require.NoError(t, err)
	second, err := Marshal(log)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAttestedPathsPartialParseDoesNotNeedMetadata(t *testing.T) {
	log := sampleLog()
	data, err := Marshal(log)
	require.NoError(t, err)

	paths, err := AttestedPaths(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestUnmarshalRejectsMissingDivider(t *testing.T) {
	_, err := Unmarshal([]byte("no divider here"))
	assert.Error(t, err)
}

func TestFormatRangeCompactSingleLineVsRange(t *testing.T) {
	assert.Equal(t, "5", formatRange(attribution.LineRange{Start: 5, End: 5}))
	assert.Equal(t, "[1,3]", formatRange(attribution.LineRange{Start: 1, End: 3}))
}
