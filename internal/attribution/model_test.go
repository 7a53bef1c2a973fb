package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSortsAndFusesAdjacentSameAuthor(t *testing.T) {
	in := []LineRange{
		{Start: 5, End: 6, Author: "promptA"},
		{Start: 1, End: 3, Author: "promptA"},
		{Start: 4, End: 4, Author: "promptA"},
	}
	out := Canonicalize(in)
	require.Len(t, out, 1)
	assert.Equal(t, LineRange{Start: 1, End: 6, Author: "promptA"}, out[0])
}

func TestCanonicalizeKeepsDistinctAuthorsSeparate(t *testing.T) {
	in := []LineRange{
		{Start: 1, End: 2, Author: HumanAuthor},
		{Start: 3, End: 5, Author: "promptA"},
	}
	out := Canonicalize(in)
	require.Len(t, out, 2)
	assert.Equal(t, "human", out[0].Author)
	assert.Equal(t, "promptA", out[1].Author)
}

func TestCanonicalizeOverlapLaterAuthorWins(t *testing.T) {
	// Earlier overlay: lines 1-5 human. Later overlay: lines 3-3 AI,
	// entirely contained inside the human range -- both the leading and
	// trailing human remainder must survive the override (scenario 2 from
	// spec.md §8: "the overlapping lines are re-attributed to the later
	// editor; non-overlapping lines retain their prior attribution").
	in := []LineRange{
		{Start: 1, End: 5, Author: HumanAuthor},
		{Start: 3, End: 3, Author: "promptA"},
	}
	out := Canonicalize(in)
	require.Len(t, out, 3)
	assert.Equal(t, LineRange{Start: 1, End: 2, Author: HumanAuthor}, out[0])
	assert.Equal(t, LineRange{Start: 3, End: 3, Author: "promptA"}, out[1])
	assert.Equal(t, LineRange{Start: 4, End: 5, Author: HumanAuthor}, out[2])
}

func TestCanonicalizeOverlapWinnerChosenByInputOrderNotStart(t *testing.T) {
	// Earlier overlay: lines 5-15 AI. Later overlay: lines 1-10 human,
	// whose Start is lower than the range it partially overrides. The
	// later range must still win on the overlap (lines 5-10), regardless
	// of the sort position its lower Start would otherwise give it.
	in := []LineRange{
		{Start: 5, End: 15, Author: "promptA"},
		{Start: 1, End: 10, Author: HumanAuthor},
	}
	out := Canonicalize(in)
	require.Len(t, out, 2)
	assert.Equal(t, LineRange{Start: 1, End: 10, Author: HumanAuthor}, out[0])
	assert.Equal(t, LineRange{Start: 11, End: 15, Author: "promptA"}, out[1])
}

func TestCanonicalizeDropsEmptyRanges(t *testing.T) {
	in := []LineRange{{Start: 5, End: 3, Author: "x"}}
	assert.Nil(t, Canonicalize(in))
}

func TestFindAuthorDefaultsToHuman(t *testing.T) {
	ranges := []LineRange{{Start: 1, End: 2, Author: "promptA"}}
	assert.Equal(t, "promptA", FindAuthor(ranges, 2))
	assert.Equal(t, HumanAuthor, FindAuthor(ranges, 3))
}

func TestAuthorshipLogValidateCatchesMissingPrompt(t *testing.T) {
	log := NewAuthorshipLog("deadbeef", "0.1.0")
	log.Attestations = []FileAttribution{
		{Path: "a.go", Ranges: []LineRange{{Start: 1, End: 3, Author: "promptA"}}},
	}
	err := log.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promptA")
}

func TestAuthorshipLogValidatePassesWithMatchingPrompt(t *testing.T) {
	log := NewAuthorshipLog("deadbeef", "0.1.0")
	log.Attestations = []FileAttribution{
		{Path: "a.go", Ranges: []LineRange{{Start: 1, End: 3, Author: "promptA"}}},
	}
	log.Prompts["promptA"] = PromptRecord{PromptHash: "promptA"}
	assert.NoError(t, log.Validate())
}

func TestAuthorshipLogValidateAllowsUnknownSentinelWithoutPrompt(t *testing.T) {
	log := NewAuthorshipLog("deadbeef", "0.1.0")
	log.Attestations = []FileAttribution{
		{Path: "a.go", Ranges: []LineRange{{Start: 1, End: 1, Author: UnknownAuthor}}},
	}
	assert.NoError(t, log.Validate())
}

func TestCheckpointIsEmpty(t *testing.T) {
	assert.True(t, Checkpoint{}.IsEmpty())
	assert.False(t, Checkpoint{Files: []CheckpointFile{{Path: "a.go"}}}.IsEmpty())
}

func TestAIRangesExcludesHuman(t *testing.T) {
	ranges := []LineRange{
		{Start: 1, End: 2, Author: HumanAuthor},
		{Start: 3, End: 4, Author: "promptA"},
	}
	ai := AIRanges(ranges)
	require.Len(t, ai, 1)
	assert.Equal(t, "promptA", ai[0].Author)
}
