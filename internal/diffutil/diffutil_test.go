package diffutil

import (
	"testing"

	"github.com/git-ai-oss/gitai/internal/attribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineStatIdenticalContent(t *testing.T) {
	s := LineStat("a\nb\nc\n", "a\nb\nc\n")
	assert.Equal(t, Stat{Unchanged: 3}, s)
}

func TestLineStatPureInsert(t *testing.T) {
	s := LineStat("a\nb\n", "a\nb\nc\n")
	assert.Equal(t, 2, s.Unchanged)
	assert.Equal(t, 1, s.Added)
	assert.Equal(t, 0, s.Removed)
}

func TestLineStatEmptyBefore(t *testing.T) {
	s := LineStat("", "a\nb\nc\n")
	assert.Equal(t, 3, s.Added)
}

func TestIsBinaryDetectsNulByte(t *testing.T) {
	assert.True(t, IsBinary("abc\x00def"))
	assert.False(t, IsBinary("abc def"))
}

func TestProjectRangesShiftsOnInsertBeforeRange(t *testing.T) {
	before := "a\nb\nc\n"
	after := "x\na\nb\nc\n"
	hunks := LineDiff(before, after)

	prior := []attribution.LineRange{{Start: 1, End: 3, Author: "promptA"}}
	projected := ProjectRanges(hunks, prior)
	require.Len(t, projected, 1)
	assert.Equal(t, attribution.LineRange{Start: 2, End: 4, Author: "promptA"}, projected[0])

	inserted := InsertedRanges(hunks, "promptB")
	require.Len(t, inserted, 1)
	assert.Equal(t, attribution.LineRange{Start: 1, End: 1, Author: "promptB"}, inserted[0])
}

func TestProjectRangesDropsDeletedLines(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nc\n"
	hunks := LineDiff(before, after)

	prior := []attribution.LineRange{{Start: 1, End: 3, Author: "promptA"}}
	projected := ProjectRanges(hunks, prior)

	var total int
	for _, r := range projected {
		total += r.Len()
	}
	assert.Equal(t, 2, total)
}
