package giterrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindCorruptLog, "should stay nil", nil))
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(KindLockContention, "acquiring lock", base)

	assert.True(t, Is(err, KindLockContention))
	assert.False(t, Is(err, KindCorruptLog))
	assert.ErrorIs(t, err, base)
}

func TestAccumulatorCollectsAndReportsNil(t *testing.T) {
	acc := NewAccumulator()
	require.Nil(t, acc.ErrorOrNil())
	assert.Equal(t, 0, acc.Len())

	acc.Add(nil)
	assert.Equal(t, 0, acc.Len())

	acc.Add(New(KindMissingPrompt, "prompt abc123 not found"))
	acc.Add(New(KindCorruptLog, "bad line 4"))
	require.Equal(t, 2, acc.Len())

	err := acc.ErrorOrNil()
	require.Error(t, err)
	assert.True(t, Is(acc.merr.Errors[0], KindMissingPrompt))
}
