package calibrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-flux/ebisu"
)

func TestGroupRecordsEmpty(t *testing.T) {
	assert.Empty(t, GroupRecords(nil))
}

func TestGroupRecords(t *testing.T) {
	records := []Record{
		{FactID: "b", Seq: 2, Quiz: ebisu.Failed(3)},
		{FactID: "a", Seq: 1, Quiz: ebisu.Passed(1)},
		{FactID: "b", Seq: 1, Quiz: ebisu.Passed(2)},
		{FactID: "b", Seq: 3, Quiz: ebisu.Binomial(2, 3, 4)},
	}
	got := GroupRecords(records)

	require.Len(t, got, 2)
	assert.Equal(t, History{ebisu.Passed(1)}, got[0])
	assert.Equal(t, History{ebisu.Passed(2), ebisu.Failed(3), ebisu.Binomial(2, 3, 4)}, got[1])
}

func TestGroupRecordsStableSeq(t *testing.T) {
	records := []Record{
		{FactID: "a", Quiz: ebisu.Passed(1)},
		{FactID: "a", Quiz: ebisu.Failed(2)},
	}
	got := GroupRecords(records)
	require.Len(t, got, 1)
	assert.Equal(t, History{ebisu.Passed(1), ebisu.Failed(2)}, got[0])
}

func TestCountQuizzes(t *testing.T) {
	assert.Equal(t, 0, countQuizzes(nil))
	assert.Equal(t, 3, countQuizzes([]History{{ebisu.Passed(1)}, {}, {ebisu.Passed(1), ebisu.Failed(1)}}))
}

func TestTruncate(t *testing.T) {
	hs := []History{{ebisu.Passed(1), ebisu.Passed(2), ebisu.Passed(3)}, {ebisu.Failed(1)}}

	got := truncate(hs, 2)
	assert.Len(t, got[0], 2)
	assert.Len(t, got[1], 1)
	assert.Len(t, hs[0], 3, "input must not be modified")

	assert.Equal(t, hs, truncate(hs, 0))
}
