package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(day string, kg float64) WeightEntry {
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return WeightEntry{Weight: kg, Timestamp: ts}
}

func TestSummarizeProgress_TooFewEntries(t *testing.T) {
	_, ok := SummarizeProgress(nil)
	assert.False(t, ok)

	_, ok = SummarizeProgress([]WeightEntry{entry("2026-01-01", 80)})
	assert.False(t, ok)
}

func TestSummarizeProgress_Scenario(t *testing.T) {
	// T1 < T2 < T3 with weights 80, 78, 76, delivered unordered
	summary, ok := SummarizeProgress([]WeightEntry{
		entry("2026-02-01", 78),
		entry("2026-03-01", 76),
		entry("2026-01-01", 80),
	})
	require.True(t, ok)

	assert.Equal(t, 80.0, summary.Initial)
	assert.Equal(t, 76.0, summary.Latest)
	assert.Equal(t, -4.0, summary.Change)
	assert.Equal(t, 3, summary.Entries)
	assert.Equal(t, "initial 80, latest 76, change -4", summary.String())
}

func TestSummarizeProgress_FractionalWeights(t *testing.T) {
	summary, ok := SummarizeProgress([]WeightEntry{
		entry("2026-01-01", 80.5),
		entry("2026-01-15", 79.2),
	})
	require.True(t, ok)
	assert.Equal(t, -1.3, summary.Change)
	assert.Equal(t, "initial 80.5, latest 79.2, change -1.3", summary.String())
}

func TestSummarizeProgress_DoesNotMutateInput(t *testing.T) {
	entries := []WeightEntry{
		entry("2026-02-01", 78),
		entry("2026-01-01", 80),
	}
	_, ok := SummarizeProgress(entries)
	require.True(t, ok)
	assert.Equal(t, 78.0, entries[0].Weight) // caller's order untouched
}

func TestSortWeightsAscending(t *testing.T) {
	entries := []WeightEntry{
		entry("2026-03-01", 76),
		entry("2026-01-01", 80),
		entry("2026-02-01", 78),
	}
	SortWeightsAscending(entries)
	assert.Equal(t, 80.0, entries[0].Weight)
	assert.Equal(t, 78.0, entries[1].Weight)
	assert.Equal(t, 76.0, entries[2].Weight)
}
