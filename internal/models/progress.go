package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ProgressSummary condenses a weight history into its endpoints. Derived
// from entries sorted ascending by timestamp.
type ProgressSummary struct {
	Initial float64 `json:"initial"`
	Latest  float64 `json:"latest"`
	Change  float64 `json:"change"`
	Entries int     `json:"entries"`
}

// SortWeightsAscending orders entries oldest-first by timestamp. The sort is
// stable so entries with equal timestamps keep their delivery order.
func SortWeightsAscending(entries []WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

// SummarizeProgress computes the progress summary over a weight history.
// Returns ok=false when fewer than 2 entries exist, since no trend can be
// derived from a single measurement.
func SummarizeProgress(entries []WeightEntry) (ProgressSummary, bool) {
	if len(entries) < 2 {
		return ProgressSummary{}, false
	}
	sorted := make([]WeightEntry, len(entries))
	copy(sorted, entries)
	SortWeightsAscending(sorted)

	initial := sorted[0].Weight
	latest := sorted[len(sorted)-1].Weight
	return ProgressSummary{
		Initial: initial,
		Latest:  latest,
		// Rounded to 0.1 kg so float subtraction noise never reaches
		// the user.
		Change:  math.Round((latest-initial)*10) / 10,
		Entries: len(sorted),
	}, true
}

// String renders the summary as "initial 80, latest 76, change -4".
func (p ProgressSummary) String() string {
	return fmt.Sprintf("initial %s, latest %s, change %s",
		formatWeight(p.Initial), formatWeight(p.Latest), formatWeight(p.Change))
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
