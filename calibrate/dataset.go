package calibrate

import (
	"sort"

	"github.com/sky-flux/ebisu"
)

// History is the ordered quiz sequence of one fact.
type History []ebisu.Quiz

// Record is one quiz as stored by an application: which fact, and where it
// falls in that fact's sequence.
type Record struct {
	FactID string     `json:"fact_id" yaml:"fact_id"`
	Seq    int        `json:"seq" yaml:"seq"`
	Quiz   ebisu.Quiz `json:"quiz" yaml:"quiz"`
}

// GroupRecords groups records by fact and orders each group by Seq.
// Records sharing a Seq keep their input order. Facts are returned sorted by
// ID so fitting is deterministic.
func GroupRecords(records []Record) []History {
	if len(records) == 0 {
		return nil
	}

	groups := make(map[string][]Record)
	for _, r := range records {
		groups[r.FactID] = append(groups[r.FactID], r)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]History, 0, len(ids))
	for _, id := range ids {
		recs := groups[id]
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Seq < recs[j].Seq })

		h := make(History, len(recs))
		for i, r := range recs {
			h[i] = r.Quiz
		}
		out = append(out, h)
	}
	return out
}

// countQuizzes returns the total number of quizzes across histories.
func countQuizzes(histories []History) int {
	n := 0
	for _, h := range histories {
		n += len(h)
	}
	return n
}

// truncate caps every history at maxLen quizzes. maxLen <= 0 keeps all.
func truncate(histories []History, maxLen int) []History {
	if maxLen <= 0 {
		return histories
	}
	out := make([]History, len(histories))
	for i, h := range histories {
		if len(h) > maxLen {
			h = h[:maxLen]
		}
		out[i] = h
	}
	return out
}
