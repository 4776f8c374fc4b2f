package rank

import (
	"math"
	"sort"
	"time"
)

// Doc is one candidate for heuristic importance scoring.
type Doc struct {
	Text      string
	Published time.Time
}

const minMaxEpsilon = 1e-8

// ImportanceScores computes a batch-relative relevance score in [0,1] per
// document. A document scores high when it is long and shares vocabulary with
// the batch's dominant terms; no external relevance labels are involved.
func ImportanceScores(docs []Doc) []float64 {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	x := tfidfMatrix(texts)
	width := 0
	if len(x) > 0 {
		width = len(x[0])
	}

	// Column-mean term importance, square-rooted to dampen dominance of the
	// most common terms.
	importance := make([]float64, width)
	for _, row := range x {
		for j, v := range row {
			importance[j] += v
		}
	}
	for j := range importance {
		importance[j] = math.Sqrt(importance[j] / float64(len(x)))
	}

	scores := make([]float64, len(docs))
	for i, row := range x {
		var length, dot float64
		for j, v := range row {
			length += v
			dot += v * importance[j]
		}
		scores[i] = length * dot
	}

	minMaxNormalize(scores)
	return scores
}

// RankByImportance returns candidate indices in rank order: importance score
// descending, then newer publication time, then original fetch order.
func RankByImportance(docs []Doc) []int {
	scores := ImportanceScores(docs)
	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		if !docs[i].Published.Equal(docs[j].Published) {
			return docs[i].Published.After(docs[j].Published)
		}
		return i < j
	})
	return order
}

func minMaxNormalize(scores []float64) {
	if len(scores) == 0 {
		return
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	for i := range scores {
		scores[i] = (scores[i] - min) / (max - min + minMaxEpsilon)
	}
}
