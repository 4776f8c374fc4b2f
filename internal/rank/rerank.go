package rank

import (
	"sort"
	"time"
)

// Candidate is one item for classifier-based reranking. Score and Citations
// are the source-native popularity signals the pseudo-labels derive from.
type Candidate struct {
	Text      string
	Published time.Time
	Score     float64
	Citations float64
}

const minRerankBatch = 4

// Rerank orders candidates by textual similarity to what the batch's own
// popularity signals already consider important: a binary pseudo-label is
// derived per candidate by thresholding (score + 0.1*citations) at the batch
// median, a linear classifier is fit on that labeling, and the signed margin
// becomes the rank score. Batches too small or degenerate to fit fall back to
// heuristic importance ranking. The result is a total order over indices.
func Rerank(cands []Candidate) []int {
	if len(cands) < minRerankBatch {
		return RankByImportance(importanceDocs(cands))
	}

	texts := make([]string, len(cands))
	for i, c := range cands {
		texts[i] = c.Text
	}
	x := tfidfMatrix(texts)

	y := make([]float64, len(cands))
	for i, c := range cands {
		y[i] = c.Score + 0.1*c.Citations
	}
	minMaxNormalize(y)

	med := median(y)
	labels := make([]bool, len(y))
	for i, v := range y {
		labels[i] = v > med
	}

	m := fitLinear(x, labels)
	if m == nil {
		// All one label: the popularity signal carries no contrast.
		return RankByImportance(importanceDocs(cands))
	}

	margins := m.decision(x)
	order := make([]int, len(cands))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if margins[i] != margins[j] {
			return margins[i] > margins[j]
		}
		return i < j
	})
	return order
}

func importanceDocs(cands []Candidate) []Doc {
	docs := make([]Doc, len(cands))
	for i, c := range cands {
		docs[i] = Doc{Text: c.Text, Published: c.Published}
	}
	return docs
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
