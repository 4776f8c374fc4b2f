package rank

import (
	"testing"
	"time"
)

func TestImportanceScoresEmptyInput(t *testing.T) {
	if got := ImportanceScores(nil); len(got) != 0 {
		t.Fatalf("expected no scores for empty input, got %v", got)
	}
}

func TestImportanceScoresRange(t *testing.T) {
	docs := []Doc{
		{Text: "neural networks dominate machine learning benchmarks"},
		{Text: "machine learning models improve with neural training"},
		{Text: "stock prices fell sharply today"},
		{Text: ""},
	}
	scores := ImportanceScores(docs)
	if len(scores) != len(docs) {
		t.Fatalf("expected %d scores, got %d", len(docs), len(scores))
	}
	for i, s := range scores {
		if s < 0 || s > 1 {
			t.Fatalf("score %d = %f out of [0,1]", i, s)
		}
	}
	// An empty document contributes nothing and must land at the minimum.
	for i := 0; i < 3; i++ {
		if scores[3] > scores[i] {
			t.Fatalf("empty doc scored %f above doc %d (%f)", scores[3], i, scores[i])
		}
	}
}

func TestImportanceScoresDominantTermsWin(t *testing.T) {
	// Two docs share the corpus-dominant vocabulary; the longer one that
	// repeats those terms should not score below the off-topic outlier.
	docs := []Doc{
		{Text: "transformer attention transformer attention models scale transformer attention"},
		{Text: "transformer attention models"},
		{Text: "gardening tips for spring"},
	}
	scores := ImportanceScores(docs)
	if scores[0] < scores[2] {
		t.Fatalf("dominant-term doc scored %f below outlier %f", scores[0], scores[2])
	}
}

func TestImportanceScoresDeterministic(t *testing.T) {
	docs := []Doc{
		{Text: "open source release of a vision model"},
		{Text: "new benchmark for language models"},
		{Text: "robotics lab ships manipulation dataset"},
	}
	first := ImportanceScores(docs)
	second := ImportanceScores(docs)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("score %d changed between runs: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestRankByImportanceRecencyBreaksTies(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	docs := []Doc{
		{Text: "same words here", Published: now.Add(-time.Hour)},
		{Text: "same words here", Published: now},
	}
	order := RankByImportance(docs)
	if len(order) != 2 {
		t.Fatalf("expected 2 indices, got %d", len(order))
	}
	if order[0] != 1 {
		t.Fatalf("expected newer doc first, got order %v", order)
	}
}

func TestRankByImportanceStable(t *testing.T) {
	docs := []Doc{
		{Text: "identical text"},
		{Text: "identical text"},
		{Text: "identical text"},
	}
	order := RankByImportance(docs)
	for i, idx := range order {
		if idx != i {
			t.Fatalf("equal docs must keep input order, got %v", order)
		}
	}
}

func TestMinMaxNormalizeConstant(t *testing.T) {
	scores := []float64{3, 3, 3}
	minMaxNormalize(scores)
	for i, s := range scores {
		if s != 0 {
			t.Fatalf("constant input should normalize to 0, got scores[%d]=%f", i, s)
		}
	}
}
