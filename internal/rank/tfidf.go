package rank

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

const maxFeatures = 1000

// stopWords is a compact english stop list; enough to keep glue words from
// dominating batch-relative term weights.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"he": {}, "her": {}, "his": {}, "if": {}, "in": {}, "into": {},
	"is": {}, "it": {}, "its": {}, "new": {}, "no": {}, "not": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "she": {}, "so": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {},
	"these": {}, "they": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "which": {}, "while": {},
	"who": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// terms expands tokens into unigrams plus bigrams.
func terms(tokens []string) []string {
	out := make([]string, 0, 2*len(tokens))
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// tfidfMatrix builds dense, l2-normalized term-weight rows over the batch
// itself. The vocabulary is capped to the most frequent terms, ties broken
// alphabetically so the matrix is deterministic.
func tfidfMatrix(texts []string) [][]float64 {
	n := len(texts)
	docTerms := make([][]string, n)
	df := make(map[string]int)
	for i, text := range texts {
		docTerms[i] = terms(tokenize(text))
		seen := make(map[string]struct{})
		for _, t := range docTerms[i] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	vocabTerms := make([]string, 0, len(df))
	for t := range df {
		vocabTerms = append(vocabTerms, t)
	}
	sort.Slice(vocabTerms, func(i, j int) bool {
		if df[vocabTerms[i]] != df[vocabTerms[j]] {
			return df[vocabTerms[i]] > df[vocabTerms[j]]
		}
		return vocabTerms[i] < vocabTerms[j]
	})
	if len(vocabTerms) > maxFeatures {
		vocabTerms = vocabTerms[:maxFeatures]
	}

	vocab := make(map[string]int, len(vocabTerms))
	idf := make([]float64, len(vocabTerms))
	for i, t := range vocabTerms {
		vocab[t] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	rows := make([][]float64, n)
	for i := range texts {
		row := make([]float64, len(vocabTerms))
		for _, t := range docTerms[i] {
			if j, ok := vocab[t]; ok {
				row[j] += idf[j]
			}
		}
		l2Normalize(row)
		rows[i] = row
	}
	return rows
}

func l2Normalize(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}
