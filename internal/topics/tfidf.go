package topics

import (
	"math"
)

// TFIDF re-weights bag-of-words vectors by inverse document frequency so
// ubiquitous terms stop dominating the topic model.
type TFIDF struct {
	IDF []float64 `json:"idf"`
}

// FitTFIDF computes per-term IDF weights over a bag-of-words corpus.
func FitTFIDF(corpus [][]TermCount, vocabSize int) *TFIDF {
	docFreq := make([]int, vocabSize)
	for _, doc := range corpus {
		for _, tc := range doc {
			docFreq[tc.ID]++
		}
	}

	idf := make([]float64, vocabSize)
	total := float64(len(corpus))
	for id, df := range docFreq {
		if df > 0 {
			idf[id] = math.Log2(total / float64(df))
		}
	}
	return &TFIDF{IDF: idf}
}

// Transform re-weights one bag-of-words vector and normalizes it to unit
// length. Terms with zero IDF drop out.
func (t *TFIDF) Transform(bow []TermCount) []TermCount {
	weighted := make([]TermCount, 0, len(bow))
	var norm float64
	for _, tc := range bow {
		if tc.ID >= len(t.IDF) || t.IDF[tc.ID] == 0 {
			continue
		}
		w := tc.Count * t.IDF[tc.ID]
		weighted = append(weighted, TermCount{ID: tc.ID, Count: w})
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range weighted {
			weighted[i].Count /= norm
		}
	}
	return weighted
}
