package topics

import (
	"math/rand"
	"sort"
)

// Default LDA hyperparameters.
const (
	DefaultNumTopics = 5
	DefaultPasses    = 25
	DefaultSeed      = 42

	inferIterations = 20
)

// LDA is a fixed-K generative topic model. Training uses collapsed Gibbs
// sampling over the bag-of-words corpus; inference folds a new document
// into the fitted topic-term distributions deterministically.
type LDA struct {
	NumTopics int         `json:"num_topics"`
	VocabSize int         `json:"vocab_size"`
	Alpha     float64     `json:"alpha"`
	Beta      float64     `json:"beta"`
	Phi       [][]float64 `json:"phi"` // topic -> term probability
}

// TrainLDA fits an LDA model with the given topic count over a bag-of-words
// corpus. The seed makes retraining on an unchanged corpus reproducible.
func TrainLDA(corpus [][]TermCount, vocabSize, numTopics, passes int, seed int64) *LDA {
	model := &LDA{
		NumTopics: numTopics,
		VocabSize: vocabSize,
		Alpha:     1.0 / float64(numTopics),
		Beta:      0.01,
	}

	// Expand bags into flat token streams for sampling.
	docs := make([][]int, len(corpus))
	for d, bow := range corpus {
		for _, tc := range bow {
			for i := 0; i < int(tc.Count); i++ {
				docs[d] = append(docs[d], tc.ID)
			}
		}
	}

	rng := rand.New(rand.NewSource(seed))

	topicTerm := make([][]float64, numTopics)
	for k := range topicTerm {
		topicTerm[k] = make([]float64, vocabSize)
	}
	topicTotal := make([]float64, numTopics)
	docTopic := make([][]float64, len(docs))
	assignments := make([][]int, len(docs))

	for d, doc := range docs {
		docTopic[d] = make([]float64, numTopics)
		assignments[d] = make([]int, len(doc))
		for i, w := range doc {
			k := rng.Intn(numTopics)
			assignments[d][i] = k
			topicTerm[k][w]++
			topicTotal[k]++
			docTopic[d][k]++
		}
	}

	weights := make([]float64, numTopics)
	betaSum := model.Beta * float64(vocabSize)
	for pass := 0; pass < passes; pass++ {
		for d, doc := range docs {
			for i, w := range doc {
				old := assignments[d][i]
				topicTerm[old][w]--
				topicTotal[old]--
				docTopic[d][old]--

				var sum float64
				for k := 0; k < numTopics; k++ {
					weights[k] = (docTopic[d][k] + model.Alpha) *
						(topicTerm[k][w] + model.Beta) / (topicTotal[k] + betaSum)
					sum += weights[k]
				}

				r := rng.Float64() * sum
				next := numTopics - 1
				for k := 0; k < numTopics; k++ {
					r -= weights[k]
					if r <= 0 {
						next = k
						break
					}
				}

				assignments[d][i] = next
				topicTerm[next][w]++
				topicTotal[next]++
				docTopic[d][next]++
			}
		}
	}

	model.Phi = make([][]float64, numTopics)
	for k := 0; k < numTopics; k++ {
		model.Phi[k] = make([]float64, vocabSize)
		for w := 0; w < vocabSize; w++ {
			model.Phi[k][w] = (topicTerm[k][w] + model.Beta) / (topicTotal[k] + betaSum)
		}
	}
	return model
}

// Infer returns the topic probability distribution for one (weighted)
// bag-of-words document. Deterministic: repeated calls on the same input
// give the same distribution.
func (m *LDA) Infer(bow []TermCount) []float64 {
	theta := make([]float64, m.NumTopics)
	for k := range theta {
		theta[k] = 1.0 / float64(m.NumTopics)
	}
	if len(bow) == 0 {
		return theta
	}

	next := make([]float64, m.NumTopics)
	for iter := 0; iter < inferIterations; iter++ {
		for k := range next {
			next[k] = m.Alpha
		}
		for _, tc := range bow {
			if tc.ID >= m.VocabSize {
				continue
			}
			var denom float64
			for k := 0; k < m.NumTopics; k++ {
				denom += theta[k] * m.Phi[k][tc.ID]
			}
			if denom == 0 {
				continue
			}
			for k := 0; k < m.NumTopics; k++ {
				next[k] += tc.Count * theta[k] * m.Phi[k][tc.ID] / denom
			}
		}

		var sum float64
		for _, v := range next {
			sum += v
		}
		for k := range theta {
			theta[k] = next[k] / sum
		}
	}
	return theta
}

// TopTerms returns the n highest-probability terms for a topic.
func (m *LDA) TopTerms(topic, n int, dict *Dictionary) []string {
	type termProb struct {
		id   int
		prob float64
	}
	terms := make([]termProb, m.VocabSize)
	for w := 0; w < m.VocabSize; w++ {
		terms[w] = termProb{id: w, prob: m.Phi[topic][w]}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].prob != terms[j].prob {
			return terms[i].prob > terms[j].prob
		}
		return terms[i].id < terms[j].id
	})

	out := []string{}
	for i := 0; i < n && i < len(terms); i++ {
		out = append(out, dict.ID2Token[terms[i].id])
	}
	return out
}

// ArgMax picks the highest-probability topic; ties break toward the lowest
// topic id so assignment is stable across runs.
func ArgMax(dist []float64) (int, float64) {
	best, bestProb := 0, -1.0
	for k, p := range dist {
		if p > bestProb {
			best, bestProb = k, p
		}
	}
	return best, bestProb
}
