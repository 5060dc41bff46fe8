package topics

import (
	"math"
	"reflect"
	"testing"
)

func TestDictionaryFilterExtremes(t *testing.T) {
	docs := [][]string{}
	// "common" in every doc, "rare" in one, "mid" in half.
	for i := 0; i < 10; i++ {
		doc := []string{"common"}
		if i < 5 {
			doc = append(doc, "mid")
		}
		if i == 0 {
			doc = append(doc, "rare")
		}
		docs = append(docs, doc)
	}

	dict := NewDictionary(docs)
	if dict.NumDocs != 10 {
		t.Fatalf("NumDocs = %d", dict.NumDocs)
	}

	dict.FilterExtremes(5, 0.6)
	if dict.Size() != 1 {
		t.Fatalf("expected only 'mid' to survive, vocab = %v", dict.ID2Token)
	}
	if dict.ID2Token[0] != "mid" {
		t.Errorf("surviving term = %q, want mid", dict.ID2Token[0])
	}
}

func TestDictionaryBOW(t *testing.T) {
	dict := NewDictionary([][]string{{"alpha", "beta", "alpha"}})

	bow := dict.BOW([]string{"alpha", "alpha", "beta", "unknown"})
	wantIDs := []int{dict.Token2ID["alpha"], dict.Token2ID["beta"]}
	if len(bow) != 2 {
		t.Fatalf("bow = %v", bow)
	}
	gotIDs := []int{bow[0].ID, bow[1].ID}
	if bow[0].ID > bow[1].ID {
		t.Errorf("bow not sorted by id: %v", bow)
	}
	for _, want := range wantIDs {
		found := false
		for _, got := range gotIDs {
			if got == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing term id %d in %v", want, bow)
		}
	}
	for _, tc := range bow {
		if dict.ID2Token[tc.ID] == "alpha" && tc.Count != 2 {
			t.Errorf("alpha count = %v, want 2", tc.Count)
		}
	}
}

func TestTFIDFDropsUbiquitousTerms(t *testing.T) {
	// Term 0 in both docs (IDF 0), term 1 only in the first.
	corpus := [][]TermCount{
		{{ID: 0, Count: 1}, {ID: 1, Count: 2}},
		{{ID: 0, Count: 3}},
	}

	tfidf := FitTFIDF(corpus, 2)
	weighted := tfidf.Transform(corpus[0])
	if len(weighted) != 1 || weighted[0].ID != 1 {
		t.Fatalf("weighted = %v, want only term 1", weighted)
	}
	if math.Abs(weighted[0].Count-1.0) > 1e-9 {
		t.Errorf("unit-normalized weight = %v, want 1.0", weighted[0].Count)
	}
}

// twoThemeCorpus builds a corpus with two clearly separated vocabularies.
func twoThemeCorpus() ([][]TermCount, int) {
	docs := [][]string{}
	for i := 0; i < 8; i++ {
		docs = append(docs, []string{"market", "stock", "economy", "market"})
	}
	for i := 0; i < 8; i++ {
		docs = append(docs, []string{"match", "player", "goal", "match"})
	}

	dict := NewDictionary(docs)
	corpus := make([][]TermCount, len(docs))
	for i, doc := range docs {
		corpus[i] = dict.BOW(doc)
	}
	return corpus, dict.Size()
}

func TestTrainLDAIsDeterministic(t *testing.T) {
	corpus, vocab := twoThemeCorpus()

	a := TrainLDA(corpus, vocab, 2, 10, DefaultSeed)
	b := TrainLDA(corpus, vocab, 2, 10, DefaultSeed)
	if !reflect.DeepEqual(a.Phi, b.Phi) {
		t.Error("same seed should give identical models")
	}
}

func TestLDASeparatesThemes(t *testing.T) {
	corpus, vocab := twoThemeCorpus()
	model := TrainLDA(corpus, vocab, 2, 25, DefaultSeed)

	financeTopic, _ := ArgMax(model.Infer(corpus[0]))
	sportsTopic, _ := ArgMax(model.Infer(corpus[8]))
	if financeTopic == sportsTopic {
		t.Error("expected the two themes to land in different topics")
	}

	// Inference is deterministic.
	again, _ := ArgMax(model.Infer(corpus[0]))
	if again != financeTopic {
		t.Error("repeated inference changed the assigned topic")
	}
}

func TestInferEmptyDocumentIsUniform(t *testing.T) {
	corpus, vocab := twoThemeCorpus()
	model := TrainLDA(corpus, vocab, 2, 5, DefaultSeed)

	dist := model.Infer(nil)
	for _, p := range dist {
		if math.Abs(p-0.5) > 1e-9 {
			t.Errorf("empty doc distribution = %v, want uniform", dist)
		}
	}
}

func TestArgMaxTieBreaksToLowestID(t *testing.T) {
	id, prob := ArgMax([]float64{0.3, 0.4, 0.4})
	if id != 1 || prob != 0.4 {
		t.Errorf("ArgMax = (%d, %v), want (1, 0.4)", id, prob)
	}
}

func TestFitClustersFindsGroupsAndOutliers(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0}, {0.99, 0.05, 0}, {0.98, 0.1, 0}, {1, 0.02, 0},
		{0, 1, 0}, {0.05, 0.99, 0}, {0.1, 0.98, 0}, {0.02, 1, 0},
		{0, 0, 1}, // lone outlier
	}

	model, labels := FitClusters(vectors, DefaultClusterEps, DefaultClusterMinPts)
	if len(model.Centroids) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(model.Centroids))
	}
	if labels[8] != -1 {
		t.Errorf("lone vector should be an outlier, got label %d", labels[8])
	}
	if labels[0] == labels[4] {
		t.Error("the two groups should have distinct labels")
	}

	// Members of one group share a label.
	for i := 1; i < 4; i++ {
		if labels[i] != labels[0] {
			t.Errorf("vector %d label %d, want %d", i, labels[i], labels[0])
		}
	}
}

func TestClusterPredict(t *testing.T) {
	vectors := [][]float64{
		{1, 0}, {0.99, 0.05}, {0.98, 0.1},
		{0, 1}, {0.05, 0.99}, {0.1, 0.98},
	}
	model, _ := FitClusters(vectors, DefaultClusterEps, DefaultClusterMinPts)

	id, score := model.Predict([]float64{0.97, 0.08})
	if id == -1 {
		t.Fatal("near-cluster vector predicted as outlier")
	}
	if score <= 0 || score > 1 {
		t.Errorf("score = %v, want (0,1]", score)
	}

	outID, outScore := model.Predict([]float64{-1, 0})
	if outID != -1 || outScore != 0 {
		t.Errorf("far vector = (%d, %v), want (-1, 0)", outID, outScore)
	}
}
