// Package topics implements corpus-level topic modeling with two
// interchangeable strategies: a probabilistic LDA model over a TF-IDF
// weighted term space, and density-based clustering of document embeddings.
// Trained artifacts live on the filesystem; assignment is a logged no-op
// when they are absent.
package topics

import (
	"sort"
)

// TermCount is one dictionary term with its in-document count.
type TermCount struct {
	ID    int     `json:"id"`
	Count float64 `json:"count"`
}

// Dictionary maps terms to integer ids and tracks document frequencies so
// overly rare and overly common terms can be filtered before training.
type Dictionary struct {
	Token2ID map[string]int `json:"token2id"`
	ID2Token []string       `json:"id2token"`
	DocFreq  []int          `json:"docfreq"`
	NumDocs  int            `json:"num_docs"`
}

// NewDictionary builds a dictionary over tokenized documents.
func NewDictionary(docs [][]string) *Dictionary {
	d := &Dictionary{Token2ID: map[string]int{}}
	for _, doc := range docs {
		d.addDocument(doc)
	}
	return d
}

func (d *Dictionary) addDocument(tokens []string) {
	d.NumDocs++
	inDoc := map[int]struct{}{}
	for _, tok := range tokens {
		id, ok := d.Token2ID[tok]
		if !ok {
			id = len(d.ID2Token)
			d.Token2ID[tok] = id
			d.ID2Token = append(d.ID2Token, tok)
			d.DocFreq = append(d.DocFreq, 0)
		}
		inDoc[id] = struct{}{}
	}
	for id := range inDoc {
		d.DocFreq[id]++
	}
}

// FilterExtremes drops terms present in fewer than noBelow documents or in
// more than noAbove (fraction) of all documents, then compacts the ids.
func (d *Dictionary) FilterExtremes(noBelow int, noAbove float64) {
	maxDocs := int(noAbove * float64(d.NumDocs))

	kept := []int{}
	for id := range d.ID2Token {
		if d.DocFreq[id] >= noBelow && d.DocFreq[id] <= maxDocs {
			kept = append(kept, id)
		}
	}
	sort.Ints(kept)

	token2id := make(map[string]int, len(kept))
	id2token := make([]string, 0, len(kept))
	docFreq := make([]int, 0, len(kept))
	for _, old := range kept {
		token := d.ID2Token[old]
		token2id[token] = len(id2token)
		id2token = append(id2token, token)
		docFreq = append(docFreq, d.DocFreq[old])
	}

	d.Token2ID = token2id
	d.ID2Token = id2token
	d.DocFreq = docFreq
}

// Size returns the vocabulary size.
func (d *Dictionary) Size() int { return len(d.ID2Token) }

// BOW converts a token stream into a sorted bag-of-words over the
// dictionary; unknown terms are dropped.
func (d *Dictionary) BOW(tokens []string) []TermCount {
	counts := map[int]float64{}
	for _, tok := range tokens {
		if id, ok := d.Token2ID[tok]; ok {
			counts[id]++
		}
	}

	bow := make([]TermCount, 0, len(counts))
	for id, n := range counts {
		bow = append(bow, TermCount{ID: id, Count: n})
	}
	sort.Slice(bow, func(i, j int) bool { return bow[i].ID < bow[j].ID })
	return bow
}
