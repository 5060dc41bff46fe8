// Package keywords extracts top-ranked keyword phrases per article by
// ranking candidate n-grams against the whole document in embedding space.
package keywords

import (
	"context"
	"fmt"
	"math"
	"sort"

	"veritascope/internal/inference"
	"veritascope/internal/models"
	"veritascope/internal/textnorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopN is the number of keyword phrases kept per article.
const TopN = 3

// Extractor ranks 1-2 word candidate phrases by embedding similarity to
// the document and persists the winners once per article.
type Extractor struct {
	db         *gorm.DB
	inference  *inference.Client
	normalizer *textnorm.Normalizer
}

// NewExtractor creates a keyword extractor.
func NewExtractor(db *gorm.DB, client *inference.Client, normalizer *textnorm.Normalizer) *Extractor {
	return &Extractor{db: db, inference: client, normalizer: normalizer}
}

// Name identifies the enrichment dimension.
func (e *Extractor) Name() string { return "keywords" }

// Pending returns articles that have no keyword row yet.
func (e *Extractor) Pending() ([]models.Article, error) {
	var articles []models.Article
	err := e.db.
		Joins("LEFT JOIN keywords k ON k.article_id = news.id").
		Where("k.id IS NULL").
		Find(&articles).Error
	return articles, err
}

// EnrichOne extracts and persists keywords for a single article. Articles
// that normalize to empty text get an empty keyword row so they are not
// rescanned forever.
func (e *Extractor) EnrichOne(ctx context.Context, article models.Article) error {
	phrases, err := e.Extract(ctx, article.Document())
	if err != nil {
		return err
	}

	set := models.KeywordSet{ArticleID: article.ID, Keywords: phrases}
	return e.db.
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "article_id"}}, DoNothing: true}).
		Create(&set).Error
}

// Extract returns the top phrases for one document, best first. A document
// with no candidates yields an empty slice, not an error.
func (e *Extractor) Extract(ctx context.Context, doc string) ([]string, error) {
	candidates := e.candidates(doc)
	if len(candidates) == 0 {
		return []string{}, nil
	}

	// One batch: document first, then every candidate phrase.
	texts := append([]string{textnorm.Clean(doc)}, candidates...)
	vectors, err := e.inference.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}

	docVec := vectors[0]
	type scored struct {
		phrase string
		score  float64
	}
	ranked := make([]scored, 0, len(candidates))
	for i, phrase := range candidates {
		ranked = append(ranked, scored{phrase: phrase, score: cosine(docVec, vectors[i+1])})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	top := []string{}
	for i := 0; i < len(ranked) && i < TopN; i++ {
		top = append(top, ranked[i].phrase)
	}
	return top, nil
}

// candidates builds deduplicated 1-2 word n-grams from the normalized
// token stream, preserving first-seen order.
func (e *Extractor) candidates(doc string) []string {
	tokens := e.normalizer.Tokenize(doc)
	if len(tokens) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	out := []string{}
	add := func(phrase string) {
		if _, ok := seen[phrase]; ok {
			return
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
	}
	for i, tok := range tokens {
		add(tok)
		if i+1 < len(tokens) {
			add(tok + " " + tokens[i+1])
		}
	}
	return out
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
