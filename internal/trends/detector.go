package trends

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"veritascope/internal/models"
	"veritascope/internal/textnorm"
	"veritascope/internal/topics"
)

const (
	// DefaultWindowDays is the short lookback for the trending snapshot,
	// distinct from the long dashboard history window.
	DefaultWindowDays = 3

	defaultTopicCount  = 5
	topicTermCount     = 10
	trendingKeywordMax = 10
	trendingArticleMax = 10
)

// category pairs a display name with the terms that pull a keyword into
// it. Order matters: a keyword lands in the first category whose term it
// contains, and in that category only.
type category struct {
	name  string
	terms []string
}

var categories = []category{
	{"Technology", []string{"ai", "tech", "software", "digital", "innovation", "data"}},
	{"Politics", []string{"government", "election", "policy", "minister", "political"}},
	{"Business", []string{"market", "economy", "business", "company", "stock", "financial"}},
	{"Health", []string{"health", "medical", "hospital", "disease", "vaccine", "doctor"}},
	{"Sports", []string{"sports", "game", "team", "player", "championship", "match"}},
	{"Entertainment", []string{"movie", "celebrity", "film", "music", "show", "entertainment"}},
}

// Words too generic to surface as trends even when frequent.
var commonNewsWords = map[string]struct{}{
	"news": {}, "update": {}, "report": {}, "said": {},
	"year": {}, "time": {}, "day": {},
}

// KeywordHit is one categorized trending keyword.
type KeywordHit struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// RankedArticle decorates an article with its recency score.
type RankedArticle struct {
	models.Article
	TrendScore float64 `json:"trend_score"`
}

// Snapshot is the full trending picture over the short window. Derived on
// every call, never persisted.
type Snapshot struct {
	Topics           map[string][]string     `json:"topics"`
	Keywords         map[string]int          `json:"keywords"`
	TrendingArticles []RankedArticle         `json:"trending_articles"`
	TrendCategories  map[string][]KeywordHit `json:"trend_categories"`
}

// Detector computes trending snapshots from recently published articles.
type Detector struct {
	db         *gorm.DB
	normalizer *textnorm.Normalizer
	windowDays int
}

func NewDetector(db *gorm.DB, normalizer *textnorm.Normalizer, windowDays int) *Detector {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Detector{db: db, normalizer: normalizer, windowDays: windowDays}
}

// Snapshot assembles topics, keywords, ranked articles and categories for
// the current window. Store errors degrade to an empty snapshot.
func (d *Detector) Snapshot() Snapshot {
	snapshot := Snapshot{
		Topics:           map[string][]string{},
		Keywords:         map[string]int{},
		TrendingArticles: []RankedArticle{},
		TrendCategories:  map[string][]KeywordHit{},
	}

	articles, err := d.recentArticles()
	if err != nil {
		log.Printf("⚠️ Trending window query failed: %v", err)
		return snapshot
	}
	if len(articles) == 0 {
		return snapshot
	}

	snapshot.Topics = d.topicTrends(articles)
	snapshot.Keywords = d.keywordTrends(articles)
	snapshot.TrendingArticles = rankArticles(articles, trendingArticleMax)
	snapshot.TrendCategories = categorize(snapshot.Keywords)
	return snapshot
}

func (d *Detector) recentArticles() ([]models.Article, error) {
	cutoff := time.Now().AddDate(0, 0, -d.windowDays)
	var articles []models.Article
	err := d.db.Preload("Keywords").
		Where("published_at >= ?", cutoff).
		Order("published_at DESC").
		Find(&articles).Error
	return articles, err
}

// topicTrends runs a fresh small topic decomposition over just the window.
// The persisted topic model is deliberately not consulted: a three-day
// slice has its own themes.
func (d *Detector) topicTrends(articles []models.Article) map[string][]string {
	numTopics := defaultTopicCount
	if len(articles) < numTopics {
		numTopics = len(articles) / 2
		if numTopics < 1 {
			numTopics = 1
		}
	}

	docs := make([][]string, 0, len(articles))
	for _, a := range articles {
		docs = append(docs, d.normalizer.Tokenize(a.Document()))
	}

	dict := topics.NewDictionary(docs)
	dict.FilterExtremes(1, 0.95)
	if dict.Size() == 0 {
		return map[string][]string{}
	}

	corpus := make([][]topics.TermCount, 0, len(docs))
	for _, doc := range docs {
		corpus = append(corpus, dict.BOW(doc))
	}

	model := topics.TrainLDA(corpus, dict.Size(), numTopics, 10, topics.DefaultSeed)

	result := make(map[string][]string, numTopics)
	for k := 0; k < numTopics; k++ {
		result[fmt.Sprintf("Topic %d", k+1)] = model.TopTerms(k, topicTermCount, dict)
	}
	return result
}

// keywordTrends counts stored keyword phrases plus title tokens and keeps
// the most frequent ones, minus generic news vocabulary.
func (d *Detector) keywordTrends(articles []models.Article) map[string]int {
	counts := map[string]int{}
	for _, a := range articles {
		if a.Keywords != nil {
			for _, kw := range a.Keywords.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if kw != "" {
					counts[kw]++
				}
			}
		}
		for _, token := range d.normalizer.Tokenize(a.Title) {
			counts[token]++
		}
	}

	type pair struct {
		word  string
		count int
	}
	ranked := make([]pair, 0, len(counts))
	for word, count := range counts {
		if len(word) <= 2 {
			continue
		}
		if _, generic := commonNewsWords[word]; generic {
			continue
		}
		ranked = append(ranked, pair{word, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	top := map[string]int{}
	for i, p := range ranked {
		if i >= trendingKeywordMax {
			break
		}
		top[p.word] = p.count
	}
	return top
}

// rankArticles scores each window article by how close it sits to the
// newest one. The newest article scores 100, an article a full day behind
// scores 4, so the ranking decays fast.
func rankArticles(articles []models.Article, limit int) []RankedArticle {
	var newest time.Time
	for _, a := range articles {
		if a.PublishedAt != nil && a.PublishedAt.After(newest) {
			newest = *a.PublishedAt
		}
	}

	ranked := make([]RankedArticle, 0, len(articles))
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		hoursBehind := newest.Sub(*a.PublishedAt).Hours()
		ranked = append(ranked, RankedArticle{
			Article:    a,
			TrendScore: 100 / (hoursBehind + 1),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TrendScore > ranked[j].TrendScore
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// categorize tags each trending keyword with the first category whose term
// list matches it as a substring. Empty categories are dropped.
func categorize(keywords map[string]int) map[string][]KeywordHit {
	result := map[string][]KeywordHit{}

	ordered := make([]string, 0, len(keywords))
	for kw := range keywords {
		ordered = append(ordered, kw)
	}
	sort.Strings(ordered)

	for _, kw := range ordered {
		for _, cat := range categories {
			matched := false
			for _, term := range cat.terms {
				if strings.Contains(kw, term) {
					matched = true
					break
				}
			}
			if matched {
				result[cat.name] = append(result[cat.name], KeywordHit{Keyword: kw, Count: keywords[kw]})
				break
			}
		}
	}
	return result
}
