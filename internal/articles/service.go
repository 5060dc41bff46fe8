package articles

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"veritascope/internal/models"
	"veritascope/internal/textnorm"
)

// Service answers enriched article queries for the dashboard.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search returns articles newest first, with every enrichment dimension
// attached. A non-empty query is normalized and matched against title,
// description, stored keywords and assigned topic name.
func (s *Service) Search(query string) ([]models.Article, error) {
	tx := s.db.Model(&models.Article{}).
		Preload("Keywords").
		Preload("Sentiment").
		Preload("Entities").
		Preload("Topics").
		Order("published_at DESC")

	if query != "" {
		cleaned := textnorm.Clean(query)
		if cleaned == "" {
			return []models.Article{}, nil
		}
		pattern := "%" + cleaned + "%"
		tx = tx.
			Joins("LEFT JOIN keywords k ON k.article_id = news.id").
			Joins("LEFT JOIN article_topics_mapping atm ON atm.article_id = news.id").
			Joins("LEFT JOIN topics t ON t.id = atm.topic_id").
			Where(`LOWER(news.title) LIKE ? OR LOWER(news.description) LIKE ? OR
				LOWER(CAST(k.keywords AS TEXT)) LIKE ? OR LOWER(t.name) LIKE ?`,
				pattern, pattern, pattern, pattern).
			Distinct("news.*")
	}

	var articles []models.Article
	if err := tx.Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("article search failed: %w", err)
	}
	return articles, nil
}

// Get loads a single article with its enrichment.
func (s *Service) Get(id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := s.db.
		Preload("Keywords").
		Preload("Sentiment").
		Preload("Entities").
		Preload("Topics").
		First(&article, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// TopicNames resolves the topic registry names for a set of articles in
// one query, keyed by topic id.
func (s *Service) TopicNames(articles []models.Article) map[int]string {
	ids := map[int]struct{}{}
	for _, a := range articles {
		for _, m := range a.Topics {
			ids[m.TopicID] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return map[int]string{}
	}

	idList := make([]int, 0, len(ids))
	for id := range ids {
		idList = append(idList, id)
	}

	var topics []models.Topic
	if err := s.db.Where("id IN ?", idList).Find(&topics).Error; err != nil {
		return map[int]string{}
	}

	names := make(map[int]string, len(topics))
	for _, t := range topics {
		names[t.ID] = t.Name
	}
	return names
}

// SuggestLimit caps how many autocomplete suggestions a query returns.
const SuggestLimit = 5

// Suggest returns search-box autocomplete candidates: topic names first,
// then individual stored keywords, both substring-matched case-insensitively.
// Queries shorter than two characters yield nothing.
func (s *Service) Suggest(query string) ([]string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < 2 {
		return []string{}, nil
	}
	pattern := "%" + query + "%"

	var topicNames []string
	err := s.db.Model(&models.Topic{}).
		Distinct("name").
		Where("LOWER(name) LIKE ? AND name <> ''", pattern).
		Limit(SuggestLimit).
		Pluck("name", &topicNames).Error
	if err != nil {
		return nil, fmt.Errorf("topic suggestions failed: %w", err)
	}

	var keywordSets []models.KeywordSet
	err = s.db.
		Where("LOWER(CAST(keywords AS TEXT)) LIKE ?", pattern).
		Limit(10).
		Find(&keywordSets).Error
	if err != nil {
		return nil, fmt.Errorf("keyword suggestions failed: %w", err)
	}

	suggestions := make([]string, 0, SuggestLimit)
	seen := map[string]bool{}
	add := func(candidate string) {
		key := strings.ToLower(candidate)
		if !seen[key] && len(suggestions) < SuggestLimit {
			seen[key] = true
			suggestions = append(suggestions, candidate)
		}
	}
	for _, name := range topicNames {
		add(name)
	}
	for _, set := range keywordSets {
		for _, word := range set.Keywords {
			if strings.Contains(strings.ToLower(word), query) {
				add(word)
			}
		}
	}
	return suggestions, nil
}

// View is the dashboard-facing article shape: enrichment flattened into
// keywords, a sentiment block, grouped entities and a topic name.
type View struct {
	ID          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Source      string                  `json:"source"`
	URL         string                  `json:"url"`
	Description string                  `json:"description"`
	ImageURL    string                  `json:"image_url"`
	PublishedAt *time.Time              `json:"published_at"`
	Keywords    []string                `json:"keywords"`
	Sentiment   *models.SentimentResult `json:"sentiment"`
	Entities    EntityGroups            `json:"entities"`
	Topic       string                  `json:"topic"`
}

// EntityGroups buckets an article's named entities for display.
type EntityGroups struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// NewView flattens an article and its enrichment rows.
func NewView(article models.Article, topicNames map[int]string) View {
	view := View{
		ID:          article.ID,
		Title:       article.Title,
		Source:      article.Source,
		URL:         article.URL,
		Description: article.Description,
		ImageURL:    article.ImageURL,
		PublishedAt: article.PublishedAt,
		Keywords:    []string{},
		Sentiment:   article.Sentiment,
		Entities: EntityGroups{
			People:        []string{},
			Organizations: []string{},
			Locations:     []string{},
		},
	}

	if article.Keywords != nil {
		view.Keywords = append(view.Keywords, article.Keywords.Keywords...)
	}
	if article.Entities != nil {
		view.Entities.People = append(view.Entities.People, article.Entities.People...)
		view.Entities.Organizations = append(view.Entities.Organizations, article.Entities.Organizations...)
		view.Entities.Locations = append(view.Entities.Locations, article.Entities.Locations...)
	}
	for _, m := range article.Topics {
		if name, ok := topicNames[m.TopicID]; ok {
			view.Topic = name
			break
		}
	}
	return view
}

// Views flattens a result set.
func (s *Service) Views(articles []models.Article) []View {
	names := s.TopicNames(articles)
	views := make([]View, 0, len(articles))
	for _, a := range articles {
		views = append(views, NewView(a, names))
	}
	return views
}

// Summarize builds the one-paragraph overview line for a result set:
// lead headline, dominant themes, notable entities and the prevailing
// tone.
func Summarize(views []View, query string) string {
	if len(views) == 0 {
		return "No news found for your search."
	}

	headline := ""
	keywordCounts := map[string]int{}
	entityCounts := map[string]int{}
	sentimentCounts := map[string]int{}
	var keywordOrder, entityOrder []string

	for _, v := range views {
		if headline == "" && v.Title != "" {
			headline = v.Title
		}
		for _, kw := range v.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if keywordCounts[kw] == 0 {
				keywordOrder = append(keywordOrder, kw)
			}
			keywordCounts[kw]++
		}
		for _, group := range [][]string{v.Entities.People, v.Entities.Organizations, v.Entities.Locations} {
			for _, name := range group {
				if entityCounts[name] == 0 {
					entityOrder = append(entityOrder, name)
				}
				entityCounts[name]++
			}
		}
		if v.Sentiment != nil && v.Sentiment.Overall != "" {
			sentimentCounts[strings.ToLower(v.Sentiment.Overall)]++
		}
	}

	pieces := []string{}
	if query != "" && strings.ToLower(query) != "latest" {
		pieces = append(pieces, fmt.Sprintf("Today's news about %s focuses on", query))
	} else {
		pieces = append(pieces, "Today's top news focuses on")
	}
	if headline != "" {
		pieces = append(pieces, strings.ToLower(headline)+".")
	}
	if top := topByCount(keywordCounts, keywordOrder, 3); len(top) > 0 {
		pieces = append(pieces, fmt.Sprintf("Prominent themes include %s.", strings.Join(top, ", ")))
	}
	if top := topByCount(entityCounts, entityOrder, 3); len(top) > 0 {
		pieces = append(pieces, fmt.Sprintf("Notable figures or organizations are %s.", strings.Join(top, ", ")))
	}
	if tone := dominant(sentimentCounts); tone != "" {
		pieces = append(pieces, fmt.Sprintf("The overall tone is %s.", tone))
	}
	return strings.Join(pieces, " ")
}

// topByCount ranks by frequency, breaking ties by first appearance.
func topByCount(counts map[string]int, order []string, n int) []string {
	ranked := append([]string(nil), order...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func dominant(counts map[string]int) string {
	best, bestCount := "", 0
	for tone, count := range counts {
		if count > bestCount || (count == bestCount && tone < best) {
			best, bestCount = tone, count
		}
	}
	return best
}
