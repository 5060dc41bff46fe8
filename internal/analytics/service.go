package analytics

import (
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"veritascope/internal/models"
)

// DefaultHistoryDays is the lookback window for dashboard series.
const DefaultHistoryDays = 90

// VolumePayload feeds the article-volume dashboard chart.
type VolumePayload struct {
	HistoryDates  []string  `json:"history_dates"`
	HistoryCounts []float64 `json:"history_counts"`
	FcastDates    []string  `json:"fcast_dates"`
	FcastValues   []float64 `json:"fcast_values"`
}

// SentimentPayload feeds the sentiment-over-time chart. The pos/neu/neg
// slices are daily average percentages aligned with Days.
type SentimentPayload struct {
	Days          []string  `json:"days"`
	Pos           []int     `json:"pos"`
	Neu           []int     `json:"neu"`
	Neg           []int     `json:"neg"`
	PosFcastDates []string  `json:"pos_fcast_dates"`
	PosFcast      []float64 `json:"pos_fcast"`
	NeuFcastDates []string  `json:"neu_fcast_dates"`
	NeuFcast      []float64 `json:"neu_fcast"`
	NegFcastDates []string  `json:"neg_fcast_dates"`
	NegFcast      []float64 `json:"neg_fcast"`
}

// TopicPayload feeds the per-topic volume chart.
type TopicPayload struct {
	TopicID       int       `json:"topic_id"`
	TopicName     string    `json:"topic_name"`
	HistoryDates  []string  `json:"history_dates"`
	HistoryCounts []float64 `json:"history_counts"`
	FcastDates    []string  `json:"fcast_dates"`
	FcastValues   []float64 `json:"fcast_values"`
}

// Distribution is the corpus-wide sentiment split in percent.
type Distribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// TopicCount pairs a registry topic with its article count in a window.
type TopicCount struct {
	TopicID      int    `json:"topic_id"`
	Name         string `json:"name"`
	ArticleCount int    `json:"article_count"`
}

// Service answers dashboard queries over enriched articles. Store errors
// degrade to empty payloads so a broken chart never takes down the page.
type Service struct {
	db          *gorm.DB
	historyDays int
	horizon     int
}

func NewService(db *gorm.DB, historyDays, horizon int) *Service {
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &Service{db: db, historyDays: historyDays, horizon: horizon}
}

// VolumeForecast buckets article counts by publish day and projects the
// series forward.
func (s *Service) VolumeForecast() VolumePayload {
	payload := VolumePayload{
		HistoryDates:  []string{},
		HistoryCounts: []float64{},
		FcastDates:    []string{},
		FcastValues:   []float64{},
	}

	articles, err := s.recentArticles()
	if err != nil {
		log.Printf("⚠️ Volume query failed: %v", err)
		return payload
	}

	buckets := map[string]float64{}
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		buckets[a.PublishedAt.Format("2006-01-02")]++
	}

	series := sortedSeries(buckets)
	for _, p := range series {
		payload.HistoryDates = append(payload.HistoryDates, p.Date.Format("2006-01-02"))
		payload.HistoryCounts = append(payload.HistoryCounts, p.Value)
	}
	payload.FcastDates, payload.FcastValues = Forecast(series, s.horizon)
	return payload
}

// SentimentForecast averages stored sentiment percentages per day and
// forecasts each component independently.
func (s *Service) SentimentForecast() SentimentPayload {
	payload := SentimentPayload{
		Days: []string{}, Pos: []int{}, Neu: []int{}, Neg: []int{},
		PosFcastDates: []string{}, PosFcast: []float64{},
		NeuFcastDates: []string{}, NeuFcast: []float64{},
		NegFcastDates: []string{}, NegFcast: []float64{},
	}

	var articles []models.Article
	cutoff := s.cutoff()
	err := s.db.Preload("Sentiment").
		Where("published_at >= ?", cutoff).
		Find(&articles).Error
	if err != nil {
		log.Printf("⚠️ Sentiment series query failed: %v", err)
		return payload
	}

	type daySums struct {
		pos, neu, neg float64
		n             int
	}
	buckets := map[string]*daySums{}
	for _, a := range articles {
		if a.PublishedAt == nil || a.Sentiment == nil {
			continue
		}
		day := a.PublishedAt.Format("2006-01-02")
		b := buckets[day]
		if b == nil {
			b = &daySums{}
			buckets[day] = b
		}
		b.pos += float64(a.Sentiment.Positive)
		b.neu += float64(a.Sentiment.Neutral)
		b.neg += float64(a.Sentiment.Negative)
		b.n++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	posSeries := make([]Point, 0, len(days))
	neuSeries := make([]Point, 0, len(days))
	negSeries := make([]Point, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		date, _ := time.Parse("2006-01-02", day)
		pos := b.pos / float64(b.n)
		neu := b.neu / float64(b.n)
		neg := b.neg / float64(b.n)
		payload.Days = append(payload.Days, day)
		payload.Pos = append(payload.Pos, int(math.Round(pos)))
		payload.Neu = append(payload.Neu, int(math.Round(neu)))
		payload.Neg = append(payload.Neg, int(math.Round(neg)))
		posSeries = append(posSeries, Point{Date: date, Value: pos})
		neuSeries = append(neuSeries, Point{Date: date, Value: neu})
		negSeries = append(negSeries, Point{Date: date, Value: neg})
	}

	payload.PosFcastDates, payload.PosFcast = Forecast(posSeries, s.horizon)
	payload.NeuFcastDates, payload.NeuFcast = Forecast(neuSeries, s.horizon)
	payload.NegFcastDates, payload.NegFcast = Forecast(negSeries, s.horizon)
	return payload
}

// TopicForecast buckets a single topic's assignment volume by publish day.
func (s *Service) TopicForecast(topicID int) TopicPayload {
	payload := TopicPayload{
		TopicID:       topicID,
		HistoryDates:  []string{},
		HistoryCounts: []float64{},
		FcastDates:    []string{},
		FcastValues:   []float64{},
	}

	var topic models.Topic
	if err := s.db.First(&topic, "id = ?", topicID).Error; err == nil {
		payload.TopicName = topic.Name
	}

	var articles []models.Article
	err := s.db.
		Joins("JOIN article_topics_mapping m ON m.article_id = news.id").
		Where("m.topic_id = ? AND news.published_at >= ?", topicID, s.cutoff()).
		Find(&articles).Error
	if err != nil {
		log.Printf("⚠️ Topic series query failed for topic %d: %v", topicID, err)
		return payload
	}

	buckets := map[string]float64{}
	for _, a := range articles {
		if a.PublishedAt == nil {
			continue
		}
		buckets[a.PublishedAt.Format("2006-01-02")]++
	}

	series := sortedSeries(buckets)
	for _, p := range series {
		payload.HistoryDates = append(payload.HistoryDates, p.Date.Format("2006-01-02"))
		payload.HistoryCounts = append(payload.HistoryCounts, p.Value)
	}
	payload.FcastDates, payload.FcastValues = Forecast(series, s.horizon)
	return payload
}

// SentimentDistribution sums stored components across all enriched
// articles and returns the split in percent.
func (s *Service) SentimentDistribution() Distribution {
	var sums struct {
		Pos float64
		Neu float64
		Neg float64
	}
	err := s.db.Model(&models.SentimentResult{}).
		Select("COALESCE(SUM(positive),0) AS pos, COALESCE(SUM(neutral),0) AS neu, COALESCE(SUM(negative),0) AS neg").
		Scan(&sums).Error
	if err != nil {
		log.Printf("⚠️ Sentiment distribution query failed: %v", err)
		return Distribution{}
	}

	total := sums.Pos + sums.Neu + sums.Neg
	if total == 0 {
		return Distribution{}
	}
	return Distribution{
		Positive: int(math.Round(sums.Pos * 100 / total)),
		Neutral:  int(math.Round(sums.Neu * 100 / total)),
		Negative: int(math.Round(sums.Neg * 100 / total)),
	}
}

// TopTopics ranks registry topics by assignment count inside the window.
// The outlier bucket is excluded.
func (s *Service) TopTopics(limit int) []TopicCount {
	if limit <= 0 {
		limit = 5
	}
	var rows []TopicCount
	err := s.db.Model(&models.ArticleTopicMapping{}).
		Select("article_topics_mapping.topic_id AS topic_id, topics.name AS name, COUNT(*) AS article_count").
		Joins("JOIN topics ON topics.id = article_topics_mapping.topic_id").
		Where("article_topics_mapping.topic_id <> ? AND article_topics_mapping.assigned_at >= ?",
			models.OutlierTopicID, s.cutoff()).
		Group("article_topics_mapping.topic_id, topics.name").
		Order("article_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		log.Printf("⚠️ Top topics query failed: %v", err)
		return []TopicCount{}
	}
	if rows == nil {
		rows = []TopicCount{}
	}
	return rows
}

func (s *Service) recentArticles() ([]models.Article, error) {
	var articles []models.Article
	err := s.db.Where("published_at >= ?", s.cutoff()).Find(&articles).Error
	return articles, err
}

func (s *Service) cutoff() time.Time {
	return time.Now().AddDate(0, 0, -s.historyDays)
}

func sortedSeries(buckets map[string]float64) []Point {
	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]Point, 0, len(days))
	for _, day := range days {
		date, _ := time.Parse("2006-01-02", day)
		series = append(series, Point{Date: date, Value: buckets[day]})
	}
	return series
}
