package topics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"veritascope/internal/inference"
	"veritascope/internal/models"
	"veritascope/internal/textnorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Strategy names accepted by the service.
const (
	StrategyLDA     = "lda"
	StrategyCluster = "cluster"
)

// Service owns the train and assign passes for both topic strategies.
// Training is a batch job over the whole corpus; assignment is incremental
// over articles with no mapping yet.
type Service struct {
	db         *gorm.DB
	store      *ArtifactStore
	inference  *inference.Client
	normalizer *textnorm.Normalizer
	strategy   string

	// Artifacts are expensive to parse, so they load once and are shared
	// read-only across assignment calls. Train drops the cache.
	mu      sync.RWMutex
	dict    *Dictionary
	tfidf   *TFIDF
	lda     *LDA
	cluster *ClusterModel
}

// NewService creates a topic service using the given strategy ("lda" or
// "cluster").
func NewService(db *gorm.DB, store *ArtifactStore, client *inference.Client, normalizer *textnorm.Normalizer, strategy string) *Service {
	if strategy != StrategyCluster {
		strategy = StrategyLDA
	}
	return &Service{db: db, store: store, inference: client, normalizer: normalizer, strategy: strategy}
}

// Name identifies the enrichment dimension.
func (s *Service) Name() string { return "topics" }

// Train fits the configured strategy over the full historical corpus and
// persists the artifacts. An empty corpus logs and returns without
// creating artifacts.
func (s *Service) Train(ctx context.Context) error {
	var articles []models.Article
	if err := s.db.Find(&articles).Error; err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	if len(articles) == 0 {
		log.Println("No articles in database to train on.")
		return nil
	}

	log.Printf("Training %s topic model over %d articles...", s.strategy, len(articles))
	if s.strategy == StrategyCluster {
		return s.trainClusters(ctx, articles)
	}
	return s.trainLDA(ctx, articles)
}

func (s *Service) trainLDA(ctx context.Context, articles []models.Article) error {
	docs := make([][]string, len(articles))
	for i, a := range articles {
		docs[i] = s.normalizer.ContentWords(ctx, a.Document())
	}

	dict := NewDictionary(docs)
	dict.FilterExtremes(5, 0.6)
	if dict.Size() == 0 {
		log.Println("Corpus is empty after filtering, cannot train.")
		return nil
	}

	corpus := make([][]TermCount, len(docs))
	for i, doc := range docs {
		corpus[i] = dict.BOW(doc)
	}

	tfidf := FitTFIDF(corpus, dict.Size())
	model := TrainLDA(corpus, dict.Size(), DefaultNumTopics, DefaultPasses, DefaultSeed)

	if err := s.store.SaveLDA(dict, tfidf, model); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	s.dropCache()

	labels := s.store.LoadLabels()
	log.Println("Topics detected:")
	for k := 0; k < model.NumTopics; k++ {
		terms := model.TopTerms(k, 5, dict)
		keywords := strings.Join(terms, ", ")
		log.Printf("  Topic %d: %s", k, keywords)

		name, ok := labels[k]
		if !ok {
			name = fmt.Sprintf("Topic %d", k)
		}
		if err := s.upsertTopic(k, name, keywords); err != nil {
			return err
		}
	}
	log.Printf("Review the topics above and curate labels in %s", s.store.LabelsPath())
	return nil
}

func (s *Service) trainClusters(ctx context.Context, articles []models.Article) error {
	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = textnorm.Clean(a.Document())
	}

	vectors, err := s.inference.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}

	model, assignments := FitClusters(vectors, DefaultClusterEps, DefaultClusterMinPts)
	if err := s.store.SaveClusters(model); err != nil {
		return fmt.Errorf("save artifacts: %w", err)
	}
	s.dropCache()

	labels := s.store.LoadLabels()
	name, ok := labels[models.OutlierTopicID]
	if !ok {
		name = "Miscellaneous"
	}
	if err := s.upsertTopic(models.OutlierTopicID, name, ""); err != nil {
		return err
	}
	for id := range model.Centroids {
		name, ok := labels[id]
		if !ok {
			name = fmt.Sprintf("Cluster %d", id)
		}
		if err := s.upsertTopic(id, name, ""); err != nil {
			return err
		}
	}

	counts := map[int]int{}
	for _, label := range assignments {
		counts[label]++
	}
	log.Printf("Clustering found %d clusters (%d outliers)", len(model.Centroids), counts[models.OutlierTopicID])
	return nil
}

// Pending returns articles that have no topic mapping yet.
func (s *Service) Pending() ([]models.Article, error) {
	var articles []models.Article
	err := s.db.
		Joins("LEFT JOIN article_topics_mapping atm ON atm.article_id = news.id").
		Where("atm.id IS NULL").
		Find(&articles).Error
	return articles, err
}

// Assign runs one incremental assignment pass over unmapped articles.
// Missing artifacts make the whole pass a logged no-op.
func (s *Service) Assign(ctx context.Context) error {
	pending, err := s.Pending()
	if err != nil {
		return fmt.Errorf("scan unassigned: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	log.Printf("Assigning topics to %d new articles...", len(pending))
	for _, article := range pending {
		if err := s.EnrichOne(ctx, article); err != nil {
			if errors.Is(err, ErrModelNotFound) {
				log.Println("Topic model not found; run training first.")
				return nil
			}
			log.Printf("Failed to assign topic for article %s: %v", article.ID, err)
		}
	}
	return nil
}

// EnrichOne assigns a topic to a single article. Returns ErrModelNotFound
// when no trained artifacts exist.
func (s *Service) EnrichOne(ctx context.Context, article models.Article) error {
	var (
		topicID int
		score   float64
		err     error
	)
	if s.strategy == StrategyCluster {
		topicID, score, err = s.predictCluster(ctx, article)
	} else {
		topicID, score, err = s.predictLDA(ctx, article)
	}
	if err != nil {
		return err
	}

	mapping := models.ArticleTopicMapping{
		ArticleID:      article.ID,
		TopicID:        topicID,
		RelevanceScore: score,
	}
	return s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "article_id"}, {Name: "topic_id"}},
			DoNothing: true,
		}).
		Create(&mapping).Error
}

func (s *Service) predictLDA(ctx context.Context, article models.Article) (int, float64, error) {
	dict, tfidf, model, err := s.loadLDA()
	if err != nil {
		return 0, 0, err
	}

	tokens := s.normalizer.ContentWords(ctx, article.Document())
	weighted := tfidf.Transform(dict.BOW(tokens))
	topicID, prob := ArgMax(model.Infer(weighted))
	return topicID, prob, nil
}

func (s *Service) loadLDA() (*Dictionary, *TFIDF, *LDA, error) {
	s.mu.RLock()
	if s.lda != nil {
		defer s.mu.RUnlock()
		return s.dict, s.tfidf, s.lda, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lda == nil {
		dict, tfidf, model, err := s.store.LoadLDA()
		if err != nil {
			return nil, nil, nil, err
		}
		s.dict, s.tfidf, s.lda = dict, tfidf, model
	}
	return s.dict, s.tfidf, s.lda, nil
}

func (s *Service) loadClusters() (*ClusterModel, error) {
	s.mu.RLock()
	if s.cluster != nil {
		defer s.mu.RUnlock()
		return s.cluster, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cluster == nil {
		model, err := s.store.LoadClusters()
		if err != nil {
			return nil, err
		}
		s.cluster = model
	}
	return s.cluster, nil
}

func (s *Service) dropCache() {
	s.mu.Lock()
	s.dict, s.tfidf, s.lda, s.cluster = nil, nil, nil, nil
	s.mu.Unlock()
}

func (s *Service) predictCluster(ctx context.Context, article models.Article) (int, float64, error) {
	model, err := s.loadClusters()
	if err != nil {
		return 0, 0, err
	}

	vectors, err := s.inference.Embed(ctx, []string{textnorm.Clean(article.Document())})
	if err != nil {
		return 0, 0, fmt.Errorf("embed document: %w", err)
	}
	topicID, score := model.Predict(vectors[0])
	return topicID, score, nil
}

// Topics returns the topics registry ordered by id.
func (s *Service) Topics() ([]models.Topic, error) {
	var topics []models.Topic
	err := s.db.Order("id asc").Find(&topics).Error
	return topics, err
}

func (s *Service) upsertTopic(id int, name, keywords string) error {
	topic := models.Topic{ID: id, Name: name, Keywords: keywords}
	return s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "keywords"}),
		}).
		Create(&topic).Error
}
