package trends

import (
	"fmt"
	"testing"
	"time"

	"veritascope/internal/models"
	"veritascope/internal/textnorm"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func seedArticle(t *testing.T, db *gorm.DB, title string, hoursAgo float64, keywords []string) models.Article {
	published := time.Now().Add(-time.Duration(hoursAgo * float64(time.Hour)))
	article := models.Article{
		ID:          uuid.New(),
		URL:         fmt.Sprintf("https://example.com/%s", uuid.NewString()),
		Title:       title,
		PublishedAt: &published,
	}
	if err := db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to seed article: %v", err)
	}
	if keywords != nil {
		set := models.KeywordSet{ArticleID: article.ID, Keywords: pq.StringArray(keywords)}
		if err := db.Create(&set).Error; err != nil {
			t.Fatalf("Failed to seed keywords: %v", err)
		}
	}
	return article
}

func TestSnapshotEmptyWindow(t *testing.T) {
	db := setupTestDB(t)
	// One article, but far outside the window.
	seedArticle(t, db, "old story about markets", 24*30, nil)

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()

	if snapshot.Topics == nil || snapshot.Keywords == nil ||
		snapshot.TrendingArticles == nil || snapshot.TrendCategories == nil {
		t.Fatal("Empty snapshot must carry empty containers, not nil")
	}
	if len(snapshot.Topics) != 0 || len(snapshot.Keywords) != 0 || len(snapshot.TrendingArticles) != 0 {
		t.Errorf("Snapshot of empty window = %+v, want empty", snapshot)
	}
}

func TestSnapshotKeywordCounts(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, "inflation squeezes households", 1, []string{"inflation", "interest rates"})
	seedArticle(t, db, "inflation fears return", 2, []string{"inflation"})
	seedArticle(t, db, "quiet news day", 3, nil)

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()

	// Two keyword rows plus two title hits.
	if snapshot.Keywords["inflation"] != 4 {
		t.Errorf("inflation count = %d, want 4", snapshot.Keywords["inflation"])
	}
	if snapshot.Keywords["interest rates"] != 1 {
		t.Errorf("interest rates count = %d, want 1", snapshot.Keywords["interest rates"])
	}
	// Generic news vocabulary never trends.
	if _, ok := snapshot.Keywords["news"]; ok {
		t.Error("Generic word 'news' must be filtered from trends")
	}
	if _, ok := snapshot.Keywords["day"]; ok {
		t.Error("Generic word 'day' must be filtered from trends")
	}
}

func TestSnapshotRecencyOrdering(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, "oldest story", 48, nil)
	seedArticle(t, db, "middle story", 12, nil)
	seedArticle(t, db, "newest story", 0, nil)

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()

	ranked := snapshot.TrendingArticles
	if len(ranked) != 3 {
		t.Fatalf("Ranked %d articles, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].TrendScore > ranked[i-1].TrendScore {
			t.Errorf("Scores not descending at %d: %v then %v",
				i, ranked[i-1].TrendScore, ranked[i].TrendScore)
		}
	}
	if ranked[0].Title != "newest story" {
		t.Errorf("Top article = %q, want newest story", ranked[0].Title)
	}
	// Newest article sits at zero hours behind itself.
	if ranked[0].TrendScore < 99 || ranked[0].TrendScore > 100 {
		t.Errorf("Newest article score = %v, want ~100", ranked[0].TrendScore)
	}
	// A day behind decays to single digits.
	if ranked[2].TrendScore > 10 {
		t.Errorf("Two-day-old article score = %v, want < 10", ranked[2].TrendScore)
	}
}

func TestSnapshotTrendingArticleLimit(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 15; i++ {
		seedArticle(t, db, fmt.Sprintf("story number %d", i), float64(i), nil)
	}

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()
	if len(snapshot.TrendingArticles) != 10 {
		t.Errorf("Ranked %d articles, want cap of 10", len(snapshot.TrendingArticles))
	}
}

func TestSnapshotTopics(t *testing.T) {
	db := setupTestDB(t)
	for i := 0; i < 6; i++ {
		seedArticle(t, db, "markets stocks economy inflation pressure", float64(i), nil)
		seedArticle(t, db, "football players championship finals goals", float64(i)+0.5, nil)
	}

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()

	if len(snapshot.Topics) != 5 {
		t.Fatalf("Ad hoc decomposition produced %d topics, want 5", len(snapshot.Topics))
	}
	for name, terms := range snapshot.Topics {
		if len(terms) == 0 {
			t.Errorf("Topic %q has no terms", name)
		}
	}
	if _, ok := snapshot.Topics["Topic 1"]; !ok {
		t.Errorf("Topics keyed %v, want Topic 1..Topic 5", snapshot.Topics)
	}
}

func TestSnapshotTopicsSmallWindow(t *testing.T) {
	db := setupTestDB(t)
	seedArticle(t, db, "lone story about elections", 1, nil)
	seedArticle(t, db, "another story about elections", 2, nil)

	snapshot := NewDetector(db, textnorm.New(nil), 3).Snapshot()
	// Two articles shrink the decomposition to a single topic.
	if len(snapshot.Topics) != 1 {
		t.Errorf("Small window produced %d topics, want 1", len(snapshot.Topics))
	}
}

func TestCategorize(t *testing.T) {
	keywords := map[string]int{
		"ai regulation":    5,
		"stock market":     4,
		"vaccine rollout":  3,
		"quantum knitting": 2,
	}

	result := categorize(keywords)

	tech := result["Technology"]
	if len(tech) != 1 || tech[0].Keyword != "ai regulation" || tech[0].Count != 5 {
		t.Errorf("Technology = %+v, want ai regulation/5", tech)
	}
	if len(result["Business"]) != 1 {
		t.Errorf("Business = %+v, want exactly one entry", result["Business"])
	}
	if len(result["Health"]) != 1 || result["Health"][0].Keyword != "vaccine rollout" {
		t.Errorf("Health = %+v, want vaccine rollout", result["Health"])
	}
	for category, hits := range result {
		if len(hits) == 0 {
			t.Errorf("Category %q kept with no hits", category)
		}
	}
	total := 0
	for _, hits := range result {
		total += len(hits)
	}
	if total != 3 {
		t.Errorf("Categorized %d keywords, want 3 (one category per keyword)", total)
	}
}

func TestCategorizeFirstCategoryWins(t *testing.T) {
	// "data policy" contains Technology's "data" and Politics' "policy".
	// Iteration order puts Technology first.
	result := categorize(map[string]int{"data policy": 2})

	if len(result["Technology"]) != 1 {
		t.Fatalf("Technology = %+v, want the data policy hit", result["Technology"])
	}
	if len(result["Politics"]) != 0 {
		t.Errorf("Politics = %+v, keyword must land in one category only", result["Politics"])
	}
}
