package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"veritascope/internal/auth"
	"veritascope/internal/enrich"
	"veritascope/internal/models"
	"veritascope/internal/textnorm"
	"veritascope/internal/topics"
	"veritascope/internal/trends"
	"veritascope/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	deps   RouterDeps
}

func setupEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	store, err := topics.NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create artifact store: %v", err)
	}

	normalizer := textnorm.New(nil)
	deps := RouterDeps{
		DB:            db,
		AuthService:   auth.NewService("test-secret", time.Hour),
		TopicService:  topics.NewService(db, store, nil, normalizer, topics.StrategyLDA),
		TrendDetector: trends.NewDetector(db, normalizer, 3),
		WorkerService: worker.NewWorkerService(nil, enrich.NewOrchestrator(nil), time.Hour),
	}
	return &testEnv{db: db, router: SetupRouter(deps), deps: deps}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) registerAndLogin(t *testing.T, email, role string) string {
	w := e.request(t, "POST", "/api/auth/register", "", gin.H{
		"email":    email,
		"password": "a long password",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", w.Code, w.Body.String())
	}

	if role != "user" {
		if err := e.db.Model(&models.User{}).Where("email = ?", email).Update("role", role).Error; err != nil {
			t.Fatalf("Failed to promote user: %v", err)
		}
	}

	w = e.request(t, "POST", "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "a long password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}
	return resp.Token
}

func (e *testEnv) seedEnrichedArticle(t *testing.T, title string, hoursAgo int) models.Article {
	published := time.Now().Add(-time.Duration(hoursAgo) * time.Hour)
	article := models.Article{
		ID:          uuid.New(),
		URL:         fmt.Sprintf("https://example.com/%s", uuid.NewString()),
		Title:       title,
		Source:      "Example Wire",
		PublishedAt: &published,
	}
	if err := e.db.Create(&article).Error; err != nil {
		t.Fatalf("Failed to seed article: %v", err)
	}
	if err := e.db.Create(&models.KeywordSet{
		ArticleID: article.ID,
		Keywords:  pq.StringArray{"inflation", "rates"},
	}).Error; err != nil {
		t.Fatalf("Failed to seed keywords: %v", err)
	}
	if err := e.db.Create(&models.SentimentResult{
		ArticleID: article.ID,
		Positive:  10, Neutral: 20, Negative: 70,
		Overall: models.SentimentNegative,
	}).Error; err != nil {
		t.Fatalf("Failed to seed sentiment: %v", err)
	}
	return article
}

func TestAuthFlow(t *testing.T) {
	env := setupEnv(t)

	t.Run("register rejects invalid email", func(t *testing.T) {
		w := env.request(t, "POST", "/api/auth/register", "", gin.H{
			"email":    "not-an-email",
			"password": "a long password",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})

	t.Run("register rejects short password", func(t *testing.T) {
		w := env.request(t, "POST", "/api/auth/register", "", gin.H{
			"email":    "short@example.com",
			"password": "tiny",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})

	t.Run("register then login", func(t *testing.T) {
		token := env.registerAndLogin(t, "reader@example.com", "user")
		if token == "" {
			t.Fatal("Login returned empty token")
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := env.request(t, "POST", "/api/auth/register", "", gin.H{
			"email":    "reader@example.com",
			"password": "a long password",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("Status = %d, want 409", w.Code)
		}
	})

	t.Run("login rejects wrong password", func(t *testing.T) {
		w := env.request(t, "POST", "/api/auth/login", "", gin.H{
			"email":    "reader@example.com",
			"password": "wrong password!",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", w.Code)
		}
	})
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	env := setupEnv(t)

	paths := []string{
		"/api/articles",
		"/api/summary",
		"/api/suggest",
		"/api/profile",
		"/api/topics",
		"/api/analytics/volume",
		"/api/trends",
	}
	for _, path := range paths {
		w := env.request(t, "GET", path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, w.Code)
		}
	}
}

func TestArticlesEndpoints(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "reader@example.com", "user")
	article := env.seedEnrichedArticle(t, "Inflation hits new high", 1)
	env.seedEnrichedArticle(t, "Quiet sports day", 2)

	t.Run("list", func(t *testing.T) {
		w := env.request(t, "GET", "/api/articles", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Count    int `json:"count"`
			Articles []struct {
				Title    string   `json:"title"`
				Keywords []string `json:"keywords"`
			} `json:"articles"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if resp.Count != 2 {
			t.Errorf("Count = %d, want 2", resp.Count)
		}
		if len(resp.Articles) != 2 || len(resp.Articles[0].Keywords) != 2 {
			t.Errorf("Articles = %+v, want enrichment attached", resp.Articles)
		}
	})

	t.Run("search", func(t *testing.T) {
		w := env.request(t, "GET", "/api/articles?q=sports", token, nil)
		var resp struct {
			Count int `json:"count"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Count != 1 {
			t.Errorf("Search count = %d, want 1", resp.Count)
		}
	})

	t.Run("detail", func(t *testing.T) {
		w := env.request(t, "GET", "/api/articles/"+article.ID.String(), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}
		var view struct {
			Title     string `json:"title"`
			Sentiment *struct {
				Overall string `json:"overall"`
			} `json:"sentiment"`
		}
		json.Unmarshal(w.Body.Bytes(), &view)
		if view.Title != "Inflation hits new high" {
			t.Errorf("Title = %q", view.Title)
		}
		if view.Sentiment == nil || view.Sentiment.Overall != models.SentimentNegative {
			t.Errorf("Sentiment = %+v, want negative", view.Sentiment)
		}
	})

	t.Run("detail bad id", func(t *testing.T) {
		w := env.request(t, "GET", "/api/articles/not-a-uuid", token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})

	t.Run("detail missing", func(t *testing.T) {
		w := env.request(t, "GET", "/api/articles/"+uuid.NewString(), token, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", w.Code)
		}
	})

	t.Run("summary", func(t *testing.T) {
		w := env.request(t, "GET", "/api/summary?q=inflation", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Summary string `json:"summary"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if !strings.Contains(resp.Summary, "Today's news about inflation") {
			t.Errorf("Summary = %q", resp.Summary)
		}
	})

	t.Run("suggest", func(t *testing.T) {
		w := env.request(t, "GET", "/api/suggest?q=infl", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}
		var suggestions []string
		json.Unmarshal(w.Body.Bytes(), &suggestions)
		if len(suggestions) != 1 || suggestions[0] != "inflation" {
			t.Errorf("Suggestions = %v, want [inflation]", suggestions)
		}
	})

	t.Run("suggest short query", func(t *testing.T) {
		w := env.request(t, "GET", "/api/suggest?q=i", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d", w.Code)
		}
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("Body = %q, want empty array", body)
		}
	})
}

func TestProfileEndpoints(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "reader@example.com", "user")

	t.Run("get", func(t *testing.T) {
		w := env.request(t, "GET", "/api/profile", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}
		var resp map[string]any
		json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["email"] != "reader@example.com" {
			t.Errorf("Email = %v", resp["email"])
		}
		if _, leaked := resp["PasswordHash"]; leaked {
			t.Error("Profile response must not expose the password hash")
		}
	})

	t.Run("update", func(t *testing.T) {
		w := env.request(t, "PUT", "/api/profile", token, gin.H{
			"username":  "  reader one ",
			"interests": "economy, technology",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}

		var user models.User
		if err := env.db.First(&user, "email = ?", "reader@example.com").Error; err != nil {
			t.Fatalf("Failed to reload user: %v", err)
		}
		if user.Username != "reader one" {
			t.Errorf("Username = %q, want trimmed value", user.Username)
		}
		if user.Interests != "economy, technology" {
			t.Errorf("Interests = %q", user.Interests)
		}
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := env.request(t, "PUT", "/api/profile", token, gin.H{
			"interests": "sports",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", w.Code, w.Body.String())
		}

		var user models.User
		env.db.First(&user, "email = ?", "reader@example.com")
		if user.Username != "reader one" {
			t.Errorf("Username = %q, must survive a partial update", user.Username)
		}
		if user.Interests != "sports" {
			t.Errorf("Interests = %q, want sports", user.Interests)
		}
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "reader@example.com", "user")
	env.seedEnrichedArticle(t, "day one story", 30)
	env.seedEnrichedArticle(t, "day two story", 6)

	t.Run("volume payload shape", func(t *testing.T) {
		w := env.request(t, "GET", "/api/analytics/volume", token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d", w.Code)
		}
		var payload map[string]json.RawMessage
		json.Unmarshal(w.Body.Bytes(), &payload)
		for _, key := range []string{"history_dates", "history_counts", "fcast_dates", "fcast_values"} {
			if _, ok := payload[key]; !ok {
				t.Errorf("Volume payload missing %q", key)
			}
		}
	})

	t.Run("sentiment payload shape", func(t *testing.T) {
		w := env.request(t, "GET", "/api/analytics/sentiment", token, nil)
		var payload map[string]json.RawMessage
		json.Unmarshal(w.Body.Bytes(), &payload)
		for _, key := range []string{"days", "pos", "neu", "neg", "pos_fcast_dates", "pos_fcast"} {
			if _, ok := payload[key]; !ok {
				t.Errorf("Sentiment payload missing %q", key)
			}
		}
	})

	t.Run("distribution", func(t *testing.T) {
		w := env.request(t, "GET", "/api/analytics/sentiment/distribution", token, nil)
		var dist struct {
			Positive int `json:"positive"`
			Neutral  int `json:"neutral"`
			Negative int `json:"negative"`
		}
		json.Unmarshal(w.Body.Bytes(), &dist)
		if dist.Negative != 70 {
			t.Errorf("Negative = %d, want 70", dist.Negative)
		}
	})

	t.Run("topic series bad id", func(t *testing.T) {
		w := env.request(t, "GET", "/api/analytics/topics/abc", token, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", w.Code)
		}
	})

	t.Run("topics registry", func(t *testing.T) {
		if err := env.db.Create(&models.Topic{ID: 0, Name: "Economy"}).Error; err != nil {
			t.Fatalf("Failed to seed topic: %v", err)
		}
		w := env.request(t, "GET", "/api/topics", token, nil)
		var resp struct {
			Topics []models.Topic `json:"topics"`
		}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp.Topics) != 1 || resp.Topics[0].Name != "Economy" {
			t.Errorf("Topics = %+v", resp.Topics)
		}
	})
}

func TestTrendsEndpoints(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "reader@example.com", "user")
	env.seedEnrichedArticle(t, "breaking market story", 1)

	w := env.request(t, "GET", "/api/trends", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d", w.Code)
	}
	var snapshot map[string]json.RawMessage
	json.Unmarshal(w.Body.Bytes(), &snapshot)
	for _, key := range []string{"topics", "keywords", "trending_articles", "trend_categories"} {
		if _, ok := snapshot[key]; !ok {
			t.Errorf("Snapshot missing %q", key)
		}
	}

	w = env.request(t, "GET", "/api/trending-articles", token, nil)
	var trending struct {
		TrendingArticles []struct {
			TrendScore float64 `json:"trend_score"`
		} `json:"trending_articles"`
	}
	json.Unmarshal(w.Body.Bytes(), &trending)
	if len(trending.TrendingArticles) != 1 {
		t.Fatalf("Trending articles = %d, want 1", len(trending.TrendingArticles))
	}
	if trending.TrendingArticles[0].TrendScore <= 0 {
		t.Errorf("TrendScore = %v, want > 0", trending.TrendingArticles[0].TrendScore)
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := setupEnv(t)
	userToken := env.registerAndLogin(t, "reader@example.com", "user")
	adminToken := env.registerAndLogin(t, "admin@example.com", "admin")

	t.Run("non-admin forbidden", func(t *testing.T) {
		w := env.request(t, "POST", "/api/admin/train", userToken, nil)
		if w.Code != http.StatusForbidden {
			t.Errorf("Status = %d, want 403", w.Code)
		}
	})

	t.Run("train on empty corpus succeeds", func(t *testing.T) {
		w := env.request(t, "POST", "/api/admin/train", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("enrich pass", func(t *testing.T) {
		w := env.request(t, "POST", "/api/admin/enrich", adminToken, nil)
		if w.Code != http.StatusOK {
			t.Errorf("Status = %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHealthAndDocs(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Health status = %d, want 200", w.Code)
	}
	var health struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	json.Unmarshal(w.Body.Bytes(), &health)
	if health.Status != "healthy" || health.Service != "veritascope" {
		t.Errorf("Health = %+v", health)
	}

	// Unknown docs must 404, never read arbitrary files.
	w = env.request(t, "GET", "/docs/../../etc/passwd", "", nil)
	if w.Code == http.StatusOK {
		t.Error("Docs endpoint served an unexpected path")
	}
	w = env.request(t, "GET", "/docs/SECRETS", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Unknown doc status = %d, want 404", w.Code)
	}
}

func TestTrendStream(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "reader@example.com", "user")
	env.seedEnrichedArticle(t, "live trending story", 1)

	server := httptest.NewServer(env.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/trends?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Websocket dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snapshot struct {
		TrendingArticles []json.RawMessage `json:"trending_articles"`
	}
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("Failed to read snapshot frame: %v", err)
	}
	if len(snapshot.TrendingArticles) != 1 {
		t.Errorf("Streamed snapshot has %d trending articles, want 1", len(snapshot.TrendingArticles))
	}

	// Without a token the upgrade is rejected before reaching the hub.
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws/trends", nil)
	if err == nil {
		t.Fatal("Expected unauthenticated dial to fail")
	}
	if resp != nil && resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Unauthenticated upgrade status = %d, want 401", resp.StatusCode)
	}
}
