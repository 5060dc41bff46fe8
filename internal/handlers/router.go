package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"veritascope/internal/auth"
	"veritascope/internal/topics"
	"veritascope/internal/trends"
	"veritascope/internal/worker"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	DB            *gorm.DB
	AuthService   *auth.Service
	TopicService  *topics.Service
	TrendDetector *trends.Detector
	WorkerService *worker.WorkerService
}

// SetupRouter wires every endpoint onto a gin engine.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	authHandler := NewAuthHandler(deps.DB, deps.AuthService)
	articlesHandler := NewArticlesHandler(deps.DB)
	analyticsHandler := NewAnalyticsHandler(deps.DB)
	trendsHandler := NewTrendsHandler(deps.TrendDetector, 0)
	adminHandler := NewAdminHandler(deps.WorkerService, deps.TopicService)
	profileHandler := NewProfileHandler(deps.DB)
	docsHandler := NewDocsHandler()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "veritascope",
			"worker":  deps.WorkerService.GetStatus(),
		})
	})

	r.GET("/docs/:doc", docsHandler.ServeMarkdownAsHTML)

	requireAuth := deps.AuthService.Middleware()

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		api.GET("/articles", requireAuth, articlesHandler.List)
		api.GET("/articles/:id", requireAuth, articlesHandler.Detail)
		api.GET("/summary", requireAuth, articlesHandler.Summary)
		api.GET("/suggest", requireAuth, articlesHandler.Suggest)

		api.GET("/profile", requireAuth, profileHandler.Get)
		api.PUT("/profile", requireAuth, profileHandler.Update)

		api.GET("/topics", requireAuth, analyticsHandler.Topics)
		api.GET("/top_topics", requireAuth, analyticsHandler.TopTopics)

		analyticsRoutes := api.Group("/analytics", requireAuth)
		{
			analyticsRoutes.GET("/volume", analyticsHandler.Volume)
			analyticsRoutes.GET("/sentiment", analyticsHandler.Sentiment)
			analyticsRoutes.GET("/sentiment/distribution", analyticsHandler.SentimentDistribution)
			analyticsRoutes.GET("/topics/:id", analyticsHandler.TopicSeries)
		}

		api.GET("/trends", requireAuth, trendsHandler.Snapshot)
		api.GET("/trending-articles", requireAuth, trendsHandler.TrendingArticles)
		api.GET("/trending-topics", requireAuth, trendsHandler.TrendingTopics)

		api.GET("/worker/status", requireAuth, adminHandler.WorkerStatus)

		adminRoutes := api.Group("/admin", requireAuth, auth.RequireRole("admin"))
		{
			adminRoutes.POST("/enrich", adminHandler.Enrich)
			adminRoutes.POST("/train", adminHandler.Train)
		}
	}

	r.GET("/ws/trends", requireAuth, trendsHandler.Stream)

	return r
}
