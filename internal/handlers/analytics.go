package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"veritascope/internal/analytics"
	"veritascope/internal/models"
)

// AnalyticsHandler serves the dashboard time-series and forecast
// endpoints.
type AnalyticsHandler struct {
	db *gorm.DB
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

// service builds an analytics service honoring ?days= and ?horizon=.
func (h *AnalyticsHandler) service(c *gin.Context) *analytics.Service {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "90"))
	horizon, _ := strconv.Atoi(c.DefaultQuery("horizon", "7"))
	return analytics.NewService(h.db, days, horizon)
}

// Volume handles GET /api/analytics/volume
func (h *AnalyticsHandler) Volume(c *gin.Context) {
	c.JSON(http.StatusOK, h.service(c).VolumeForecast())
}

// Sentiment handles GET /api/analytics/sentiment
func (h *AnalyticsHandler) Sentiment(c *gin.Context) {
	c.JSON(http.StatusOK, h.service(c).SentimentForecast())
}

// SentimentDistribution handles GET /api/analytics/sentiment/distribution
func (h *AnalyticsHandler) SentimentDistribution(c *gin.Context) {
	c.JSON(http.StatusOK, h.service(c).SentimentDistribution())
}

// TopicSeries handles GET /api/analytics/topics/:id
func (h *AnalyticsHandler) TopicSeries(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic ID"})
		return
	}
	c.JSON(http.StatusOK, h.service(c).TopicForecast(topicID))
}

// Topics handles GET /api/topics
func (h *AnalyticsHandler) Topics(c *gin.Context) {
	var topics []models.Topic
	if err := h.db.Order("id").Find(&topics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve topics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// TopTopics handles GET /api/top_topics
func (h *AnalyticsHandler) TopTopics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	service := analytics.NewService(h.db, days, analytics.DefaultHorizon)
	c.JSON(http.StatusOK, gin.H{"top_topics": service.TopTopics(limit)})
}
