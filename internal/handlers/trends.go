package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"veritascope/internal/trends"
)

// TrendsHandler serves the trending snapshot endpoints and the websocket
// stream.
type TrendsHandler struct {
	detector     *trends.Detector
	pushInterval time.Duration
	upgrader     websocket.Upgrader
}

func NewTrendsHandler(detector *trends.Detector, pushInterval time.Duration) *TrendsHandler {
	if pushInterval <= 0 {
		pushInterval = 30 * time.Second
	}
	return &TrendsHandler{
		detector:     detector,
		pushInterval: pushInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Snapshot handles GET /api/trends
func (h *TrendsHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.detector.Snapshot())
}

// TrendingArticles handles GET /api/trending-articles
func (h *TrendsHandler) TrendingArticles(c *gin.Context) {
	snapshot := h.detector.Snapshot()
	c.JSON(http.StatusOK, gin.H{"trending_articles": snapshot.TrendingArticles})
}

// TrendingTopics handles GET /api/trending-topics
func (h *TrendsHandler) TrendingTopics(c *gin.Context) {
	snapshot := h.detector.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"topics":           snapshot.Topics,
		"keywords":         snapshot.Keywords,
		"trend_categories": snapshot.TrendCategories,
	})
}

// Stream handles GET /ws/trends: pushes a fresh snapshot immediately and
// then on every tick until the client goes away.
func (h *TrendsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Reader goroutine: its only job is to notice the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pushInterval)
	defer ticker.Stop()

	if err := conn.WriteJSON(h.detector.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(h.detector.Snapshot()); err != nil {
				return
			}
		}
	}
}
