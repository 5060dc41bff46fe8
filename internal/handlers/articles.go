package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"veritascope/internal/articles"
	"veritascope/internal/models"
)

// ArticlesHandler serves the enriched article list, detail and summary
// endpoints.
type ArticlesHandler struct {
	service *articles.Service
}

func NewArticlesHandler(db *gorm.DB) *ArticlesHandler {
	return &ArticlesHandler{service: articles.NewService(db)}
}

// List handles GET /api/articles
func (h *ArticlesHandler) List(c *gin.Context) {
	query := c.Query("q")

	results, err := h.service.Search(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve articles"})
		return
	}

	views := h.service.Views(results)
	c.JSON(http.StatusOK, gin.H{
		"articles": views,
		"count":    len(views),
	})
}

// Detail handles GET /api/articles/:id
func (h *ArticlesHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
		return
	}

	article, err := h.service.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	views := h.service.Views([]models.Article{*article})
	c.JSON(http.StatusOK, views[0])
}

// Suggest handles GET /api/suggest
func (h *ArticlesHandler) Suggest(c *gin.Context) {
	suggestions, err := h.service.Suggest(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load suggestions"})
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// Summary handles GET /api/summary
func (h *ArticlesHandler) Summary(c *gin.Context) {
	query := c.Query("q")

	results, err := h.service.Search(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve articles"})
		return
	}

	views := h.service.Views(results)
	c.JSON(http.StatusOK, gin.H{
		"summary": articles.Summarize(views, query),
		"count":   len(views),
	})
}
