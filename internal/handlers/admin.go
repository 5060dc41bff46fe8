package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"veritascope/internal/topics"
	"veritascope/internal/worker"
)

// AdminHandler exposes the operational endpoints: run an enrichment pass
// now, retrain the topic model.
type AdminHandler struct {
	workerService *worker.WorkerService
	topicService  *topics.Service
}

func NewAdminHandler(workerService *worker.WorkerService, topicService *topics.Service) *AdminHandler {
	return &AdminHandler{workerService: workerService, topicService: topicService}
}

// Enrich handles POST /api/admin/enrich
func (h *AdminHandler) Enrich(c *gin.Context) {
	h.workerService.RunPassNow(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": "enrichment pass completed",
		"worker": h.workerService.GetStatus(),
	})
}

// Train handles POST /api/admin/train
func (h *AdminHandler) Train(c *gin.Context) {
	if err := h.topicService.Train(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Training failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "topic model trained"})
}

// WorkerStatus handles GET /api/worker/status
func (h *AdminHandler) WorkerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"worker_status": h.workerService.GetStatus()})
}
