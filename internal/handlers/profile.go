package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"veritascope/internal/auth"
	"veritascope/internal/models"
)

// ProfileHandler serves the logged-in account's profile.
type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

func (h *ProfileHandler) currentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(auth.ContextUserID)
	userID, ok := raw.(uuid.UUID)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Username  *string `json:"username"`
	Interests *string `json:"interests"`
}

// Update handles PUT /api/profile. Fields left out of the body keep their
// stored values.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Interests != nil {
		user.Interests = strings.TrimSpace(*req.Interests)
	}

	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, user)
}
