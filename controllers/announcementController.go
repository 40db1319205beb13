package controllers

import (
	"net/http"
	"time"

	"civicflow-be/models"
	"civicflow-be/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AnnouncementController struct {
	store *store.Store
}

func NewAnnouncementController(s *store.Store) *AnnouncementController {
	return &AnnouncementController{store: s}
}

// CreateAnnouncement publishes a department broadcast. Route is gated to
// the Head of Department.
func (anc *AnnouncementController) CreateAnnouncement(c *gin.Context) {
	var input struct {
		Title    string `json:"title" binding:"required,max=200"`
		Message  string `json:"message" binding:"required,max=2000"`
		Priority string `json:"priority" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidAnnouncementPriority(input.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	announcement := models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     input.Title,
		Message:   input.Message,
		Priority:  models.AnnouncementPriority(input.Priority),
		CreatedAt: time.Now(),
	}

	if err := anc.store.Announcements.Append(c.Request.Context(), announcement); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create announcement"})
		return
	}

	c.JSON(http.StatusCreated, announcement)
}

// ListAnnouncements returns all broadcasts, newest first.
func (anc *AnnouncementController) ListAnnouncements(c *gin.Context) {
	announcements, err := anc.store.Announcements.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve announcements"})
		return
	}

	c.JSON(http.StatusOK, announcements)
}
