package controllers

import (
	"net/http"

	"civicflow-be/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationController struct {
	store *store.Store
}

func NewNotificationController(s *store.Store) *NotificationController {
	return &NotificationController{store: s}
}

// ListNotifications returns the authenticated user's notifications,
// newest first.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := nc.store.Notifications.ListByUser(c.Request.Context(), actor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
	})
}

// MarkRead marks one of the user's notifications as read.
func (nc *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := nc.store.Notifications.MarkRead(c.Request.Context(), id, actor.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
