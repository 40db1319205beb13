package controllers

import (
	"errors"
	"net/http"

	"civicflow-be/models"
	"civicflow-be/store"
	"civicflow-be/workflow"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentUser pulls the authenticated identity out of the gin context
// (set by the auth middleware) as a workflow Actor.
func currentUser(c *gin.Context) (workflow.Actor, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return workflow.Actor{}, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDVal.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return workflow.Actor{}, false
	}
	roleVal, _ := c.Get("role")
	role, _ := roleVal.(string)
	return workflow.Actor{ID: userID, Role: models.Role(role)}, true
}

// respondError maps workflow and store failures onto HTTP statuses. Every
// workflow failure is recoverable: the issue is untouched and the actor
// just sees the condition.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Issue was updated by someone else, please retry"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func issueIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}
