package controllers

import (
	"net/http"

	"civicflow-be/models"
	"civicflow-be/store"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	store *store.Store
}

func NewUserController(s *store.Store) *UserController {
	return &UserController{store: s}
}

// ListAssignable returns the active users holding the requested role, the
// candidate list for assignment pickers. Citizens have no business here.
func (uc *UserController) ListAssignable(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	if actor.Role == models.Citizen {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		return
	}

	role := c.Query("role")
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	users, err := uc.store.Users.ListAssignable(c.Request.Context(), models.Role(role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, users)
}
