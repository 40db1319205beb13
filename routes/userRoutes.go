package routes

import (
	"civicflow-be/controllers"
	"civicflow-be/middlewares"

	"github.com/gin-gonic/gin"
)

// UserRoutes sets up the user routes
func UserRoutes(r *gin.Engine, uc *controllers.UserController) {
	user := r.Group("/api/user", middlewares.AuthMiddleware())
	{
		user.GET("/assignable", uc.ListAssignable)
	}
}
