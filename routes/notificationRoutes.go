package routes

import (
	"civicflow-be/controllers"
	"civicflow-be/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the notification routes
func NotificationRoutes(r *gin.Engine, nc *controllers.NotificationController) {
	notification := r.Group("/api/notification", middlewares.AuthMiddleware())
	{
		notification.GET("", nc.ListNotifications)
		notification.PATCH("/:id/read", nc.MarkRead)
	}
}
