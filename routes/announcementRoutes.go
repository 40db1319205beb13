package routes

import (
	"civicflow-be/controllers"
	"civicflow-be/middlewares"
	"civicflow-be/models"

	"github.com/gin-gonic/gin"
)

// AnnouncementRoutes sets up the announcement routes
func AnnouncementRoutes(r *gin.Engine, anc *controllers.AnnouncementController) {
	announcement := r.Group("/api/announcement", middlewares.AuthMiddleware())
	{
		announcement.POST("", middlewares.RequireRole(models.HeadOfDepartment), anc.CreateAnnouncement)
		announcement.GET("", anc.ListAnnouncements)
	}
}
