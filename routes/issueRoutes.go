package routes

import (
	"civicflow-be/controllers"
	"civicflow-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController) {
	issue := r.Group("/api/issue", middlewares.AuthMiddleware())
	{
		issue.POST("/create", middlewares.IssueRateLimiter(5), ic.CreateIssue)
		issue.GET("", ic.ListIssues)
		issue.GET("/mine", ic.MyIssues)
		issue.GET("/queue", ic.Queue)
		issue.GET("/analytics", ic.Analytics)
		issue.GET("/:id", ic.GetIssue)
		issue.POST("/:id/upvote", ic.ToggleUpvote)
		issue.POST("/:id/action", ic.Action)
		issue.POST("/report-draft", ic.ReportDraft)
	}
}
