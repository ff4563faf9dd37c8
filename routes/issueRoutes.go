package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the issue lifecycle routes
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController, createLimit int) {
	group := r.Group("/api/issue", middlewares.AuthMiddleware())
	{
		group.POST("/create", middlewares.IssueRateLimiter(createLimit), issues.Create)
		group.GET("", issues.List)
		group.GET("/my", issues.MyIssues)
		group.GET("/audit/:id", issues.AuditTrail)
		group.GET("/:id", issues.Get)
		group.PUT("/:id", issues.Update)
		group.DELETE("/:id", issues.Delete)
	}
}
