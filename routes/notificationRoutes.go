package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the notification inbox routes
func NotificationRoutes(r *gin.Engine, notifications *controllers.NotificationController) {
	group := r.Group("/api/notification", middlewares.AuthMiddleware())
	{
		group.GET("", notifications.List)
		group.PUT("/mark-all-read", notifications.MarkAllRead)
		group.PUT("/:id/read", notifications.MarkRead)
	}
}
