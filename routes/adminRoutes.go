package routes

import (
	"civicpulse-be/controllers"
	"civicpulse-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the admin-only user management and dashboard routes
func AdminRoutes(r *gin.Engine, admin *controllers.AdminController) {
	group := r.Group("/api/admin", middlewares.AuthMiddleware(), middlewares.RequireRoles("admin"))
	{
		group.GET("/users", admin.ListUsers)
		group.GET("/users/:id", admin.GetUser)
		group.PUT("/users/:id/role", admin.UpdateUserRole)
		group.DELETE("/users/:id", admin.DeleteUser)
		group.GET("/dashboard", admin.Dashboard)
	}
}
