package routes

import (
	"civicpulse-be/middlewares"
	"civicpulse-be/realtime"

	"github.com/gin-gonic/gin"
)

// SocketRoutes exposes the realtime notification channel
func SocketRoutes(r *gin.Engine, hub *realtime.Hub) {
	r.GET("/api/ws", middlewares.AuthMiddleware(), hub.Handler())
}
