package controllers

import (
	"context"
	"strconv"
	"time"

	"civicpulse-be/models"
	"civicpulse-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// requestContext bounds every handler's store work the same way
func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// actorFromContext reads the identity the auth middleware stored. The
// boolean is false when the request carries no usable identity.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return services.Actor{}, false
	}

	idStr, ok := userID.(string)
	if !ok {
		return services.Actor{}, false
	}

	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return services.Actor{}, false
	}

	role := models.RoleCitizen
	if r, exists := c.Get("role"); exists {
		if rs, ok := r.(string); ok && rs != "" {
			role = models.UserRole(rs)
		}
	}

	return services.Actor{ID: id, Role: role}, true
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}
