package controllers

import (
	"net/http"

	"civicpulse-be/stores"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationController struct {
	notifications *stores.NotificationStore
}

func NewNotificationController(notifications *stores.NotificationStore) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// List returns the caller's notifications, newest first
func (nc *NotificationController) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	page, limit := parsePagination(c)

	notifications, total, err := nc.notifications.ListByRecipient(ctx, actor.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"totalPages":    totalPages(total, limit),
		"currentPage":   page,
	})
}

// MarkRead flags a single notification as read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := nc.notifications.MarkRead(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllRead flags every unread notification of the caller as read
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := nc.notifications.MarkAllRead(ctx, actor.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
