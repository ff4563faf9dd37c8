package controllers

import (
	"math"
	"net/http"

	"civicpulse-be/models"
	"civicpulse-be/stores"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AdminController covers user administration and the dashboard. Every
// route behind it is gated by the admin role middleware.
type AdminController struct {
	users         *stores.UserStore
	issues        *stores.IssueStore
	notifications *stores.NotificationStore
}

func NewAdminController(users *stores.UserStore, issues *stores.IssueStore, notifications *stores.NotificationStore) *AdminController {
	return &AdminController{users: users, issues: issues, notifications: notifications}
}

// ListUsers returns users with search and pagination
func (ac *AdminController) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	page, limit := parsePagination(c)

	users, total, err := ac.users.List(ctx, c.Query("search"), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"users":       users,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
	})
}

// GetUser returns one user by id
func (ac *AdminController) GetUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	user, err := ac.users.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateUserRole promotes or demotes a user
func (ac *AdminController) UpdateUserRole(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input struct {
		Role string `json:"role" binding:"required,oneof=citizen admin"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ac.users.UpdateRole(ctx, id, models.UserRole(input.Role)); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User role updated successfully"})
}

// DeleteUser removes a user account
func (ac *AdminController) DeleteUser(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ac.users.Delete(ctx, id); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
}

// Dashboard aggregates issue counts for the admin overview: totals,
// grouping by priority/department/status, overdue count and the SLA
// compliance percentage.
func (ac *AdminController) Dashboard(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	totalIssues, err := ac.issues.Count(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	byPriority, err := ac.issues.CountsByField(ctx, "priorityLevel")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	byDepartment, err := ac.issues.CountsByField(ctx, "department")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	byStatus, err := ac.issues.CountsByField(ctx, "status")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	closedStatuses := []string{string(models.StatusResolved), string(models.StatusClosed)}

	pending, err := ac.issues.Count(ctx, bson.M{"status": bson.M{"$nin": closedStatuses}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	resolved, err := ac.issues.Count(ctx, bson.M{"status": bson.M{"$in": closedStatuses}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	resolvedWithinSLA, err := ac.issues.Count(ctx, bson.M{
		"status":    bson.M{"$in": closedStatuses},
		"isOverdue": false,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	overdueIssues, err := ac.issues.Count(ctx, bson.M{"isOverdue": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	slaCompliance := 0.0
	if resolved > 0 {
		slaCompliance = math.Round(float64(resolvedWithinSLA)/float64(resolved)*10000) / 100
	}

	recentNotifications, err := ac.notifications.Recent(ctx, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalIssues":         totalIssues,
			"issuesByPriority":    byPriority,
			"issuesByDepartment":  byDepartment,
			"issuesByStatus":      byStatus,
			"pending":             pending,
			"resolved":            resolved,
			"overdueIssues":       overdueIssues,
			"slaCompliance":       slaCompliance,
			"recentNotifications": recentNotifications,
		},
	})
}
