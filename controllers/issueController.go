package controllers

import (
	"errors"
	"net/http"

	"civicpulse-be/models"
	"civicpulse-be/services"
	"civicpulse-be/stores"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueController exposes the issue lifecycle over HTTP. All derived-field
// and notification logic lives in the injected service; the controller
// only binds, authorizes via middleware, and shapes responses.
type IssueController struct {
	svc    *services.IssueService
	issues *stores.IssueStore
	users  *stores.UserStore
	audit  *services.AuditRecorder
}

func NewIssueController(svc *services.IssueService, issues *stores.IssueStore, users *stores.UserStore, audit *services.AuditRecorder) *IssueController {
	return &IssueController{svc: svc, issues: issues, users: users, audit: audit}
}

// Create handles the creation of a new issue
func (ic *IssueController) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title        string `json:"title" binding:"required,max=200"`
		Description  string `json:"description" binding:"required,max=1000"`
		Category     string `json:"category" binding:"required,max=100"`
		Urgency      int    `json:"urgency" binding:"required,min=1,max=10"`
		Severity     int    `json:"severity" binding:"required,min=1,max=10"`
		PublicImpact int    `json:"publicImpact" binding:"required,min=1,max=10"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ic.svc.Create(ctx, actor, services.CreateIssueInput{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Urgency:      input.Urgency,
		Severity:     input.Severity,
		PublicImpact: input.PublicImpact,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create issue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "issue": issue})
}

// List handles retrieving issues with filtering and pagination
func (ic *IssueController) List(c *gin.Context) {
	ctx, cancel := requestContext()
	defer cancel()

	page, limit := parsePagination(c)

	issues, total, err := ic.issues.List(ctx, stores.ListFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Priority:   c.Query("priority"),
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"issues":      ic.withCitizens(issues),
		"totalIssues": total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
	})
}

// MyIssues retrieves the caller's own issues
func (ic *IssueController) MyIssues(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	page, limit := parsePagination(c)

	issues, total, err := ic.issues.List(ctx, stores.ListFilter{
		Citizen: &actor.ID,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"issues":      issues,
		"totalIssues": total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
	})
}

// Get retrieves an issue by its ID with the citizen resolved
func (ic *IssueController) Get(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ic.issues.FindByID(ctx, issueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve issue"})
		return
	}
	if issue == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		return
	}

	citizenMap := map[string]interface{}{"id": issue.Citizen}
	if citizen, err := ic.users.FindByID(ctx, issue.Citizen); err == nil && citizen != nil {
		citizenMap["name"] = citizen.Name
		citizenMap["email"] = citizen.Email
		citizenMap["role"] = citizen.Role
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issue": issue, "citizen": citizenMap})
}

// Update applies a partial update to an issue
func (ic *IssueController) Update(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title        *string `json:"title,omitempty" binding:"omitempty,max=200"`
		Description  *string `json:"description,omitempty" binding:"omitempty,max=1000"`
		Category     *string `json:"category,omitempty" binding:"omitempty,max=100"`
		Status       *string `json:"status,omitempty"`
		Urgency      *int    `json:"urgency,omitempty" binding:"omitempty,min=1,max=10"`
		Severity     *int    `json:"severity,omitempty" binding:"omitempty,min=1,max=10"`
		PublicImpact *int    `json:"publicImpact,omitempty" binding:"omitempty,min=1,max=10"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Status != nil && !models.ValidStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := ic.svc.Update(ctx, actor, issueID, services.UpdateIssueInput{
		Title:        input.Title,
		Description:  input.Description,
		Category:     input.Category,
		Status:       input.Status,
		Urgency:      input.Urgency,
		Severity:     input.Severity,
		PublicImpact: input.PublicImpact,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this issue"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update issue"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "issue": issue})
}

// Delete removes an issue; citizens may only delete their own
func (ic *IssueController) Delete(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := ic.svc.Delete(ctx, actor, issueID); err != nil {
		switch {
		case errors.Is(err, services.ErrIssueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to delete this issue"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete issue"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Issue deleted"})
}

// AuditTrail returns the issue's mutation history, newest first
func (ic *IssueController) AuditTrail(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	entries, err := ic.audit.Trail(ctx, issueID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "logs": entries})
}

// withCitizens resolves each issue's citizen to a display identity for
// listings.
func (ic *IssueController) withCitizens(issues []models.Issue) []gin.H {
	ctx, cancel := requestContext()
	defer cancel()

	out := make([]gin.H, 0, len(issues))
	for _, issue := range issues {
		citizenMap := map[string]interface{}{"id": issue.Citizen}
		if citizen, err := ic.users.FindByID(ctx, issue.Citizen); err == nil && citizen != nil {
			citizenMap["name"] = citizen.Name
			citizenMap["email"] = citizen.Email
		}
		out = append(out, gin.H{"issue": issue, "citizen": citizenMap})
	}
	return out
}
