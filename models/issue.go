package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PriorityLevel enum
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "Low"
	PriorityMedium PriorityLevel = "Medium"
	PriorityHigh   PriorityLevel = "High"
)

// IssueStatus enum
type IssueStatus string

const (
	StatusSubmitted  IssueStatus = "Submitted"
	StatusAssigned   IssueStatus = "Assigned"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
	StatusClosed     IssueStatus = "Closed"
)

// Department enum
type Department string

const (
	PublicWorks     Department = "Public Works"
	Sanitation      Department = "Sanitation"
	WaterDepartment Department = "Water Department"
	General         Department = "General"
)

// ValidStatus reports whether s is one of the recognised status values.
// Ordering between statuses is deliberately not enforced.
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case StatusSubmitted, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Issue represents a civic issue reported by a citizen.
// priorityScore, priorityLevel, department and slaDeadline are derived
// fields kept consistent with urgency/severity/publicImpact/category on
// every mutation.
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Citizen       primitive.ObjectID `bson:"citizen" json:"citizen"`
	Urgency       int                `bson:"urgency" json:"urgency"`
	Severity      int                `bson:"severity" json:"severity"`
	PublicImpact  int                `bson:"publicImpact" json:"publicImpact"`
	PriorityScore float64            `bson:"priorityScore" json:"priorityScore"`
	PriorityLevel PriorityLevel      `bson:"priorityLevel" json:"priorityLevel"`
	Status        IssueStatus        `bson:"status" json:"status"`
	Department    Department         `bson:"department" json:"department"`
	IsOverdue     bool               `bson:"isOverdue" json:"isOverdue"`
	SLADeadline   time.Time          `bson:"slaDeadline" json:"slaDeadline"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
