package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction enum
type AuditAction string

const (
	IssueCreated AuditAction = "ISSUE_CREATED"
	IssueUpdated AuditAction = "ISSUE_UPDATED"
	IssueDeleted AuditAction = "ISSUE_DELETED"
)

// AuditRecord is one immutable entry in the append-only audit log.
// PreviousValue and NewValue hold issue snapshots; create records carry
// only NewValue, delete records only PreviousValue.
type AuditRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Issue         primitive.ObjectID `bson:"issue" json:"issue"`
	Action        AuditAction        `bson:"action" json:"action"`
	PreviousValue bson.M             `bson:"previousValue,omitempty" json:"previousValue,omitempty"`
	NewValue      bson.M             `bson:"newValue,omitempty" json:"newValue,omitempty"`
	PerformedBy   primitive.ObjectID `bson:"performedBy" json:"performedBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// AuditEntry is an AuditRecord with the performer resolved for display.
type AuditEntry struct {
	AuditRecord
	Performer map[string]interface{} `json:"performedBy"`
}
