package services

import (
	"context"
	"time"

	"civicpulse-be/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditRecorder appends one immutable record per issue mutation and reads
// the trail back newest-first with the performer resolved for display.
type AuditRecorder struct {
	store AuditStore
	users UserStore
	log   *logrus.Logger
	now   func() time.Time
}

func NewAuditRecorder(store AuditStore, users UserStore, log *logrus.Logger) *AuditRecorder {
	return &AuditRecorder{store: store, users: users, log: log, now: time.Now}
}

// Record writes one audit entry. prev is nil for creates, next is nil for
// deletes. The write shares the caller's operation boundary: its failure
// propagates and aborts the mutation's response.
func (a *AuditRecorder) Record(ctx context.Context, issueID primitive.ObjectID, action models.AuditAction, prev, next *models.Issue, performedBy primitive.ObjectID) error {
	rec := &models.AuditRecord{
		ID:          primitive.NewObjectID(),
		Issue:       issueID,
		Action:      action,
		PerformedBy: performedBy,
		CreatedAt:   a.now(),
	}

	var err error
	if prev != nil {
		if rec.PreviousValue, err = snapshot(prev); err != nil {
			return err
		}
	}
	if next != nil {
		if rec.NewValue, err = snapshot(next); err != nil {
			return err
		}
	}

	return a.store.Insert(ctx, rec)
}

// Trail returns the issue's audit records newest first. A performer that
// no longer exists resolves to just the raw id.
func (a *AuditRecorder) Trail(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditEntry, error) {
	recs, err := a.store.FindByIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AuditEntry, 0, len(recs))
	for _, rec := range recs {
		performer := map[string]interface{}{"id": rec.PerformedBy}
		if user, err := a.users.FindByID(ctx, rec.PerformedBy); err == nil && user != nil {
			performer["name"] = user.Name
			performer["email"] = user.Email
		} else if err != nil {
			a.log.WithError(err).WithField("user", rec.PerformedBy.Hex()).Warn("audit performer lookup failed")
		}
		entries = append(entries, models.AuditEntry{AuditRecord: rec, Performer: performer})
	}
	return entries, nil
}

// snapshot flattens an issue into the document form stored on the record,
// so the trail survives later schema changes to the Issue struct.
func snapshot(issue *models.Issue) (bson.M, error) {
	raw, err := bson.Marshal(issue)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
