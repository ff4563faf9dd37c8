package services

import (
	"context"
	"errors"
	"time"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrForbidden     = errors.New("not authorized")
)

// Actor is the already-authenticated identity every lifecycle operation
// runs as. Authentication itself happens upstream in the middleware.
type Actor struct {
	ID   primitive.ObjectID
	Role models.UserRole
}

// IssueStore is the persistence surface the lifecycle core needs.
type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	Replace(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindOverdueCandidates(ctx context.Context, now time.Time) ([]models.Issue, error)
	MarkOverdue(ctx context.Context, id primitive.ObjectID, now time.Time) error
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAdmins(ctx context.Context) ([]models.User, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type AuditStore interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
	FindByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditRecord, error)
}

// Pusher is the realtime channel. The hub implements it; tests fake it.
type Pusher interface {
	Emit(room, event string, payload interface{}) error
}

// Mailer sends a templated mail. Failures are always non-fatal to callers.
type Mailer interface {
	Send(to, subject, template string, data map[string]interface{}) error
}
