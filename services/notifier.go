package services

import (
	"context"
	"time"

	"civicpulse-be/models"
	"civicpulse-be/realtime"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationParams carries everything the dispatcher needs for one
// recipient: the durable row fields plus the context echoed into the
// realtime payload and the mail template.
type NotificationParams struct {
	RecipientID    primitive.ObjectID
	RecipientEmail string
	RecipientName  string
	Title          string
	Message        string
	IssueID        primitive.ObjectID
	IssueTitle     string
	Category       string
	Status         string
	Priority       string
}

// Notifier persists a notification, pushes it over the realtime channel
// and emails the recipient. The durable row is the source of truth: its
// write must succeed, while push and mail are best-effort.
type Notifier struct {
	store  NotificationStore
	pusher Pusher
	mailer Mailer
	log    *logrus.Logger
	now    func() time.Time
}

func NewNotifier(store NotificationStore, pusher Pusher, mailer Mailer, log *logrus.Logger) *Notifier {
	return &Notifier{store: store, pusher: pusher, mailer: mailer, log: log, now: time.Now}
}

// Send delivers one notification to one recipient. Ordering is fixed:
// persist, then push to the recipient's room, then mail. A client that
// missed the push discovers the row on its next poll.
func (n *Notifier) Send(ctx context.Context, p NotificationParams) error {
	notif, err := n.persist(ctx, p)
	if err != nil {
		return err
	}

	if err := n.pusher.Emit(p.RecipientID.Hex(), "newNotification", n.payload(notif, p)); err != nil {
		n.log.WithError(err).WithField("recipient", p.RecipientID.Hex()).Warn("notification push failed")
	}

	n.mail(p)
	return nil
}

// SendToAdmins fans one notice out to every admin: a durable row and a
// mail per admin, plus a single push to the shared admin room.
func (n *Notifier) SendToAdmins(ctx context.Context, admins []models.User, p NotificationParams) error {
	var first *models.Notification

	for _, admin := range admins {
		ap := p
		ap.RecipientID = admin.ID
		ap.RecipientEmail = admin.Email
		ap.RecipientName = admin.Name

		notif, err := n.persist(ctx, ap)
		if err != nil {
			return err
		}
		if first == nil {
			first = notif
		}
	}

	if first != nil {
		if err := n.pusher.Emit(realtime.AdminRoom, "newNotification", n.payload(first, p)); err != nil {
			n.log.WithError(err).Warn("admin notification push failed")
		}
	}

	for _, admin := range admins {
		ap := p
		ap.RecipientEmail = admin.Email
		ap.RecipientName = admin.Name
		n.mail(ap)
	}
	return nil
}

func (n *Notifier) persist(ctx context.Context, p NotificationParams) (*models.Notification, error) {
	notif := &models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: p.RecipientID,
		Title:     p.Title,
		Message:   p.Message,
		Issue:     p.IssueID,
		IsRead:    false,
		CreatedAt: n.now(),
	}
	if err := n.store.Insert(ctx, notif); err != nil {
		return nil, err
	}
	return notif, nil
}

func (n *Notifier) payload(notif *models.Notification, p NotificationParams) map[string]interface{} {
	return map[string]interface{}{
		"_id":       notif.ID.Hex(),
		"title":     p.Title,
		"message":   p.Message,
		"issueId":   p.IssueID.Hex(),
		"category":  p.Category,
		"status":    p.Status,
		"priority":  p.Priority,
		"isRead":    false,
		"createdAt": notif.CreatedAt,
	}
}

func (n *Notifier) mail(p NotificationParams) {
	err := n.mailer.Send(p.RecipientEmail, p.Title, "issue-notification", map[string]interface{}{
		"userName":   p.RecipientName,
		"message":    p.Message,
		"issueTitle": p.IssueTitle,
		"category":   p.Category,
		"status":     p.Status,
		"priority":   p.Priority,
	})
	if err != nil {
		n.log.WithError(err).WithField("to", p.RecipientEmail).Warn("notification mail failed")
	}
}
