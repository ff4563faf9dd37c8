package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"civicpulse-be/models"
	"civicpulse-be/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notifierFixture() (*Notifier, *fakeNotificationStore, *fakePusher, *fakeMailer) {
	store := &fakeNotificationStore{}
	pusher := &fakePusher{}
	mailer := &fakeMailer{}
	n := NewNotifier(store, pusher, mailer, testLogger())
	n.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return n, store, pusher, mailer
}

func params(recipient primitive.ObjectID) NotificationParams {
	return NotificationParams{
		RecipientID:    recipient,
		RecipientEmail: "citizen@example.com",
		RecipientName:  "Ada",
		Title:          "Issue Status Updated",
		Message:        `Your issue "Pothole" is now Resolved`,
		IssueID:        primitive.NewObjectID(),
		IssueTitle:     "Pothole",
		Category:       "road damage",
		Status:         "Resolved",
		Priority:       "High",
	}
}

func TestNotifierSendPersistsPushesAndMails(t *testing.T) {
	n, store, pusher, mailer := notifierFixture()
	recipient := primitive.NewObjectID()
	p := params(recipient)

	require.NoError(t, n.Send(context.Background(), p))

	rows := store.byRecipient(recipient)
	require.Len(t, rows, 1)
	assert.Equal(t, p.Title, rows[0].Title)
	assert.Equal(t, p.Message, rows[0].Message)
	assert.Equal(t, p.IssueID, rows[0].Issue)
	assert.False(t, rows[0].IsRead)

	require.Len(t, pusher.events, 1)
	assert.Equal(t, recipient.Hex(), pusher.events[0].room)
	assert.Equal(t, "newNotification", pusher.events[0].event)

	payload := pusher.events[0].payload.(map[string]interface{})
	assert.Equal(t, rows[0].ID.Hex(), payload["_id"])
	assert.Equal(t, p.IssueID.Hex(), payload["issueId"])
	assert.Equal(t, "road damage", payload["category"])
	assert.Equal(t, "Resolved", payload["status"])
	assert.Equal(t, "High", payload["priority"])
	assert.Equal(t, false, payload["isRead"])

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "citizen@example.com", mailer.sent[0].to)
	assert.Equal(t, "issue-notification", mailer.sent[0].template)
}

func TestNotifierPushFailureIsSwallowed(t *testing.T) {
	n, store, pusher, mailer := notifierFixture()
	pusher.err = errors.New("no transport")
	recipient := primitive.NewObjectID()

	require.NoError(t, n.Send(context.Background(), params(recipient)))

	assert.Len(t, store.byRecipient(recipient), 1)
	assert.Len(t, mailer.sent, 1)
}

func TestNotifierMailFailureIsSwallowed(t *testing.T) {
	n, store, _, mailer := notifierFixture()
	mailer.err = errors.New("smtp down")
	recipient := primitive.NewObjectID()

	require.NoError(t, n.Send(context.Background(), params(recipient)))
	assert.Len(t, store.byRecipient(recipient), 1)
}

func TestNotifierPersistFailureAbortsDelivery(t *testing.T) {
	n, store, pusher, mailer := notifierFixture()
	store.insertErr = errors.New("write failed")

	err := n.Send(context.Background(), params(primitive.NewObjectID()))
	require.Error(t, err)
	assert.Empty(t, pusher.events)
	assert.Empty(t, mailer.sent)
}

func TestNotifierSendToAdmins(t *testing.T) {
	n, store, pusher, mailer := notifierFixture()

	admins := []models.User{
		{ID: primitive.NewObjectID(), Name: "Root", Email: "root@example.com", Role: models.RoleAdmin},
		{ID: primitive.NewObjectID(), Name: "Ops", Email: "ops@example.com", Role: models.RoleAdmin},
	}
	p := params(primitive.NewObjectID())

	require.NoError(t, n.SendToAdmins(context.Background(), admins, p))

	// one durable row and one mail per admin, one shared push
	assert.Len(t, store.byRecipient(admins[0].ID), 1)
	assert.Len(t, store.byRecipient(admins[1].ID), 1)
	assert.Len(t, mailer.sent, 2)
	require.Len(t, pusher.events, 1)
	assert.Equal(t, realtime.AdminRoom, pusher.events[0].room)
}
