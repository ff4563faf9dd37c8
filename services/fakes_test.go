package services

import (
	"context"
	"io"
	"sync"
	"time"

	"civicpulse-be/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeIssueStore struct {
	mu        sync.Mutex
	issues    map[primitive.ObjectID]*models.Issue
	insertErr error
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (f *fakeIssueStore) Insert(_ context.Context, issue *models.Issue) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *issue
	f.issues[issue.ID] = &cp
	return nil
}

func (f *fakeIssueStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return nil, nil
	}
	cp := *issue
	return &cp, nil
}

func (f *fakeIssueStore) Replace(_ context.Context, issue *models.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *issue
	f.issues[issue.ID] = &cp
	return nil
}

func (f *fakeIssueStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.issues, id)
	return nil
}

func (f *fakeIssueStore) FindOverdueCandidates(_ context.Context, now time.Time) ([]models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Issue
	for _, issue := range f.issues {
		if issue.Status == models.StatusResolved || issue.Status == models.StatusClosed {
			continue
		}
		if !issue.SLADeadline.Before(now) || issue.IsOverdue {
			continue
		}
		out = append(out, *issue)
	}
	return out, nil
}

func (f *fakeIssueStore) MarkOverdue(_ context.Context, id primitive.ObjectID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if issue, ok := f.issues[id]; ok {
		issue.IsOverdue = true
		issue.UpdatedAt = now
	}
	return nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) FindAdmins(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Role == models.RoleAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeNotificationStore struct {
	mu        sync.Mutex
	rows      []models.Notification
	insertErr error
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) byRecipient(id primitive.ObjectID) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, row := range f.rows {
		if row.Recipient == id {
			out = append(out, row)
		}
	}
	return out
}

type fakeAuditStore struct {
	mu   sync.Mutex
	recs []models.AuditRecord
}

func (f *fakeAuditStore) Insert(_ context.Context, rec *models.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, *rec)
	return nil
}

// FindByIssue mirrors the mongo store's contract: newest first.
func (f *fakeAuditStore) FindByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditRecord
	for i := len(f.recs) - 1; i >= 0; i-- {
		if f.recs[i].Issue == issueID {
			out = append(out, f.recs[i])
		}
	}
	return out, nil
}

type pushedEvent struct {
	room    string
	event   string
	payload interface{}
}

type fakePusher struct {
	mu     sync.Mutex
	events []pushedEvent
	err    error
}

func (f *fakePusher) Emit(room, event string, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, pushedEvent{room: room, event: event, payload: payload})
	return nil
}

type sentMail struct {
	to       string
	subject  string
	template string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, template string, _ map[string]interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, template: template})
	return nil
}
