package services

import (
	"context"
	"testing"
	"time"

	"civicpulse-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lifecycleEnv struct {
	svc    *IssueService
	issues *fakeIssueStore
	audit  *fakeAuditStore
	notifs *fakeNotificationStore
	pusher *fakePusher
	clock  *time.Time
}

func lifecycleFixture(users ...*models.User) *lifecycleEnv {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	log := testLogger()

	issues := newFakeIssueStore()
	userStore := newFakeUserStore(users...)
	auditStore := &fakeAuditStore{}
	notifStore := &fakeNotificationStore{}
	pusher := &fakePusher{}

	recorder := NewAuditRecorder(auditStore, userStore, log)
	notifier := NewNotifier(notifStore, pusher, &fakeMailer{}, log)
	svc := NewIssueService(issues, userStore, recorder, notifier, log)

	env := &lifecycleEnv{svc: svc, issues: issues, audit: auditStore, notifs: notifStore, pusher: pusher, clock: &now}
	clock := func() time.Time { return *env.clock }
	svc.now = clock
	recorder.now = clock
	notifier.now = clock
	return env
}

func (e *lifecycleEnv) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func citizen() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com", Role: models.RoleCitizen}
}

func admin(email string) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Root", Email: email, Role: models.RoleAdmin}
}

func TestCreateIssueDerivesFields(t *testing.T) {
	reporter := citizen()
	adminA := admin("a@example.com")
	adminB := admin("b@example.com")
	env := lifecycleFixture(reporter, adminA, adminB)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title:        "Pothole on 5th",
		Description:  "Deep pothole near the intersection",
		Category:     "road damage",
		Urgency:      9,
		Severity:     9,
		PublicImpact: 9,
	})
	require.NoError(t, err)

	// 0.3*9 + 0.3*9 + 0.2*9 + 0.2*1 = 7.4
	assert.InDelta(t, 7.4, issue.PriorityScore, 0.001)
	assert.Equal(t, models.PriorityMedium, issue.PriorityLevel)
	assert.Equal(t, models.PublicWorks, issue.Department)
	assert.Equal(t, models.StatusSubmitted, issue.Status)
	assert.WithinDuration(t, env.clock.Add(48*time.Hour), issue.SLADeadline, time.Second)
	assert.False(t, issue.IsOverdue)
	assert.Equal(t, reporter.ID, issue.Citizen)

	// one notification per admin, none for the reporter
	assert.Len(t, env.notifs.byRecipient(adminA.ID), 1)
	assert.Len(t, env.notifs.byRecipient(adminB.ID), 1)
	assert.Empty(t, env.notifs.byRecipient(reporter.ID))

	recs, err := env.audit.FindByIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.IssueCreated, recs[0].Action)
	assert.Nil(t, recs[0].PreviousValue)
	require.NotNil(t, recs[0].NewValue)
	assert.Equal(t, "Pothole on 5th", recs[0].NewValue["title"])
	assert.Equal(t, reporter.ID, recs[0].PerformedBy)
}

func TestCreateIssueHighPriority(t *testing.T) {
	reporter := citizen()
	env := lifecycleFixture(reporter)

	issue, err := env.svc.Create(context.Background(), Actor{ID: reporter.ID, Role: reporter.Role}, CreateIssueInput{
		Title:        "Burst water main",
		Description:  "Street flooding",
		Category:     "water leakage",
		Urgency:      10,
		Severity:     10,
		PublicImpact: 10,
	})
	require.NoError(t, err)

	assert.InDelta(t, 8.2, issue.PriorityScore, 0.001)
	assert.Equal(t, models.PriorityHigh, issue.PriorityLevel)
	assert.Equal(t, models.WaterDepartment, issue.Department)
	assert.WithinDuration(t, env.clock.Add(24*time.Hour), issue.SLADeadline, time.Second)
}

func TestUpdateIssuePartialFields(t *testing.T) {
	reporter := citizen()
	adm := admin("root@example.com")
	env := lifecycleFixture(reporter, adm)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 9, Severity: 9, PublicImpact: 9,
	})
	require.NoError(t, err)
	originalDeadline := issue.SLADeadline

	// 13h later the time weight advances from 1 to 2
	env.advance(13 * time.Hour)
	status := string(models.StatusAssigned)
	updated, err := env.svc.Update(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID, UpdateIssueInput{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, updated.Status)
	assert.Equal(t, issue.Title, updated.Title)
	assert.Equal(t, issue.Category, updated.Category)
	assert.Equal(t, issue.Urgency, updated.Urgency)
	assert.Equal(t, models.PublicWorks, updated.Department)

	// score recomputed with weight 2: 2.7+2.7+1.8+0.4 = 7.6, still Medium
	assert.InDelta(t, 7.6, updated.PriorityScore, 0.001)
	assert.Equal(t, models.PriorityMedium, updated.PriorityLevel)
	// level unchanged, so the deadline stays put
	assert.Equal(t, originalDeadline, updated.SLADeadline)

	// citizen notified of the status change
	rows := env.notifs.byRecipient(reporter.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, "Issue Status Updated", rows[0].Title)
}

func TestUpdateRecomputesDeadlineOnLevelChange(t *testing.T) {
	reporter := citizen()
	env := lifecycleFixture(reporter)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 9, Severity: 9, PublicImpact: 9,
	})
	require.NoError(t, err)

	// 50h later the weight is 4: 2.7+2.7+1.8+0.8 = 8.0 -> High
	env.advance(50 * time.Hour)
	desc := "still not fixed"
	updated, err := env.svc.Update(context.Background(), actor, issue.ID, UpdateIssueInput{Description: &desc})
	require.NoError(t, err)

	assert.InDelta(t, 8.0, updated.PriorityScore, 0.001)
	assert.Equal(t, models.PriorityHigh, updated.PriorityLevel)
	assert.WithinDuration(t, env.clock.Add(24*time.Hour), updated.SLADeadline, time.Second)
}

func TestUpdateCategoryReroutesDepartment(t *testing.T) {
	reporter := citizen()
	env := lifecycleFixture(reporter)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title: "Mess", Description: "d", Category: "road damage",
		Urgency: 3, Severity: 3, PublicImpact: 3,
	})
	require.NoError(t, err)
	require.Equal(t, models.PublicWorks, issue.Department)

	category := "garbage overflow"
	updated, err := env.svc.Update(context.Background(), actor, issue.ID, UpdateIssueInput{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, models.Sanitation, updated.Department)
}

func TestUpdateDoesNotResetOverdueFlag(t *testing.T) {
	reporter := citizen()
	env := lifecycleFixture(reporter)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)
	require.NoError(t, env.issues.MarkOverdue(context.Background(), issue.ID, *env.clock))

	title := "Pothole, still"
	updated, err := env.svc.Update(context.Background(), actor, issue.ID, UpdateIssueInput{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated.IsOverdue)
}

func TestUpdateSameStatusDoesNotNotify(t *testing.T) {
	reporter := citizen()
	adm := admin("root@example.com")
	env := lifecycleFixture(reporter, adm)

	issue, err := env.svc.Create(context.Background(), Actor{ID: reporter.ID, Role: reporter.Role}, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)

	status := string(models.StatusSubmitted)
	_, err = env.svc.Update(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID, UpdateIssueInput{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, env.notifs.byRecipient(reporter.ID))
}

func TestCitizenUpdateRestrictions(t *testing.T) {
	owner := citizen()
	stranger := citizen()
	env := lifecycleFixture(owner, stranger)
	ownerActor := Actor{ID: owner.ID, Role: owner.Role}

	issue, err := env.svc.Create(context.Background(), ownerActor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)

	// another citizen cannot touch the issue
	title := "hijacked"
	_, err = env.svc.Update(context.Background(), Actor{ID: stranger.ID, Role: stranger.Role}, issue.ID, UpdateIssueInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	// the owner cannot change status
	status := string(models.StatusResolved)
	_, err = env.svc.Update(context.Background(), ownerActor, issue.ID, UpdateIssueInput{Status: &status})
	assert.ErrorIs(t, err, ErrForbidden)

	// but may edit their own fields
	_, err = env.svc.Update(context.Background(), ownerActor, issue.ID, UpdateIssueInput{Title: &title})
	assert.NoError(t, err)
}

func TestUpdateMissingIssue(t *testing.T) {
	env := lifecycleFixture()
	title := "x"
	_, err := env.svc.Update(context.Background(), Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}, primitive.NewObjectID(), UpdateIssueInput{Title: &title})
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestDeleteAuthorization(t *testing.T) {
	owner := citizen()
	stranger := citizen()
	adm := admin("root@example.com")
	env := lifecycleFixture(owner, stranger, adm)
	ownerActor := Actor{ID: owner.ID, Role: owner.Role}

	issue, err := env.svc.Create(context.Background(), ownerActor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)

	err = env.svc.Delete(context.Background(), Actor{ID: stranger.ID, Role: stranger.Role}, issue.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.svc.Delete(context.Background(), ownerActor, issue.ID))

	// already gone
	err = env.svc.Delete(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID)
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestAdminCanDeleteAnyIssue(t *testing.T) {
	owner := citizen()
	adm := admin("root@example.com")
	env := lifecycleFixture(owner, adm)

	issue, err := env.svc.Create(context.Background(), Actor{ID: owner.ID, Role: owner.Role}, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID))
}

func TestAuditTrailAcrossLifecycle(t *testing.T) {
	reporter := citizen()
	adm := admin("root@example.com")
	env := lifecycleFixture(reporter, adm)
	actor := Actor{ID: reporter.ID, Role: reporter.Role}

	issue, err := env.svc.Create(context.Background(), actor, CreateIssueInput{
		Title: "Pothole", Description: "d", Category: "road damage",
		Urgency: 5, Severity: 5, PublicImpact: 5,
	})
	require.NoError(t, err)

	env.advance(time.Hour)
	status := string(models.StatusInProgress)
	_, err = env.svc.Update(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID, UpdateIssueInput{Status: &status})
	require.NoError(t, err)

	env.advance(time.Hour)
	require.NoError(t, env.svc.Delete(context.Background(), Actor{ID: adm.ID, Role: adm.Role}, issue.ID))

	recs, err := env.audit.FindByIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// newest first
	assert.Equal(t, models.IssueDeleted, recs[0].Action)
	assert.Equal(t, models.IssueUpdated, recs[1].Action)
	assert.Equal(t, models.IssueCreated, recs[2].Action)

	assert.Nil(t, recs[2].PreviousValue)
	assert.Nil(t, recs[0].NewValue)

	// the update's previousValue matches the create's newValue on the
	// untouched fields and differs on the updated one
	assert.Equal(t, recs[2].NewValue["title"], recs[1].PreviousValue["title"])
	assert.Equal(t, recs[2].NewValue["status"], recs[1].PreviousValue["status"])
	assert.Equal(t, string(models.StatusInProgress), recs[1].NewValue["status"])
}
