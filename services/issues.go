package services

import (
	"context"
	"fmt"
	"time"

	"civicpulse-be/models"
	"civicpulse-be/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueService orchestrates the issue lifecycle: it derives priority,
// department and SLA deadline, persists the issue, and fans out audit
// records and notifications around every mutation.
type IssueService struct {
	issues   IssueStore
	users    UserStore
	audit    *AuditRecorder
	notifier *Notifier
	log      *logrus.Logger
	now      func() time.Time
}

func NewIssueService(issues IssueStore, users UserStore, audit *AuditRecorder, notifier *Notifier, log *logrus.Logger) *IssueService {
	return &IssueService{
		issues:   issues,
		users:    users,
		audit:    audit,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

type CreateIssueInput struct {
	Title        string
	Description  string
	Category     string
	Urgency      int
	Severity     int
	PublicImpact int
}

// UpdateIssueInput uses pointers for partial-update semantics: nil fields
// are left untouched on the stored issue.
type UpdateIssueInput struct {
	Title        *string
	Description  *string
	Category     *string
	Status       *string
	Urgency      *int
	Severity     *int
	PublicImpact *int
}

// Create derives the priority fields, persists the issue, notifies every
// admin and writes the ISSUE_CREATED audit record.
func (s *IssueService) Create(ctx context.Context, actor Actor, in CreateIssueInput) (*models.Issue, error) {
	now := s.now()

	priority := utils.CalculatePriority(in.Urgency, in.Severity, in.PublicImpact, now, now)

	issue := &models.Issue{
		ID:            primitive.NewObjectID(),
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Citizen:       actor.ID,
		Urgency:       in.Urgency,
		Severity:      in.Severity,
		PublicImpact:  in.PublicImpact,
		PriorityScore: priority.Score,
		PriorityLevel: priority.Level,
		Status:        models.StatusSubmitted,
		Department:    utils.AssignDepartment(in.Category),
		SLADeadline:   utils.CalculateSLA(priority.Level, now),
		CreatedBy:     actor.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.issues.Insert(ctx, issue); err != nil {
		return nil, err
	}

	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		s.log.WithError(err).Warn("admin lookup failed, skipping create notifications")
	} else if err := s.notifier.SendToAdmins(ctx, admins, NotificationParams{
		Title:      "New Issue Created",
		Message:    fmt.Sprintf("New issue %q submitted.", issue.Title),
		IssueID:    issue.ID,
		IssueTitle: issue.Title,
		Category:   issue.Category,
		Status:     string(issue.Status),
		Priority:   string(issue.PriorityLevel),
	}); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, issue.ID, models.IssueCreated, nil, issue, actor.ID); err != nil {
		return nil, err
	}

	return issue, nil
}

// Update applies the fields present in the input, recomputes the derived
// fields, persists, notifies the citizen on a status change and writes the
// ISSUE_UPDATED record with both snapshots. Citizens are limited to their
// own issues and cannot change status. isOverdue is never written here;
// only the sweeper sets it.
func (s *IssueService) Update(ctx context.Context, actor Actor, id primitive.ObjectID, in UpdateIssueInput) (*models.Issue, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, ErrIssueNotFound
	}

	// Citizens may only touch their own issues and never the status
	// field; triage is an admin concern.
	if actor.Role != models.RoleAdmin {
		if issue.Citizen != actor.ID {
			return nil, ErrForbidden
		}
		if in.Status != nil {
			return nil, ErrForbidden
		}
	}

	prev := *issue
	now := s.now()

	if in.Urgency != nil {
		issue.Urgency = *in.Urgency
	}
	if in.Severity != nil {
		issue.Severity = *in.Severity
	}
	if in.PublicImpact != nil {
		issue.PublicImpact = *in.PublicImpact
	}
	if in.Status != nil {
		issue.Status = models.IssueStatus(*in.Status)
	}
	if in.Category != nil {
		issue.Category = *in.Category
		issue.Department = utils.AssignDepartment(*in.Category)
	}
	if in.Title != nil {
		issue.Title = *in.Title
	}
	if in.Description != nil {
		issue.Description = *in.Description
	}

	// Priority is always recomputed: even with unchanged inputs the
	// age-based weight may have advanced since the last write.
	priority := utils.CalculatePriority(issue.Urgency, issue.Severity, issue.PublicImpact, issue.CreatedAt, now)
	issue.PriorityScore = priority.Score
	if priority.Level != issue.PriorityLevel {
		issue.PriorityLevel = priority.Level
		issue.SLADeadline = utils.CalculateSLA(priority.Level, now)
	}
	issue.UpdatedAt = now

	if err := s.issues.Replace(ctx, issue); err != nil {
		return nil, err
	}

	if in.Status != nil && issue.Status != prev.Status {
		citizen, err := s.users.FindByID(ctx, issue.Citizen)
		if err != nil {
			s.log.WithError(err).WithField("citizen", issue.Citizen.Hex()).Warn("citizen lookup failed, skipping status notification")
		} else if citizen != nil {
			if err := s.notifier.Send(ctx, NotificationParams{
				RecipientID:    citizen.ID,
				RecipientEmail: citizen.Email,
				RecipientName:  citizen.Name,
				Title:          "Issue Status Updated",
				Message:        fmt.Sprintf("Your issue %q is now %s", issue.Title, issue.Status),
				IssueID:        issue.ID,
				IssueTitle:     issue.Title,
				Category:       issue.Category,
				Status:         string(issue.Status),
				Priority:       string(issue.PriorityLevel),
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := s.audit.Record(ctx, issue.ID, models.IssueUpdated, &prev, issue, actor.ID); err != nil {
		return nil, err
	}

	return issue, nil
}

// Delete removes an issue. Citizens may only delete their own issues;
// admins may delete any.
func (s *IssueService) Delete(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if issue == nil {
		return ErrIssueNotFound
	}

	if actor.Role != models.RoleAdmin && issue.Citizen != actor.ID {
		return ErrForbidden
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}

	return s.audit.Record(ctx, issue.ID, models.IssueDeleted, issue, nil, actor.ID)
}
