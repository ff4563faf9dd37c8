package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically flags open issues whose SLA deadline has passed and
// notifies every admin. The isOverdue=false selection filter makes each
// sweep idempotent: an issue is flagged and announced at most once per
// transition into the overdue state.
type Sweeper struct {
	issues   IssueStore
	users    UserStore
	notifier *Notifier
	interval time.Duration
	log      *logrus.Logger
	now      func() time.Time
}

func NewSweeper(issues IssueStore, users UserStore, notifier *Notifier, interval time.Duration, log *logrus.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Sweeper{
		issues:   issues,
		users:    users,
		notifier: notifier,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval. Errors
// are logged and the next tick retries naturally, since unflagged overdue
// issues remain eligible.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.WithField("interval", s.interval).Info("overdue sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("overdue sweeper stopped")
			return
		case <-ticker.C:
			flagged, err := s.SweepOnce(ctx)
			if err != nil {
				s.log.WithError(err).Error("overdue sweep failed")
				continue
			}
			if flagged > 0 {
				s.log.WithField("flagged", flagged).Info("overdue sweep flagged issues")
			}
		}
	}
}

// SweepOnce scans for open issues past their deadline that are not yet
// flagged, marks each overdue and notifies all admins. It returns the
// number of issues flagged.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now()

	overdue, err := s.issues.FindOverdueCandidates(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	admins, err := s.users.FindAdmins(ctx)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for i := range overdue {
		issue := &overdue[i]

		// Flag before notifying so a crash mid-loop cannot announce
		// the same issue twice on the next tick.
		if err := s.issues.MarkOverdue(ctx, issue.ID, now); err != nil {
			s.log.WithError(err).WithField("issue", issue.ID.Hex()).Error("failed to flag overdue issue")
			continue
		}
		flagged++

		if err := s.notifier.SendToAdmins(ctx, admins, NotificationParams{
			Title:      "Issue Overdue",
			Message:    fmt.Sprintf("Issue %q is overdue.", issue.Title),
			IssueID:    issue.ID,
			IssueTitle: issue.Title,
			Category:   issue.Category,
			Status:     string(issue.Status),
			Priority:   string(issue.PriorityLevel),
		}); err != nil {
			s.log.WithError(err).WithField("issue", issue.ID.Hex()).Error("failed to notify admins of overdue issue")
		}
	}

	return flagged, nil
}
