package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// AssignmentService handles issue assignment operations.
//
// Concurrent Assign calls on one issue are last-write-wins. Each call is a
// single atomic read-modify-write, but no version check spans calls, so the
// audit trail orders racing writes only by their own timestamps.
type AssignmentService struct {
	store  repository.Store
	events publisher
	now    Clock
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		store:  deps.Store,
		events: publisher{dispatcher: deps.Dispatcher, logger: loggerOrNop(deps.Logger)},
		now:    clockOrDefault(deps.Clock),
	}
}

// Assign sets or clears the assignee of an issue. A nil assigneeID
// unassigns. Assigning the current assignee again changes nothing and
// records nothing.
func (s *AssignmentService) Assign(ctx context.Context, issueID string, assigneeID *string, actorID string) (*domain.Issue, error) {
	var (
		updated  *domain.Issue
		previous *string
		changed  bool
	)
	now := s.now()

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		issue, err := stores.Issues().GetForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		updated = issue
		if issue.Status == domain.IssueStatusClosed {
			return apperrors.NewIssueClosed(issue.ID)
		}
		if assigneeID != nil {
			active, err := stores.Users().IsActive(ctx, *assigneeID)
			if err != nil {
				return err
			}
			if !active {
				return apperrors.NewUnknownAssignee(*assigneeID)
			}
		}
		if sameAssignee(issue.AssignedTo, assigneeID) {
			return nil
		}

		previous = issue.AssignedTo
		issue.AssignedTo = nil
		if assigneeID != nil {
			issue.AssignedTo = strPtr(*assigneeID)
		}
		issue.UpdatedAt = now
		if err := stores.Issues().Save(ctx, issue); err != nil {
			return err
		}

		action := domain.AuditActionAssign
		if assigneeID == nil {
			action = domain.AuditActionUnassign
		}
		changed = true
		return stores.Audit().Append(ctx, &domain.AuditEntry{
			ID:            uuid.NewString(),
			IssueID:       issue.ID,
			ActorID:       actorID,
			Action:        action,
			PreviousValue: previous,
			NewValue:      issue.AssignedTo,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}

	if changed {
		s.events.publish(ctx, events.NewEvent(events.EventIssueAssigned, issueID, actorID, now,
			events.IssueAssignedPayload{OldAssignee: previous, NewAssignee: updated.AssignedTo}))
	}
	return updated, nil
}

func sameAssignee(current, next *string) bool {
	if current == nil || next == nil {
		return current == nil && next == nil
	}
	return *current == *next
}
