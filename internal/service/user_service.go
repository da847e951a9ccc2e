package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
)

// UserService manages account state.
type UserService struct {
	store  repository.Store
	events publisher
	logger *zap.Logger
	now    Clock
}

// UserDependencies bundles collaborators.
type UserDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewUserService creates the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := loggerOrNop(deps.Logger)
	return &UserService{
		store:  deps.Store,
		events: publisher{dispatcher: deps.Dispatcher, logger: logger},
		logger: logger,
		now:    clockOrDefault(deps.Clock),
	}
}

// GetUser loads an account.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID)
	}
	return user, nil
}

// SetActive toggles whether an account can sign in and receive assignments.
// Deactivating a user unassigns every issue assigned to them in the same
// transaction, one unassign audit entry per issue.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool, actorID string) (*domain.User, error) {
	var (
		updated    *domain.User
		unassigned []string
	)
	now := s.now()

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		user, err := stores.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		updated = user
		if user.IsActive == active {
			return nil
		}
		user.IsActive = active
		user.UpdatedAt = now
		if err := stores.Users().Update(ctx, user); err != nil {
			return err
		}
		if active {
			return nil
		}
		unassigned, err = unassignAll(ctx, stores, userID, actorID, now)
		return err
	})
	if err != nil {
		return nil, storeError(err, "user", userID)
	}

	for _, issueID := range unassigned {
		s.events.publish(ctx, events.NewEvent(events.EventIssueAssigned, issueID, actorID, now,
			events.IssueAssignedPayload{OldAssignee: strPtr(userID)}))
	}
	s.logger.Info("user activity changed",
		zap.String("user_id", userID),
		zap.Bool("active", updated.IsActive),
		zap.Int("unassigned_issues", len(unassigned)),
		zap.String("actor_id", actorID))
	return updated, nil
}

// unassignAll clears userID from every issue it is assigned to and returns
// the affected issue IDs.
func unassignAll(ctx context.Context, stores repository.Stores, userID, actorID string, now time.Time) ([]string, error) {
	issues, err := stores.Issues().List(ctx, domain.IssueFilter{AssignedTo: strPtr(userID)})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(issues))
	for i := range issues {
		issue, err := stores.Issues().GetForUpdate(ctx, issues[i].ID)
		if err != nil {
			return nil, err
		}
		if issue.AssignedTo == nil || *issue.AssignedTo != userID {
			continue
		}
		previous := issue.AssignedTo
		issue.AssignedTo = nil
		issue.UpdatedAt = now
		if err := stores.Issues().Save(ctx, issue); err != nil {
			return nil, err
		}
		if err := stores.Audit().Append(ctx, &domain.AuditEntry{
			ID:            uuid.NewString(),
			IssueID:       issue.ID,
			ActorID:       actorID,
			Action:        domain.AuditActionUnassign,
			PreviousValue: previous,
			CreatedAt:     now,
		}); err != nil {
			return nil, err
		}
		ids = append(ids, issue.ID)
	}
	return ids, nil
}
