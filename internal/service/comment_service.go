package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

const commentPreviewLength = 140

// CommentService records comments and internal notes.
type CommentService struct {
	store  repository.Store
	events publisher
	now    Clock
}

// CommentDependencies bundles collaborators.
type CommentDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// NewCommentService creates the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		store:  deps.Store,
		events: publisher{dispatcher: deps.Dispatcher, logger: loggerOrNop(deps.Logger)},
		now:    clockOrDefault(deps.Clock),
	}
}

// AddComment appends a comment to an issue in any status and touches the
// issue's updatedAt. A public comment from anyone but the requester counts
// as the first response when none was recorded yet.
func (s *CommentService) AddComment(ctx context.Context, issueID, authorID, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewEmptyContent()
	}

	now := s.now()
	comment := &domain.Comment{
		ID:         uuid.NewString(),
		IssueID:    issueID,
		AuthorID:   authorID,
		Content:    content,
		IsInternal: isInternal,
		CreatedAt:  now,
	}

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		issue, err := stores.Issues().GetForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if err := stores.Comments().Create(ctx, comment); err != nil {
			return err
		}
		issue.UpdatedAt = now
		if !isInternal && issue.FirstResponseAt == nil && authorID != issue.EmployeeID {
			issue.FirstResponseAt = timePtr(now)
		}
		return stores.Issues().Save(ctx, issue)
	})
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}

	s.events.publish(ctx, events.NewEvent(events.EventIssueCommentAdded, issueID, authorID, now,
		events.IssueCommentAddedPayload{
			CommentID:   comment.ID,
			IsInternal:  isInternal,
			BodyPreview: stringPreview(content, commentPreviewLength),
		}))
	return comment, nil
}

// ListComments returns the comments of an issue as viewer may see them.
// Internal notes are never returned to requesters.
func (s *CommentService) ListComments(ctx context.Context, issueID string, viewer domain.Viewer) ([]domain.Comment, error) {
	issue, err := s.store.Issues().GetByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}
	if !canView(viewer, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.store.Comments().ListByIssue(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}
	return VisibleComments(comments, viewer.Role), nil
}

// VisibleComments filters comments for a reader with role.
func VisibleComments(comments []domain.Comment, role domain.UserRole) []domain.Comment {
	if role.Staff() {
		return comments
	}
	return lo.Filter(comments, func(c domain.Comment, _ int) bool {
		return !c.IsInternal
	})
}
