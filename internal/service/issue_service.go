package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/sla"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// IssueService coordinates the issue lifecycle.
type IssueService struct {
	store     repository.Store
	evaluator *sla.Evaluator
	catalog   *domain.TypeCatalog
	events    publisher
	now       Clock
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	Store      repository.Store
	Evaluator  *sla.Evaluator
	Catalog    *domain.TypeCatalog
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// IssueCreateInput describes a new grievance.
type IssueCreateInput struct {
	Title       string
	Description string
	Priority    domain.IssuePriority
	TypeID      string
	SubTypeID   string
	City        string
	Cluster     string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.DefaultCalendar(nil), sla.DefaultPolicy())
	}
	return &IssueService{
		store:     deps.Store,
		evaluator: evaluator,
		catalog:   deps.Catalog,
		events:    publisher{dispatcher: deps.Dispatcher, logger: loggerOrNop(deps.Logger)},
		now:       clockOrDefault(deps.Clock),
	}
}

// CreateIssue opens a grievance on behalf of employeeID.
func (s *IssueService) CreateIssue(ctx context.Context, employeeID string, input IssueCreateInput) (*domain.Issue, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.IssuePriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}
	if input.TypeID != "" && !s.catalog.Resolve(input.TypeID, input.SubTypeID) {
		return nil, apperrors.NewValidationError("unknown issue type", map[string]any{
			"type_id":     input.TypeID,
			"sub_type_id": input.SubTypeID,
		})
	}

	now := s.now()
	issue := &domain.Issue{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.IssueStatusOpen,
		Priority:    priority,
		TypeID:      input.TypeID,
		SubTypeID:   input.SubTypeID,
		EmployeeID:  employeeID,
		City:        strings.TrimSpace(input.City),
		Cluster:     strings.TrimSpace(input.Cluster),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		if err := stores.Issues().Save(ctx, issue); err != nil {
			return err
		}
		return stores.Audit().Append(ctx, &domain.AuditEntry{
			ID:        uuid.NewString(),
			IssueID:   issue.ID,
			ActorID:   employeeID,
			Action:    domain.AuditActionCreate,
			NewValue:  strPtr(string(issue.Status)),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, storeError(err, "issue", issue.ID)
	}

	s.events.publish(ctx, events.NewEvent(events.EventIssueCreated, issue.ID, employeeID, now,
		events.IssueCreatedPayload{
			EmployeeID: employeeID,
			Priority:   issue.Priority,
			TypeID:     issue.TypeID,
			Title:      issue.Title,
		}))
	return issue, nil
}

// UpdateStatus moves an issue along one edge of the lifecycle and records a
// status_change audit entry. reason is stored verbatim and may be empty.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID string, next domain.IssueStatus, actorID, reason string) (*domain.Issue, error) {
	return s.transition(ctx, issueID, next, actorID, reason, false)
}

// Reopen returns a resolved or closed issue to open. Both origins are
// treated alike and recorded as an ordinary status_change; the reason is kept
// as opaque metadata.
func (s *IssueService) Reopen(ctx context.Context, issueID, actorID, reason string) (*domain.Issue, error) {
	return s.transition(ctx, issueID, domain.IssueStatusOpen, actorID, reason, true)
}

func (s *IssueService) transition(ctx context.Context, issueID string, next domain.IssueStatus, actorID, reason string, reopen bool) (*domain.Issue, error) {
	var (
		updated  *domain.Issue
		previous domain.IssueStatus
	)
	now := s.now()

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		issue, err := stores.Issues().GetForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		previous = issue.Status
		if !CanTransition(issue.Status, next) {
			return apperrors.NewInvalidTransition(string(issue.Status), string(next))
		}
		if reopen && !isReopen(issue.Status, next) {
			return apperrors.NewInvalidTransition(string(issue.Status), string(next))
		}

		issue.Status = next
		issue.UpdatedAt = now
		if next.Terminal() {
			issue.ClosedAt = timePtr(now)
		} else {
			issue.ClosedAt = nil
		}
		if issue.FirstResponseAt == nil && actorID != issue.EmployeeID {
			issue.FirstResponseAt = timePtr(now)
		}
		if err := stores.Issues().Save(ctx, issue); err != nil {
			return err
		}
		if err := stores.Audit().Append(ctx, &domain.AuditEntry{
			ID:            uuid.NewString(),
			IssueID:       issue.ID,
			ActorID:       actorID,
			Action:        domain.AuditActionStatusChange,
			PreviousValue: strPtr(string(previous)),
			NewValue:      strPtr(string(next)),
			Reason:        optionalString(reason),
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		updated = issue
		return nil
	})
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}

	s.events.publish(ctx, events.NewEvent(events.EventIssueStatusChanged, issueID, actorID, now,
		events.IssueStatusChangedPayload{
			OldStatus: previous,
			NewStatus: next,
			Reason:    reason,
			Reopened:  isReopen(previous, next),
		}))
	return updated, nil
}

// MapType re-classifies an issue against the type catalog. Mapping to the
// current classification is a no-op.
func (s *IssueService) MapType(ctx context.Context, issueID, typeID, subTypeID, actorID string) (*domain.Issue, error) {
	if !s.catalog.Resolve(typeID, subTypeID) {
		return nil, apperrors.NewValidationError("unknown issue type", map[string]any{
			"type_id":     typeID,
			"sub_type_id": subTypeID,
		})
	}

	var (
		updated *domain.Issue
		payload events.IssueTypeMappedPayload
		changed bool
	)
	now := s.now()

	err := s.store.WithTx(ctx, func(stores repository.Stores) error {
		issue, err := stores.Issues().GetForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		updated = issue
		if issue.TypeID == typeID && issue.SubTypeID == subTypeID {
			return nil
		}
		payload = events.IssueTypeMappedPayload{
			OldTypeID:    issue.TypeID,
			OldSubTypeID: issue.SubTypeID,
			NewTypeID:    typeID,
			NewSubTypeID: subTypeID,
		}
		issue.TypeID = typeID
		issue.SubTypeID = subTypeID
		issue.UpdatedAt = now
		if err := stores.Issues().Save(ctx, issue); err != nil {
			return err
		}
		changed = true
		return stores.Audit().Append(ctx, &domain.AuditEntry{
			ID:            uuid.NewString(),
			IssueID:       issue.ID,
			ActorID:       actorID,
			Action:        domain.AuditActionMapType,
			PreviousValue: optionalString(classification(payload.OldTypeID, payload.OldSubTypeID)),
			NewValue:      strPtr(classification(typeID, subTypeID)),
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}

	if changed {
		s.events.publish(ctx, events.NewEvent(events.EventIssueTypeMapped, issueID, actorID, now, payload))
	}
	return updated, nil
}

// GetIssue loads one issue. Requesters may only read their own.
func (s *IssueService) GetIssue(ctx context.Context, issueID string, viewer domain.Viewer) (*domain.Issue, error) {
	issue, err := s.store.Issues().GetByID(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}
	if !canView(viewer, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return issue, nil
}

// ListIssues returns issues matching filter. A requester's listing is always
// scoped to their own issues.
func (s *IssueService) ListIssues(ctx context.Context, filter domain.IssueFilter, viewer domain.Viewer) ([]domain.Issue, error) {
	if !viewer.Role.Staff() {
		filter.EmployeeID = strPtr(viewer.ID)
	}
	issues, err := s.store.Issues().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "issue", "")
	}
	return issues, nil
}

// ListAudit returns the audit trail of an issue in append order.
func (s *IssueService) ListAudit(ctx context.Context, issueID string, viewer domain.Viewer) ([]domain.AuditEntry, error) {
	if _, err := s.GetIssue(ctx, issueID, viewer); err != nil {
		return nil, err
	}
	entries, err := s.store.Audit().ListByIssue(ctx, issueID)
	if err != nil {
		return nil, storeError(err, "issue", issueID)
	}
	return entries, nil
}

// SLAReport measures both SLA clocks of an issue. Malformed timestamps are
// surfaced as a data-integrity error rather than as a metric.
func (s *IssueService) SLAReport(ctx context.Context, issueID string, viewer domain.Viewer) (*sla.Report, error) {
	issue, err := s.GetIssue(ctx, issueID, viewer)
	if err != nil {
		return nil, err
	}
	report, err := s.evaluator.Evaluate(issue, s.now())
	if errors.Is(err, sla.ErrDataIntegrity) {
		return nil, apperrors.NewDataIntegrity("issue timestamps cannot be measured", map[string]any{
			"issue_id":                issueID,
			"first_response_breached": report.FirstResponse.Breached,
			"resolution_breached":     report.Resolution.Breached,
		})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &report, nil
}

// Catalog exposes the type catalog for read endpoints.
func (s *IssueService) Catalog() *domain.TypeCatalog {
	return s.catalog
}

func canView(viewer domain.Viewer, issue *domain.Issue) bool {
	return viewer.Role.Staff() || issue.EmployeeID == viewer.ID
}

func classification(typeID, subTypeID string) string {
	if typeID == "" {
		return ""
	}
	if subTypeID == "" {
		return typeID
	}
	return typeID + "/" + subTypeID
}
