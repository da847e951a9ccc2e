package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

func TestCanTransition_EdgeTable(t *testing.T) {
	allowed := map[string]bool{
		"open->in_progress":      true,
		"open->resolved":         true,
		"open->closed":           true,
		"in_progress->open":      true,
		"in_progress->resolved":  true,
		"in_progress->escalated": true,
		"resolved->closed":       true,
		"resolved->open":         true,
		"closed->open":           true,
		"escalated->in_progress": true,
		"escalated->resolved":    true,
	}

	for _, from := range domain.AllIssueStatuses {
		for _, to := range domain.AllIssueStatuses {
			key := fmt.Sprintf("%s->%s", from, to)
			assert.Equal(t, allowed[key], CanTransition(from, to), key)
		}
	}
	assert.False(t, CanTransition("unknown", domain.IssueStatusOpen))
}

func TestUpdateStatus_RejectsEveryUnlistedPair(t *testing.T) {
	ctx := context.Background()
	for _, from := range domain.AllIssueStatuses {
		for _, to := range domain.AllIssueStatuses {
			if CanTransition(from, to) {
				continue
			}
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				f := newFixture(t)
				issue := f.seedIssue(t, withStatus(from))

				_, err := f.issues.UpdateStatus(ctx, issue.ID, to, resolverA, "")

				require.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition), "got %v", err)
				details := apperrors.ToDomainError(err).Details
				assert.Equal(t, string(from), details["current_status"])
				assert.Equal(t, string(to), details["requested_status"])
				assert.Equal(t, from, f.stored(t, issue.ID).Status)
				assert.Empty(t, f.audit(t, issue.ID))
				assert.Empty(t, f.log.types())
			})
		}
	}
}

func TestUpdateStatus_ClosedToResolvedIsInvalid(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, withStatus(domain.IssueStatusClosed))

	_, err := f.issues.UpdateStatus(context.Background(), issue.ID, domain.IssueStatusResolved, resolverA, "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.IssueStatusClosed, f.stored(t, issue.ID).Status)
}

func TestUpdateStatus_StampsAndClearsClosedAt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	f.clock.Set(monday.Add(4 * time.Hour))
	resolved, err := f.issues.UpdateStatus(ctx, issue.ID, domain.IssueStatusResolved, resolverA, "")
	require.NoError(t, err)
	require.NotNil(t, resolved.ClosedAt)
	assert.Equal(t, monday.Add(4*time.Hour), *resolved.ClosedAt)

	reopened, err := f.issues.UpdateStatus(ctx, issue.ID, domain.IssueStatusOpen, resolverA, "")
	require.NoError(t, err)
	assert.Nil(t, reopened.ClosedAt)

	closed, err := f.issues.UpdateStatus(ctx, issue.ID, domain.IssueStatusClosed, resolverA, "")
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)
	assert.NotNil(t, f.stored(t, issue.ID).ClosedAt)
}

func TestUpdateStatus_AppendsOneAuditEntryPerTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	_, err := f.issues.UpdateStatus(ctx, issue.ID, domain.IssueStatusInProgress, resolverA, "")
	require.NoError(t, err)
	_, err = f.issues.UpdateStatus(ctx, issue.ID, domain.IssueStatusEscalated, resolverA, "needs payroll team")
	require.NoError(t, err)

	entries := f.audit(t, issue.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionStatusChange, entries[0].Action)
	assert.Equal(t, "open", *entries[0].PreviousValue)
	assert.Equal(t, "in_progress", *entries[0].NewValue)
	assert.Nil(t, entries[0].Reason)
	assert.Equal(t, "escalated", *entries[1].NewValue)
	require.NotNil(t, entries[1].Reason)
	assert.Equal(t, "needs payroll team", *entries[1].Reason)
	assert.Equal(t, []events.EventType{events.EventIssueStatusChanged, events.EventIssueStatusChanged}, f.log.types())
}

func TestUpdateStatus_FirstResponseRequiresNonRequester(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	own := f.seedIssue(t, nil)
	other := f.seedIssue(t, nil)

	byRequester, err := f.issues.UpdateStatus(ctx, own.ID, domain.IssueStatusClosed, requesterID, "sorted myself")
	require.NoError(t, err)
	assert.Nil(t, byRequester.FirstResponseAt)

	f.clock.Set(monday.Add(time.Hour))
	byResolver, err := f.issues.UpdateStatus(ctx, other.ID, domain.IssueStatusInProgress, resolverA, "")
	require.NoError(t, err)
	require.NotNil(t, byResolver.FirstResponseAt)
	assert.Equal(t, monday.Add(time.Hour), *byResolver.FirstResponseAt)

	f.clock.Set(monday.Add(2 * time.Hour))
	again, err := f.issues.UpdateStatus(ctx, other.ID, domain.IssueStatusResolved, resolverB, "")
	require.NoError(t, err)
	assert.Equal(t, monday.Add(time.Hour), *again.FirstResponseAt)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.issues.UpdateStatus(context.Background(), "missing", domain.IssueStatusResolved, resolverA, "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateStatus_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, nil)
	f.store.SetUnavailable(errors.New("connection refused"))

	_, err := f.issues.UpdateStatus(context.Background(), issue.ID, domain.IssueStatusResolved, resolverA, "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))
}

func TestReopen_FromResolvedAndClosedAlike(t *testing.T) {
	ctx := context.Background()
	for _, from := range []domain.IssueStatus{domain.IssueStatusResolved, domain.IssueStatusClosed} {
		t.Run(string(from), func(t *testing.T) {
			f := newFixture(t)
			issue := f.seedIssue(t, withStatus(from))

			reopened, err := f.issues.Reopen(ctx, issue.ID, requesterID, "still not paid")

			require.NoError(t, err)
			assert.Equal(t, domain.IssueStatusOpen, reopened.Status)
			assert.Nil(t, reopened.ClosedAt)
			entries := f.audit(t, issue.ID)
			require.Len(t, entries, 1)
			assert.Equal(t, domain.AuditActionStatusChange, entries[0].Action)
			assert.Equal(t, string(from), *entries[0].PreviousValue)
			assert.Equal(t, "still not paid", *entries[0].Reason)
		})
	}
}

func TestReopen_RejectsNonTerminalIssue(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, withStatus(domain.IssueStatusInProgress))

	_, err := f.issues.Reopen(context.Background(), issue.ID, requesterID, "")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, domain.IssueStatusInProgress, f.stored(t, issue.ID).Status)
}

func TestCreateIssue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	issue, err := f.issues.CreateIssue(ctx, requesterID, IssueCreateInput{
		Title:     "  Bonus missing  ",
		TypeID:    "payroll",
		SubTypeID: "bonus",
		City:      "Pune",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bonus missing", issue.Title)
	assert.Equal(t, domain.IssueStatusOpen, issue.Status)
	assert.Equal(t, domain.IssuePriorityMedium, issue.Priority)
	assert.Equal(t, monday, issue.CreatedAt)
	entries := f.audit(t, issue.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionCreate, entries[0].Action)
	assert.Equal(t, []events.EventType{events.EventIssueCreated}, f.log.types())
}

func TestCreateIssue_Validation(t *testing.T) {
	cases := map[string]IssueCreateInput{
		"blank title":      {Title: "   "},
		"unknown priority": {Title: "x", Priority: "whenever"},
		"unknown type":     {Title: "x", TypeID: "travel"},
		"unknown sub type": {Title: "x", TypeID: "payroll", SubTypeID: "tax"},
		"missing sub type": {Title: "x", TypeID: "payroll"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.issues.CreateIssue(context.Background(), requesterID, input)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestMapType(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	mapped, err := f.issues.MapType(ctx, issue.ID, "payroll", "salary", resolverA)
	require.NoError(t, err)
	assert.Equal(t, "payroll", mapped.TypeID)

	_, err = f.issues.MapType(ctx, issue.ID, "payroll", "salary", resolverA)
	require.NoError(t, err)

	entries := f.audit(t, issue.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionMapType, entries[0].Action)
	assert.Nil(t, entries[0].PreviousValue)
	assert.Equal(t, "payroll/salary", *entries[0].NewValue)
	assert.Equal(t, []events.EventType{events.EventIssueTypeMapped}, f.log.types())

	_, err = f.issues.MapType(ctx, issue.ID, "travel", "", resolverA)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetIssue_RequesterScope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, nil)

	_, err := f.issues.GetIssue(ctx, issue.ID, requester(requesterID))
	assert.NoError(t, err)
	_, err = f.issues.GetIssue(ctx, issue.ID, resolver(resolverA))
	assert.NoError(t, err)
	_, err = f.issues.GetIssue(ctx, issue.ID, requester(otherRequesterID))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = f.issues.ListAudit(ctx, issue.ID, requester(otherRequesterID))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestListIssues_RequesterSeesOnlyOwn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedIssue(t, nil)
	f.seedIssue(t, func(i *domain.Issue) { i.EmployeeID = otherRequesterID })

	own, err := f.issues.ListIssues(ctx, domain.IssueFilter{EmployeeID: strPtr(otherRequesterID)}, requester(requesterID))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, requesterID, own[0].EmployeeID)

	all, err := f.issues.ListIssues(ctx, domain.IssueFilter{}, resolver(resolverA))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSLAReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	issue := f.seedIssue(t, func(i *domain.Issue) {
		i.Priority = domain.IssuePriorityCritical
		i.Status = domain.IssueStatusResolved
		i.ClosedAt = timePtr(monday.Add(4 * time.Hour))
	})

	report, err := f.issues.SLAReport(ctx, issue.ID, resolver(resolverA))

	require.NoError(t, err)
	assert.InDelta(t, 4.0, report.Resolution.ElapsedHours, 1e-9)
	assert.Equal(t, 24.0, report.Resolution.ThresholdHours)
	assert.False(t, report.Resolution.Breached)
	assert.True(t, report.Resolution.Completed)
}

func TestSLAReport_MalformedCreatedAtIsDataIntegrity(t *testing.T) {
	f := newFixture(t)
	issue := f.seedIssue(t, func(i *domain.Issue) { i.CreatedAt = time.Time{} })

	_, err := f.issues.SLAReport(context.Background(), issue.ID, resolver(resolverA))

	require.True(t, apperrors.HasCode(err, apperrors.CodeDataIntegrity))
	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, true, details["resolution_breached"])
	assert.Equal(t, true, details["first_response_breached"])
}
