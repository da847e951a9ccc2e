package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/events"
	"github.com/spec-kit/grievance-service/internal/repository/memory"
	"github.com/spec-kit/grievance-service/internal/sla"
)

const (
	requesterID      = "emp-1"
	otherRequesterID = "emp-2"
	resolverA        = "res-a"
	resolverB        = "res-b"
	inactiveResolver = "res-off"
	adminID          = "admin-1"
)

// 2024-01-15 is a Monday.
var monday = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) record(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store       *memory.Store
	clock       *fakeClock
	log         *eventLog
	evaluator   *sla.Evaluator
	issues      *IssueService
	assignments *AssignmentService
	comments    *CommentService
	users       *UserService
	analytics   *AnalyticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	clock := &fakeClock{now: monday}
	dispatcher := events.NewInMemoryDispatcher()
	log := &eventLog{}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, log.record)
	}
	evaluator := sla.NewEvaluator(sla.DefaultCalendar(time.UTC), sla.DefaultPolicy())
	catalog := domain.NewTypeCatalog([]domain.IssueType{
		{ID: "payroll", Name: "Payroll", SubTypes: []string{"salary", "bonus"}},
		{ID: "other", Name: "Other"},
	})
	logger := zap.NewNop()

	f := &fixture{
		store:     store,
		clock:     clock,
		log:       log,
		evaluator: evaluator,
		issues: NewIssueService(IssueDependencies{
			Store: store, Evaluator: evaluator, Catalog: catalog,
			Dispatcher: dispatcher, Logger: logger, Clock: clock.Now,
		}),
		assignments: NewAssignmentService(AssignmentDependencies{
			Store: store, Dispatcher: dispatcher, Logger: logger, Clock: clock.Now,
		}),
		comments: NewCommentService(CommentDependencies{
			Store: store, Dispatcher: dispatcher, Logger: logger, Clock: clock.Now,
		}),
		users: NewUserService(UserDependencies{
			Store: store, Dispatcher: dispatcher, Logger: logger, Clock: clock.Now,
		}),
		analytics: NewAnalyticsService(AnalyticsDependencies{
			Store: store, Evaluator: evaluator, Logger: logger, Clock: clock.Now,
		}),
	}

	f.seedUser(t, requesterID, domain.UserRoleRequester, true)
	f.seedUser(t, otherRequesterID, domain.UserRoleRequester, true)
	f.seedUser(t, resolverA, domain.UserRoleResolver, true)
	f.seedUser(t, resolverB, domain.UserRoleResolver, true)
	f.seedUser(t, inactiveResolver, domain.UserRoleResolver, false)
	f.seedUser(t, adminID, domain.UserRoleAdmin, true)
	return f
}

func (f *fixture) seedUser(t *testing.T, id string, role domain.UserRole, active bool) {
	t.Helper()
	require.NoError(t, f.store.Users().Create(context.Background(), &domain.User{
		ID:        id,
		Name:      id,
		Email:     id + "@example.com",
		Role:      role,
		IsActive:  active,
		CreatedAt: monday,
		UpdatedAt: monday,
	}))
}

// seedIssue stores an issue directly, bypassing the lifecycle.
func (f *fixture) seedIssue(t *testing.T, mutate func(*domain.Issue)) *domain.Issue {
	t.Helper()
	now := f.clock.Now()
	issue := &domain.Issue{
		ID:         uuid.NewString(),
		Title:      "Salary not credited",
		Status:     domain.IssueStatusOpen,
		Priority:   domain.IssuePriorityMedium,
		EmployeeID: requesterID,
		City:       "Pune",
		Cluster:    "west",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(issue)
	}
	require.NoError(t, f.store.Issues().Save(context.Background(), issue))
	return issue
}

func (f *fixture) stored(t *testing.T, id string) *domain.Issue {
	t.Helper()
	issue, err := f.store.Issues().GetByID(context.Background(), id)
	require.NoError(t, err)
	return issue
}

func (f *fixture) audit(t *testing.T, id string) []domain.AuditEntry {
	t.Helper()
	entries, err := f.store.Audit().ListByIssue(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func withStatus(status domain.IssueStatus) func(*domain.Issue) {
	return func(i *domain.Issue) {
		i.Status = status
		if status.Terminal() {
			i.ClosedAt = timePtr(i.CreatedAt)
		}
	}
}

func requester(id string) domain.Viewer {
	return domain.Viewer{ID: id, Role: domain.UserRoleRequester}
}

func resolver(id string) domain.Viewer {
	return domain.Viewer{ID: id, Role: domain.UserRoleResolver}
}
