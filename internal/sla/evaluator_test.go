package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(DefaultCalendar(time.UTC), DefaultPolicy())
}

func TestEvaluate_ResolvedSameDay(t *testing.T) {
	closed := at(15, 14, 0)
	issue := &domain.Issue{
		ID:        "i-1",
		Priority:  domain.IssuePriorityCritical,
		CreatedAt: at(15, 10, 0),
		ClosedAt:  &closed,
	}

	report, err := newTestEvaluator().Evaluate(issue, at(20, 12, 0))

	require.NoError(t, err)
	assert.InDelta(t, 4.0, report.Resolution.ElapsedHours, 1e-9)
	assert.True(t, report.Resolution.Completed)
	assert.False(t, report.Resolution.Breached)
	assert.Equal(t, 24.0, report.Resolution.ThresholdHours)
}

func TestEvaluate_OpenClockRunsUntilNow(t *testing.T) {
	issue := &domain.Issue{
		ID:        "i-2",
		Priority:  domain.IssuePriorityCritical,
		CreatedAt: at(15, 9, 0),
	}

	report, err := newTestEvaluator().Evaluate(issue, at(15, 14, 0))

	require.NoError(t, err)
	assert.False(t, report.FirstResponse.Completed)
	assert.InDelta(t, 5.0, report.FirstResponse.ElapsedHours, 1e-9)
	assert.True(t, report.FirstResponse.Breached)
	assert.False(t, report.Resolution.Breached)
}

func TestEvaluate_MissingCreatedAtFailsClosed(t *testing.T) {
	issue := &domain.Issue{ID: "i-3", Priority: domain.IssuePriorityLow}

	report, err := newTestEvaluator().Evaluate(issue, at(15, 10, 0))

	assert.ErrorIs(t, err, ErrDataIntegrity)
	assert.True(t, report.FirstResponse.Breached)
	assert.True(t, report.Resolution.Breached)
	assert.Zero(t, report.Resolution.ElapsedHours)
}

func TestEvaluate_ClosedBeforeCreatedFailsClosed(t *testing.T) {
	closed := at(14, 10, 0)
	issue := &domain.Issue{ID: "i-4", Priority: domain.IssuePriorityLow, CreatedAt: at(15, 10, 0), ClosedAt: &closed}

	_, err := newTestEvaluator().Evaluate(issue, at(15, 10, 0))

	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestResolutionAndFirstResponseHours(t *testing.T) {
	ev := newTestEvaluator()
	responded := at(15, 11, 30)
	closed := at(16, 10, 0)
	issue := &domain.Issue{CreatedAt: at(15, 10, 0), FirstResponseAt: &responded, ClosedAt: &closed}

	hours, ok, err := ev.ResolutionHours(issue)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 8.0, hours, 1e-9)

	hours, ok, err = ev.FirstResponseHours(issue)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 1.5, hours, 1e-9)

	_, ok, err = ev.ResolutionHours(&domain.Issue{CreatedAt: at(15, 10, 0)})
	require.NoError(t, err)
	assert.False(t, ok)
}
