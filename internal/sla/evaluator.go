package sla

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// ErrDataIntegrity marks issues whose timestamps cannot be measured.
var ErrDataIntegrity = errors.New("sla: malformed issue timestamps")

// Measure is the state of one SLA clock.
type Measure struct {
	ElapsedHours   float64 `json:"elapsed_hours"`
	ThresholdHours float64 `json:"threshold_hours"`
	Completed      bool    `json:"completed"`
	Breached       bool    `json:"breached"`
}

// Report is the SLA view of a single issue.
type Report struct {
	IssueID       string               `json:"issue_id"`
	Priority      domain.IssuePriority `json:"priority"`
	FirstResponse Measure              `json:"first_response"`
	Resolution    Measure              `json:"resolution"`
}

// Evaluator combines a calendar with a threshold policy.
type Evaluator struct {
	Calendar Calendar
	Policy   *Policy
}

// NewEvaluator builds an evaluator.
func NewEvaluator(calendar Calendar, policy *Policy) *Evaluator {
	return &Evaluator{Calendar: calendar, Policy: policy}
}

// Evaluate measures both clocks for issue. Clocks still running are measured
// up to now. Malformed timestamps fail closed: both clocks report breached and
// ErrDataIntegrity is returned.
func (e *Evaluator) Evaluate(issue *domain.Issue, now time.Time) (Report, error) {
	report := Report{IssueID: issue.ID, Priority: issue.Priority}
	threshold, _ := e.Policy.Threshold(issue.Priority)
	report.FirstResponse.ThresholdHours = threshold.FirstResponseHours
	report.Resolution.ThresholdHours = threshold.ResolutionHours

	if err := validateTimestamps(issue); err != nil {
		report.FirstResponse.Breached = true
		report.Resolution.Breached = true
		return report, err
	}

	report.FirstResponse = e.measure(issue, KindFirstResponse, issue.FirstResponseAt, now, threshold)
	report.Resolution = e.measure(issue, KindResolution, issue.ClosedAt, now, threshold)
	return report, nil
}

// ResolutionHours is the working time from creation to closure.
// The second result is false for issues that are not closed.
func (e *Evaluator) ResolutionHours(issue *domain.Issue) (float64, bool, error) {
	if err := validateTimestamps(issue); err != nil {
		return 0, false, err
	}
	if issue.ClosedAt == nil {
		return 0, false, nil
	}
	return e.Calendar.WorkingHoursBetween(issue.CreatedAt, *issue.ClosedAt), true, nil
}

// FirstResponseHours is the working time from creation to first response.
// The second result is false when no response has been recorded.
func (e *Evaluator) FirstResponseHours(issue *domain.Issue) (float64, bool, error) {
	if err := validateTimestamps(issue); err != nil {
		return 0, false, err
	}
	if issue.FirstResponseAt == nil {
		return 0, false, nil
	}
	return e.Calendar.WorkingHoursBetween(issue.CreatedAt, *issue.FirstResponseAt), true, nil
}

func (e *Evaluator) measure(issue *domain.Issue, kind Kind, stoppedAt *time.Time, now time.Time, threshold Threshold) Measure {
	until := now
	if stoppedAt != nil {
		until = *stoppedAt
	}
	elapsed := e.Calendar.WorkingHoursBetween(issue.CreatedAt, until)
	return Measure{
		ElapsedHours:   elapsed,
		ThresholdHours: threshold.Hours(kind),
		Completed:      stoppedAt != nil,
		Breached:       e.Policy.IsBreached(issue.Priority, kind, elapsed),
	}
}

func validateTimestamps(issue *domain.Issue) error {
	if issue.CreatedAt.IsZero() {
		return fmt.Errorf("%w: issue %s has no created_at", ErrDataIntegrity, issue.ID)
	}
	if issue.ClosedAt != nil && issue.ClosedAt.Before(issue.CreatedAt) {
		return fmt.Errorf("%w: issue %s closed before it was created", ErrDataIntegrity, issue.ID)
	}
	if issue.FirstResponseAt != nil && issue.FirstResponseAt.Before(issue.CreatedAt) {
		return fmt.Errorf("%w: issue %s answered before it was created", ErrDataIntegrity, issue.ID)
	}
	return nil
}
