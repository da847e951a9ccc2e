package sla

import (
	"github.com/spec-kit/grievance-service/internal/domain"
)

// Kind selects which SLA clock is being checked.
type Kind string

const (
	KindFirstResponse Kind = "first_response"
	KindResolution    Kind = "resolution"
)

// Threshold holds the working-hour limits for one priority.
type Threshold struct {
	FirstResponseHours float64 `yaml:"first_response_hours" json:"first_response_hours" validate:"gt=0"`
	ResolutionHours    float64 `yaml:"resolution_hours" json:"resolution_hours" validate:"gt=0"`
}

// Hours returns the limit for kind.
func (t Threshold) Hours(kind Kind) float64 {
	if kind == KindFirstResponse {
		return t.FirstResponseHours
	}
	return t.ResolutionHours
}

// DefaultThresholds is used when no policy file overrides it.
var DefaultThresholds = map[domain.IssuePriority]Threshold{
	domain.IssuePriorityUrgent:   {FirstResponseHours: 4, ResolutionHours: 24},
	domain.IssuePriorityCritical: {FirstResponseHours: 4, ResolutionHours: 24},
	domain.IssuePriorityHigh:     {FirstResponseHours: 8, ResolutionHours: 48},
	domain.IssuePriorityMedium:   {FirstResponseHours: 24, ResolutionHours: 72},
	domain.IssuePriorityLow:      {FirstResponseHours: 48, ResolutionHours: 120},
}

// Policy maps priorities to thresholds.
type Policy struct {
	thresholds map[domain.IssuePriority]Threshold
}

// NewPolicy copies thresholds into a policy.
func NewPolicy(thresholds map[domain.IssuePriority]Threshold) *Policy {
	copied := make(map[domain.IssuePriority]Threshold, len(thresholds))
	for k, v := range thresholds {
		copied[k] = v
	}
	return &Policy{thresholds: copied}
}

// DefaultPolicy returns a policy over DefaultThresholds.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultThresholds)
}

// Threshold returns the limits for priority.
func (p *Policy) Threshold(priority domain.IssuePriority) (Threshold, bool) {
	if p == nil {
		return Threshold{}, false
	}
	t, ok := p.thresholds[priority]
	return t, ok
}

// IsBreached reports whether elapsed working hours exceed the limit.
// A priority with no configured threshold is treated as breached.
func (p *Policy) IsBreached(priority domain.IssuePriority, kind Kind, elapsedHours float64) bool {
	t, ok := p.Threshold(priority)
	if !ok {
		return true
	}
	return elapsedHours > t.Hours(kind)
}
