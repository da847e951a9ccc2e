package domain

import "time"

// IssueStatus enumerates lifecycle states for grievances.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusEscalated  IssueStatus = "escalated"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// AllIssueStatuses lists every stored status value.
var AllIssueStatuses = []IssueStatus{
	IssueStatusOpen,
	IssueStatusInProgress,
	IssueStatusPending,
	IssueStatusEscalated,
	IssueStatusResolved,
	IssueStatusClosed,
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	for _, candidate := range AllIssueStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether closedAt must be stamped for s.
func (s IssueStatus) Terminal() bool {
	return s == IssueStatusResolved || s == IssueStatusClosed
}

// IssuePriority enumerates SLA urgency.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
	IssuePriorityUrgent   IssuePriority = "urgent"
)

// AllIssuePriorities lists every priority value.
var AllIssuePriorities = []IssuePriority{
	IssuePriorityLow,
	IssuePriorityMedium,
	IssuePriorityHigh,
	IssuePriorityCritical,
	IssuePriorityUrgent,
}

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	for _, candidate := range AllIssuePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// Issue is the aggregate for a single grievance.
type Issue struct {
	ID              string
	Title           string
	Description     string
	Status          IssueStatus
	Priority        IssuePriority
	TypeID          string
	SubTypeID       string
	EmployeeID      string
	AssignedTo      *string
	City            string
	Cluster         string
	FirstResponseAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}

// Clone returns a copy that shares no pointers with i.
func (i Issue) Clone() Issue {
	out := i
	if i.AssignedTo != nil {
		v := *i.AssignedTo
		out.AssignedTo = &v
	}
	if i.FirstResponseAt != nil {
		v := *i.FirstResponseAt
		out.FirstResponseAt = &v
	}
	if i.ClosedAt != nil {
		v := *i.ClosedAt
		out.ClosedAt = &v
	}
	return out
}
