package domain

import "time"

// IssueFilter enumerates every recognized listing and analytics filter key.
// Nil or empty fields do not constrain the result.
type IssueFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	City       *string
	Cluster    *string
	AssignedTo *string
	EmployeeID *string
	Statuses   []IssueStatus
	Priorities []IssuePriority
	Limit      int
	Offset     int
}

// Matches reports whether issue satisfies every set field.
// Pagination fields are ignored.
func (f IssueFilter) Matches(issue *Issue) bool {
	if f.StartDate != nil && issue.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && issue.CreatedAt.After(*f.EndDate) {
		return false
	}
	if f.City != nil && issue.City != *f.City {
		return false
	}
	if f.Cluster != nil && issue.Cluster != *f.Cluster {
		return false
	}
	if f.AssignedTo != nil && (issue.AssignedTo == nil || *issue.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.EmployeeID != nil && issue.EmployeeID != *f.EmployeeID {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, issue.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, issue.Priority) {
		return false
	}
	return true
}

func containsStatus(list []IssueStatus, s IssueStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(list []IssuePriority, p IssuePriority) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
