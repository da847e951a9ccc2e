package service

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// allowedTransitions is the directed edge table of the issue lifecycle.
// Statuses without an entry, such as pending, have no outgoing edges.
var allowedTransitions = map[domain.IssueStatus]mapset.Set[domain.IssueStatus]{
	domain.IssueStatusOpen: mapset.NewSet(
		domain.IssueStatusInProgress, domain.IssueStatusResolved, domain.IssueStatusClosed),
	domain.IssueStatusInProgress: mapset.NewSet(
		domain.IssueStatusOpen, domain.IssueStatusResolved, domain.IssueStatusEscalated),
	domain.IssueStatusResolved: mapset.NewSet(
		domain.IssueStatusClosed, domain.IssueStatusOpen),
	domain.IssueStatusClosed: mapset.NewSet(
		domain.IssueStatusOpen),
	domain.IssueStatusEscalated: mapset.NewSet(
		domain.IssueStatusInProgress, domain.IssueStatusResolved),
}

// CanTransition reports whether an issue may move from current to next.
func CanTransition(current, next domain.IssueStatus) bool {
	edges, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return edges.Contains(next)
}

// isReopen reports whether the edge takes a terminal issue back to open.
func isReopen(current, next domain.IssueStatus) bool {
	return current.Terminal() && next == domain.IssueStatusOpen
}
