package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueCommentAdded  EventType = "issue_comment_added"
	EventIssueTypeMapped    EventType = "issue_type_mapped"
)

// AllEventTypes lists every event a mutation can publish.
var AllEventTypes = []EventType{
	EventIssueCreated,
	EventIssueStatusChanged,
	EventIssueAssigned,
	EventIssueCommentAdded,
	EventIssueTypeMapped,
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issue_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// NewEvent stamps a fresh event id.
func NewEvent(eventType EventType, issueID, actorID string, at time.Time, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		IssueID:   issueID,
		ActorID:   actorID,
		Timestamp: at,
		Payload:   payload,
	}
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	EmployeeID string               `json:"employee_id"`
	Priority   domain.IssuePriority `json:"priority"`
	TypeID     string               `json:"type_id"`
	Title      string               `json:"title"`
}

// IssueStatusChangedPayload payload. Reopen publishes it too.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
	Reason    string             `json:"reason,omitempty"`
	Reopened  bool               `json:"reopened,omitempty"`
}

// IssueAssignedPayload payload. A nil NewAssignee means the issue was unassigned.
type IssueAssignedPayload struct {
	OldAssignee *string `json:"old_assignee,omitempty"`
	NewAssignee *string `json:"new_assignee,omitempty"`
}

// IssueCommentAddedPayload payload.
type IssueCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}

// IssueTypeMappedPayload payload.
type IssueTypeMappedPayload struct {
	OldTypeID    string `json:"old_type_id"`
	OldSubTypeID string `json:"old_sub_type_id"`
	NewTypeID    string `json:"new_type_id"`
	NewSubTypeID string `json:"new_sub_type_id"`
}
