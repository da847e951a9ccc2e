package dto

import (
	"time"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=5000"`
	Priority    domain.IssuePriority `json:"priority" validate:"omitempty,oneof=low medium high critical urgent"`
	TypeID      string               `json:"type_id"`
	SubTypeID   string               `json:"sub_type_id"`
	City        string               `json:"city" validate:"max=100"`
	Cluster     string               `json:"cluster" validate:"max=100"`
}

// UpdateStatusRequest payload. The status itself is checked against the
// lifecycle by the service.
type UpdateStatusRequest struct {
	Status domain.IssueStatus `json:"status" validate:"required"`
	Reason string             `json:"reason" validate:"max=1000"`
}

// ReopenRequest payload.
type ReopenRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// AssignRequest payload. A null assignee_id unassigns.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// MapTypeRequest payload.
type MapTypeRequest struct {
	TypeID    string `json:"type_id" validate:"required"`
	SubTypeID string `json:"sub_type_id"`
}

// CreateCommentRequest payload. Blank content is rejected by the service.
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"max=10000"`
	IsInternal bool   `json:"is_internal"`
}

// IssueResponse is the wire view of an issue.
type IssueResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Status          domain.IssueStatus   `json:"status"`
	Priority        domain.IssuePriority `json:"priority"`
	TypeID          string               `json:"type_id"`
	SubTypeID       string               `json:"sub_type_id"`
	EmployeeID      string               `json:"employee_id"`
	AssignedTo      *string              `json:"assigned_to"`
	City            string               `json:"city"`
	Cluster         string               `json:"cluster"`
	FirstResponseAt *time.Time           `json:"first_response_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	ClosedAt        *time.Time           `json:"closed_at"`
}

// CommentResponse is the wire view of a comment.
type CommentResponse struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issue_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditEntryResponse is the wire view of an audit entry.
type AuditEntryResponse struct {
	ID            string             `json:"id"`
	ActorID       string             `json:"actor_id"`
	Action        domain.AuditAction `json:"action"`
	PreviousValue *string            `json:"previous_value"`
	NewValue      *string            `json:"new_value"`
	Reason        *string            `json:"reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// NewIssueResponse maps a domain issue.
func NewIssueResponse(i *domain.Issue) IssueResponse {
	return IssueResponse{
		ID:              i.ID,
		Title:           i.Title,
		Description:     i.Description,
		Status:          i.Status,
		Priority:        i.Priority,
		TypeID:          i.TypeID,
		SubTypeID:       i.SubTypeID,
		EmployeeID:      i.EmployeeID,
		AssignedTo:      i.AssignedTo,
		City:            i.City,
		Cluster:         i.Cluster,
		FirstResponseAt: i.FirstResponseAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
		ClosedAt:        i.ClosedAt,
	}
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		IssueID:    c.IssueID,
		AuthorID:   c.AuthorID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

// NewAuditEntryResponse maps a domain audit entry.
func NewAuditEntryResponse(e *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:            e.ID,
		ActorID:       e.ActorID,
		Action:        e.Action,
		PreviousValue: e.PreviousValue,
		NewValue:      e.NewValue,
		Reason:        e.Reason,
		CreatedAt:     e.CreatedAt,
	}
}
