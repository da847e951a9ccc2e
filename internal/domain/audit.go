package domain

import "time"

// AuditAction captures what a mutating action changed.
type AuditAction string

const (
	AuditActionCreate       AuditAction = "create"
	AuditActionStatusChange AuditAction = "status_change"
	AuditActionAssign       AuditAction = "assign"
	AuditActionUnassign     AuditAction = "unassign"
	AuditActionMapType      AuditAction = "map_type"
)

// AuditEntry is an immutable, append-only trail record.
type AuditEntry struct {
	ID            string
	IssueID       string
	ActorID       string
	Action        AuditAction
	PreviousValue *string
	NewValue      *string
	Reason        *string
	CreatedAt     time.Time
}
