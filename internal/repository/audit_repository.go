package repository

import (
	"context"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// AuditRepository stores append-only audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	db DBTX
}

// NewAuditRepository builds repository.
func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO issue_audit (id, issue_id, actor_id, action, previous_value, new_value, reason, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.IssueID,
		entry.ActorID,
		entry.Action,
		entry.PreviousValue,
		entry.NewValue,
		entry.Reason,
		entry.CreatedAt,
	)
	return err
}

func (r *auditRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, issue_id, actor_id, action, previous_value, new_value, reason, created_at
        FROM issue_audit WHERE issue_id=$1 ORDER BY created_at ASC, id`
	rows, err := r.db.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AuditEntry{}
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.IssueID,
			&entry.ActorID,
			&entry.Action,
			&entry.PreviousValue,
			&entry.NewValue,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
