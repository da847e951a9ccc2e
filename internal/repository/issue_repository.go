package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/grievance-service/internal/domain"
)

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Issue, error)
	Save(ctx context.Context, issue *domain.Issue) error
	List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error)
}

type issueRepository struct {
	db DBTX
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(db DBTX) IssueRepository {
	return &issueRepository{db: db}
}

const issueColumns = `id, title, description, status, priority, type_id, sub_type_id, employee_id,
               assigned_to, city, cluster, first_response_at, created_at, updated_at, closed_at`

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (r *issueRepository) GetForUpdate(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, id)
}

// Save upserts the full row.
func (r *issueRepository) Save(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, title, description, status, priority, type_id, sub_type_id, employee_id,
            assigned_to, city, cluster, first_response_at, created_at, updated_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        ON CONFLICT (id) DO UPDATE SET
            title=EXCLUDED.title, description=EXCLUDED.description, status=EXCLUDED.status,
            priority=EXCLUDED.priority, type_id=EXCLUDED.type_id, sub_type_id=EXCLUDED.sub_type_id,
            assigned_to=EXCLUDED.assigned_to, city=EXCLUDED.city, cluster=EXCLUDED.cluster,
            first_response_at=EXCLUDED.first_response_at, updated_at=EXCLUDED.updated_at,
            closed_at=EXCLUDED.closed_at`
	_, err := r.db.Exec(ctx, query,
		issue.ID,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.TypeID,
		issue.SubTypeID,
		issue.EmployeeID,
		issue.AssignedTo,
		issue.City,
		issue.Cluster,
		issue.FirstResponseAt,
		issue.CreatedAt,
		issue.UpdatedAt,
		issue.ClosedAt,
	)
	return err
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	issue, err := scanIssue(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return issue, nil
}

// List returns issues matching filter, newest first. A non-positive limit
// returns every match.
func (r *issueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city=$%d", len(args)))
	}
	if filter.Cluster != nil {
		args = append(args, *filter.Cluster)
		clauses = append(clauses, fmt.Sprintf("cluster=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		clauses = append(clauses, fmt.Sprintf("employee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at DESC, id`,
		issueColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	if err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Status,
		&issue.Priority,
		&issue.TypeID,
		&issue.SubTypeID,
		&issue.EmployeeID,
		&issue.AssignedTo,
		&issue.City,
		&issue.Cluster,
		&issue.FirstResponseAt,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &issue, nil
}
