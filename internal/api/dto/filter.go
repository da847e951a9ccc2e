package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// QueryGetter reads one query parameter. *fiber.Ctx satisfies it.
type QueryGetter interface {
	Query(key string, defaultValue ...string) string
}

// ParseIssueFilter builds an IssueFilter from query parameters. When
// paginate is false the limit and offset are left at zero.
func ParseIssueFilter(q QueryGetter, paginate bool) (domain.IssueFilter, error) {
	var filter domain.IssueFilter

	for key, dst := range map[string]**time.Time{"start_date": &filter.StartDate, "end_date": &filter.EndDate} {
		raw := strings.TrimSpace(q.Query(key))
		if raw == "" {
			continue
		}
		t, err := parseDate(raw, key == "end_date")
		if err != nil {
			return filter, apperrors.NewValidationError("invalid date", map[string]any{key: raw})
		}
		*dst = &t
	}

	filter.City = optionalQuery(q, "city")
	filter.Cluster = optionalQuery(q, "cluster")
	filter.AssignedTo = optionalQuery(q, "assigned_to")
	filter.EmployeeID = optionalQuery(q, "employee_id")

	for _, s := range splitList(q.Query("status")) {
		status := domain.IssueStatus(s)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": s})
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	for _, p := range splitList(q.Query("priority")) {
		priority := domain.IssuePriority(p)
		if !priority.Valid() {
			return filter, apperrors.NewValidationError("unknown priority", map[string]any{"priority": p})
		}
		filter.Priorities = append(filter.Priorities, priority)
	}

	if paginate {
		limit, err := cast.ToIntE(q.Query("limit", "0"))
		if err != nil || limit < 0 {
			return filter, apperrors.NewValidationError("invalid limit", nil)
		}
		offset, err := cast.ToIntE(q.Query("offset", "0"))
		if err != nil || offset < 0 {
			return filter, apperrors.NewValidationError("invalid offset", nil)
		}
		if limit == 0 {
			limit = defaultPageSize
		}
		filter.Limit = min(limit, maxPageSize)
		filter.Offset = offset
	}
	return filter, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func optionalQuery(q QueryGetter, key string) *string {
	v := strings.TrimSpace(q.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

func splitList(raw string) []string {
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Uniq(lo.Compact(parts))
}
