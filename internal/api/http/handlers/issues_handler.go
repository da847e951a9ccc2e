package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/service"
	apperrors "github.com/spec-kit/grievance-service/pkg/util"
)

// IssuesHandler exposes the issue lifecycle.
type IssuesHandler struct {
	issues      *service.IssueService
	assignments *service.AssignmentService
	comments    *service.CommentService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issues *service.IssueService, assignments *service.AssignmentService, comments *service.CommentService) *IssuesHandler {
	return &IssuesHandler{issues: issues, assignments: assignments, comments: comments}
}

// Create handles POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateIssueRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	issue, err := h.issues.CreateIssue(c.UserContext(), p.User.ID, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		TypeID:      req.TypeID,
		SubTypeID:   req.SubTypeID,
		City:        req.City,
		Cluster:     req.Cluster,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewIssueResponse(issue))
}

// List handles GET /issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	filter, err := dto.ParseIssueFilter(c, true)
	if err != nil {
		return err
	}
	issues, err := h.issues.ListIssues(c.UserContext(), filter, p.Viewer())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": lo.Map(issues, func(i domain.Issue, _ int) dto.IssueResponse { return dto.NewIssueResponse(&i) }),
		"meta": fiber.Map{"limit": filter.Limit, "offset": filter.Offset},
	})
}

// Types handles GET /issues/types.
func (h *IssuesHandler) Types(c *fiber.Ctx) error {
	return data(c, http.StatusOK, h.issues.Catalog().Types())
}

// Get handles GET /issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	issue, err := h.issues.GetIssue(c.UserContext(), c.Params("id"), p.Viewer())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// UpdateStatus handles PATCH /issues/:id/status.
func (h *IssuesHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := h.ownerOrStaff(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	issue, err := h.issues.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, p.ID, req.Reason)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// Reopen handles POST /issues/:id/reopen.
func (h *IssuesHandler) Reopen(c *fiber.Ctx) error {
	p, err := h.ownerOrStaff(c)
	if err != nil {
		return err
	}
	var req dto.ReopenRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	issue, err := h.issues.Reopen(c.UserContext(), c.Params("id"), p.ID, req.Reason)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// Assign handles PUT /issues/:id/assignee.
func (h *IssuesHandler) Assign(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	issue, err := h.assignments.Assign(c.UserContext(), c.Params("id"), req.AssigneeID, p.User.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// MapType handles PUT /issues/:id/type.
func (h *IssuesHandler) MapType(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.MapTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	issue, err := h.issues.MapType(c.UserContext(), c.Params("id"), req.TypeID, req.SubTypeID, p.User.ID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewIssueResponse(issue))
}

// AddComment handles POST /issues/:id/comments. Requesters cannot post
// internal notes.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	p, err := h.ownerOrStaff(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.IsInternal && !p.Role.Staff() {
		return apperrors.NewForbidden("internal notes are restricted to staff")
	}
	comment, err := h.comments.AddComment(c.UserContext(), c.Params("id"), p.ID, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewCommentResponse(comment))
}

// ListComments handles GET /issues/:id/comments.
func (h *IssuesHandler) ListComments(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.ListComments(c.UserContext(), c.Params("id"), p.Viewer())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, lo.Map(comments, func(cm domain.Comment, _ int) dto.CommentResponse {
		return dto.NewCommentResponse(&cm)
	}))
}

// Audit handles GET /issues/:id/audit.
func (h *IssuesHandler) Audit(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	entries, err := h.issues.ListAudit(c.UserContext(), c.Params("id"), p.Viewer())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, lo.Map(entries, func(e domain.AuditEntry, _ int) dto.AuditEntryResponse {
		return dto.NewAuditEntryResponse(&e)
	}))
}

// SLA handles GET /issues/:id/sla.
func (h *IssuesHandler) SLA(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	report, err := h.issues.SLAReport(c.UserContext(), c.Params("id"), p.Viewer())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, report)
}

// ownerOrStaff admits staff outright and requesters only for their own issue.
func (h *IssuesHandler) ownerOrStaff(c *fiber.Ctx) (domain.Viewer, error) {
	p, err := principal(c)
	if err != nil {
		return domain.Viewer{}, err
	}
	viewer := p.Viewer()
	if viewer.Role.Staff() {
		return viewer, nil
	}
	if _, err := h.issues.GetIssue(c.UserContext(), c.Params("id"), viewer); err != nil {
		return domain.Viewer{}, err
	}
	return viewer, nil
}
