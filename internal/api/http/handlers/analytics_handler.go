package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/grievance-service/internal/api/dto"
	"github.com/spec-kit/grievance-service/internal/service"
)

// AnalyticsHandler serves dashboard summaries.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary handles GET /analytics.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	filter, err := dto.ParseIssueFilter(c, false)
	if err != nil {
		return err
	}
	summary, err := h.analytics.GetAnalytics(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, summary)
}
