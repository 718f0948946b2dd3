package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/jobtrack/api/http/presenter"
	"github.com/artem13815/jobtrack/pkg/analytics"
)

type AnalyticsHandler struct {
	useCase analytics.UseCase
	log     *zap.Logger
}

func NewAnalyticsHandler(useCase analytics.UseCase, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{useCase: useCase, log: log}
}

// Overview serves the dashboard aggregations.
// @Summary Analytics overview
// @Tags    analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	overview, err := h.useCase.Overview(c.Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, overview)
}

// Weekly serves progress against the weekly application target.
// @Summary Weekly stats
// @Tags    analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /analytics/weekly [get]
func (h *AnalyticsHandler) Weekly(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	weekly, err := h.useCase.Weekly(c.Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, weekly)
}

// Performance serves interview/offer/response rates and group breakdowns.
// @Summary Performance metrics
// @Tags    analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /analytics/performance [get]
func (h *AnalyticsHandler) Performance(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	perf, err := h.useCase.Performance(c.Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, perf)
}

// Tasks serves the upcoming-task digest.
// @Summary Task digest
// @Tags    analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /analytics/tasks [get]
func (h *AnalyticsHandler) Tasks(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	digest, err := h.useCase.TaskDigest(c.Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, digest)
}

// Activity serves the newest-first timeline feed across all applications.
// @Summary Recent activity
// @Tags    analytics
// @Produce json
// @Security BearerAuth
// @Param   limit query int false "entries to return (default 20, max 100)"
// @Success 200 {object} map[string]any
// @Router  /analytics/activity [get]
func (h *AnalyticsHandler) Activity(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.useCase.RecentActivity(c.Context(), userID, limit)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, fiber.Map{"activities": entries})
}
