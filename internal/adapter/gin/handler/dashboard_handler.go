package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-directory-service/internal/usecase/dashboard"
	"user-directory-service/internal/usecase/health"
)

// DashboardService provides dashboard snapshots
type DashboardService interface {
	Overview(ctx context.Context) (*dashboard.Overview, error)
	Analytics(ctx context.Context, period string) (*dashboard.AnalyticsReport, error)
}

// DashboardHandler handles dashboard requests
type DashboardHandler struct {
	svc DashboardService
	log *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(svc DashboardService, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, log: log}
}

// Overview handles GET /api/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	o, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		Error(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, "", o)
}

// Analytics handles GET /api/dashboard/analytics
func (h *DashboardHandler) Analytics(c *gin.Context) {
	r, err := h.svc.Analytics(c.Request.Context(), c.DefaultQuery("period", dashboard.DefaultPeriod))
	if err != nil {
		Error(c, h.log, err)
		return
	}
	OK(c, http.StatusOK, "", r)
}

// HealthChecker builds health reports
type HealthChecker interface {
	Check(ctx context.Context) *health.Report
}

// HealthHandler handles health requests
type HealthHandler struct {
	checker HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	OK(c, http.StatusOK, "", h.checker.Check(c.Request.Context()))
}
