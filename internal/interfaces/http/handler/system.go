package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	assetapp "github.com/erp/accounting/internal/application/asset"
	financeapp "github.com/erp/accounting/internal/application/finance"
	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck checks one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler handles health and system information endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    []HealthCheck
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, checks ...HealthCheck) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
		timeout:   3 * time.Second,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"ERP Accounting API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse reports the state of every checked dependency
type HealthResponse struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Pings the database and, when configured, redis
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Time:   time.Now().Format(time.RFC3339),
		Checks: make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.String("check", check.Name), zap.Error(err))
			resp.Checks[check.Name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	c.JSON(status, resp)
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping answers pong
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// DepreciationRunner books depreciation for every due asset of a period
type DepreciationRunner interface {
	RunDue(ctx context.Context, period string) (assetapp.RunSummary, error)
}

// OverdueSweeper marks past-due documents overdue
type OverdueSweeper interface {
	Sweep(ctx context.Context, asOf time.Time) (financeapp.OverdueSweepResult, error)
}

// JobsHandler runs the periodic accounting jobs on demand. The runs are
// the same ones the scheduler submits and are safe to repeat.
type JobsHandler struct {
	BaseHandler
	depreciation DepreciationRunner
	overdue      OverdueSweeper
}

// NewJobsHandler creates a new JobsHandler
func NewJobsHandler(depreciation DepreciationRunner, overdue OverdueSweeper) *JobsHandler {
	return &JobsHandler{depreciation: depreciation, overdue: overdue}
}

// RunDepreciationRequest selects the period to book
type RunDepreciationRequest struct {
	Period string `json:"period" binding:"required,datetime=2006-01"`
}

// RunDepreciation godoc
// @ID           runDepreciationJob
// @Summary      Book depreciation for all companies
// @Tags         system
// @Accept       json
// @Produce      json
// @Param        request body RunDepreciationRequest true "Period"
// @Success      200 {object} dto.Response{data=assetapp.RunSummary}
// @Router       /system/jobs/depreciation [post]
func (h *JobsHandler) RunDepreciation(c *gin.Context) {
	var req RunDepreciationRequest
	if !h.bind(c, &req) {
		return
	}

	summary, err := h.depreciation.RunDue(c.Request.Context(), req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// sweepQuery binds the optional reference date of an overdue sweep
type sweepQuery struct {
	AsOf time.Time `form:"as_of" time_format:"2006-01-02"`
}

// SweepOverdue marks documents past their due date as overdue
func (h *JobsHandler) SweepOverdue(c *gin.Context) {
	var q sweepQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.AsOf.IsZero() {
		q.AsOf = time.Now().UTC()
	}

	result, err := h.overdue.Sweep(c.Request.Context(), q.AsOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
