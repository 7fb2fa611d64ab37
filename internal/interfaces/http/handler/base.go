package handler

import (
	"net/http"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/logger"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pageQuery binds the page parameters of listings without other filters
type pageQuery struct {
	Page     int `form:"page" binding:"min=0"`
	PageSize int `form:"page_size" binding:"min=0,max=100"`
}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	return c.GetString(logger.GinRequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// respondPage sends one page of a listing with its pagination meta
func respondPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	middleware.SetErrorCode(c, dto.ErrCodeBadRequest)
	c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// HandleError converts a service error to a response. Domain errors keep
// their code; anything else is logged and reported as internal.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	info, status := dto.ErrorInfoFor(err)
	info.RequestID = getRequestID(c)
	middleware.SetErrorCode(c, info.Code)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("Request failed", zap.String("code", info.Code), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, dto.Response{Error: &info})
}

// bind decodes a JSON body and answers 400 on failure
func (h *BaseHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery decodes query parameters and answers 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathID parses a UUID path parameter and answers 400 when malformed
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// companyID returns the company resolved by the CompanyScope middleware
func (h *BaseHandler) companyID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeCompanyMissing, "X-Company-ID header is required", getRequestID(c),
		))
	}
	return id, ok
}

// scoped resolves the company and one path id in one step
func (h *BaseHandler) scoped(c *gin.Context, name string) (uuid.UUID, uuid.UUID, bool) {
	companyID, ok := h.companyID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, name)
	return companyID, id, ok
}

// queryID parses an optional UUID query parameter. It answers 400 and
// returns false when the value is present but malformed.
func (h *BaseHandler) queryID(c *gin.Context, name string, dst **uuid.UUID) bool {
	raw := c.Query(name)
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return false
	}
	*dst = &id
	return true
}
