package handler

import (
	"strings"

	posapp "github.com/erp/accounting/internal/application/pos"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POSHandler serves checkout, tender types and cash drawer sessions
type POSHandler struct {
	BaseHandler
	sales    *posapp.SaleService
	sessions *posapp.CashSessionService
	methods  *posapp.PaymentMethodService
}

// NewPOSHandler creates a new POSHandler
func NewPOSHandler(sales *posapp.SaleService, sessions *posapp.CashSessionService, methods *posapp.PaymentMethodService) *POSHandler {
	return &POSHandler{sales: sales, sessions: sessions, methods: methods}
}

// PostSale godoc
// @ID           postPOSSale
// @Summary      Post a completed checkout
// @Description  Moves stock, posts revenue and cost, and records cash into the open session.
// @Description  Replaying the same Idempotency-Key returns the original sale.
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Till retry key"
// @Param        request body posapp.PostSaleRequest true "Sale"
// @Success      201 {object} dto.Response{data=posapp.SaleResponse}
// @Success      200 {object} dto.Response{data=posapp.SaleResponse} "Replayed"
// @Failure      422 {object} dto.Response
// @Router       /pos/sales [post]
func (h *POSHandler) PostSale(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req posapp.PostSaleRequest
	if !h.bind(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))

	sale, err := h.sales.PostPOSSale(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if sale.Replayed {
		h.Success(c, sale)
		return
	}
	h.Created(c, sale)
}

// GetSale returns one receipt
func (h *POSHandler) GetSale(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// ListSales returns receipts, optionally of one session
func (h *POSHandler) ListSales(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var q pageQuery
	var sessionID *uuid.UUID
	if !h.bindQuery(c, &q) || !h.queryID(c, "session_id", &sessionID) {
		return
	}

	page, err := h.sales.List(c.Request.Context(), companyID, sessionID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// CreatePaymentMethod adds a tender type
func (h *POSHandler) CreatePaymentMethod(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req posapp.CreatePaymentMethodRequest
	if !h.bind(c, &req) {
		return
	}

	method, err := h.methods.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, method)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetPaymentMethodActive enables or retires a tender type
func (h *POSHandler) SetPaymentMethodActive(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !h.bind(c, &req) {
		return
	}

	method, err := h.methods.SetActive(c.Request.Context(), companyID, id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, method)
}

// ListPaymentMethods returns tender types; active_only=true hides retired ones
func (h *POSHandler) ListPaymentMethods(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	methods, err := h.methods.List(c.Request.Context(), companyID, c.Query("active_only") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, methods)
}

// OpenSession godoc
// @ID           openCashSession
// @Summary      Open the company's cash drawer session
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        request body posapp.OpenSessionRequest true "Opening float"
// @Success      201 {object} dto.Response{data=posapp.CashSessionResponse}
// @Failure      409 {object} dto.Response
// @Router       /pos/sessions [post]
func (h *POSHandler) OpenSession(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req posapp.OpenSessionRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.sessions.Open(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// CurrentSession returns the open session, 404 when the drawer is closed
func (h *POSHandler) CurrentSession(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	session, err := h.sessions.GetOpen(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// GetSession returns one session with its expected balance
func (h *POSHandler) GetSession(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RecordMovement adds a manual cash in or out to an open session
func (h *POSHandler) RecordMovement(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req posapp.RecordMovementRequest
	if !h.bind(c, &req) {
		return
	}

	movement, err := h.sessions.RecordMovement(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// ListMovements returns the drawer movements of a session
func (h *POSHandler) ListMovements(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	movements, err := h.sessions.ListMovements(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// CloseSession godoc
// @ID           closeCashSession
// @Summary      Close a session against the counted drawer
// @Description  The difference to the expected balance is classified balanced, minor or major
// @Tags         pos
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID" format(uuid)
// @Param        request body posapp.CloseSessionRequest true "Closing count"
// @Success      200 {object} dto.Response{data=posapp.CashSessionResponse}
// @Failure      422 {object} dto.Response
// @Router       /pos/sessions/{id}/close [post]
func (h *POSHandler) CloseSession(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req posapp.CloseSessionRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.sessions.CloseCashSession(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}
