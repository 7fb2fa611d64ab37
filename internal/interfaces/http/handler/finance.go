package handler

import (
	"strings"

	financeapp "github.com/erp/accounting/internal/application/finance"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves invoices and bills, payments and aging
type FinanceHandler struct {
	BaseHandler
	documents *financeapp.DocumentService
	payments  *financeapp.PaymentService
	aging     *financeapp.AgingService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(documents *financeapp.DocumentService, payments *financeapp.PaymentService, aging *financeapp.AgingService) *FinanceHandler {
	return &FinanceHandler{documents: documents, payments: payments, aging: aging}
}

// ListDocuments godoc
// @ID           listDocuments
// @Summary      List invoices and bills
// @Tags         documents
// @Produce      json
// @Param        kind query string false "invoice or bill"
// @Param        status query string false "Document status"
// @Param        party_id query string false "Customer or supplier" format(uuid)
// @Success      200 {object} dto.Response{data=[]financeapp.DocumentResponse}
// @Router       /documents [get]
func (h *FinanceHandler) ListDocuments(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter financeapp.DocumentListFilter
	if !h.bindQuery(c, &filter) || !h.queryID(c, "party_id", &filter.PartyID) {
		return
	}

	page, err := h.documents.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GetDocument returns one invoice or bill
func (h *FinanceHandler) GetDocument(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	doc, err := h.documents.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// CancelDocument godoc
// @ID           cancelDocument
// @Summary      Void a document that has no payments
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body financeapp.CancelDocumentRequest true "Reason"
// @Success      200 {object} dto.Response{data=financeapp.DocumentResponse}
// @Failure      422 {object} dto.Response
// @Router       /documents/{id}/cancel [post]
func (h *FinanceHandler) CancelDocument(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req financeapp.CancelDocumentRequest
	if !h.bind(c, &req) {
		return
	}

	doc, err := h.documents.Cancel(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// RecordPayment godoc
// @ID           recordPayment
// @Summary      Record a payment and allocate it to open documents
// @Description  An Idempotency-Key header makes retries of the same payment safe
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body financeapp.RecordPaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=financeapp.PaymentResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /payments [post]
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req financeapp.RecordPaymentRequest
	if !h.bind(c, &req) {
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))

	payment, err := h.payments.RecordPayment(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// AllocatePayment applies the unallocated rest of a payment
func (h *FinanceHandler) AllocatePayment(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req financeapp.AllocatePaymentRequest
	if !h.bind(c, &req) {
		return
	}

	payment, err := h.payments.AllocatePayment(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// GetPayment returns a payment with its allocations
func (h *FinanceHandler) GetPayment(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Aging godoc
// @ID           getAging
// @Summary      Receivable or payable aging
// @Tags         reports
// @Produce      json
// @Param        kind query string true "invoice or bill"
// @Param        as_of query string false "Cut-off date (YYYY-MM-DD)"
// @Param        party_id query string false "Single party" format(uuid)
// @Param        by_party query bool false "Break down per party"
// @Success      200 {object} dto.Response
// @Router       /reports/aging [get]
func (h *FinanceHandler) Aging(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req financeapp.AgingRequest
	if !h.bindQuery(c, &req) || !h.queryID(c, "party_id", &req.PartyID) {
		return
	}

	report, err := h.aging.ComputeAging(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
