package handler

import (
	tradeapp "github.com/erp/accounting/internal/application/trade"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves sales and purchase orders and their invoicing
type OrderHandler struct {
	BaseHandler
	orders    *tradeapp.OrderService
	invoicing *tradeapp.InvoicingService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *tradeapp.OrderService, invoicing *tradeapp.InvoicingService) *OrderHandler {
	return &OrderHandler{orders: orders, invoicing: invoicing}
}

// Create records a draft order, confirmed right away when requested
func (h *OrderHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req tradeapp.CreateOrderRequest
	if !h.bind(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Confirm moves a draft order to confirmed
func (h *OrderHandler) Confirm(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Confirm(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel voids an order that has not been invoiced
func (h *OrderHandler) Cancel(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelOrderRequest
	if !h.bind(c, &req) {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Get returns one order with its items
func (h *OrderHandler) Get(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List filters orders by type, status and party
func (h *OrderHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter tradeapp.OrderListFilter
	if !h.bindQuery(c, &filter) || !h.queryID(c, "party_id", &filter.PartyID) {
		return
	}

	page, err := h.orders.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// GenerateInvoice godoc
// @ID           generateInvoice
// @Summary      Invoice a confirmed sales order
// @Description  Creates the receivable document, posts revenue and tax, and settles any down payment
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body tradeapp.GenerateDocumentRequest false "Issue date"
// @Success      201 {object} dto.Response{data=tradeapp.DocumentResult}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /orders/{id}/invoice [post]
func (h *OrderHandler) GenerateInvoice(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req tradeapp.GenerateDocumentRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	result, err := h.invoicing.PostInvoiceGeneration(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GenerateBill godoc
// @ID           generateBill
// @Summary      Bill a confirmed purchase order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body tradeapp.GenerateDocumentRequest false "Issue date"
// @Success      201 {object} dto.Response{data=tradeapp.DocumentResult}
// @Failure      409 {object} dto.Response
// @Router       /orders/{id}/bill [post]
func (h *OrderHandler) GenerateBill(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req tradeapp.GenerateDocumentRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	result, err := h.invoicing.PostBillGeneration(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// RecordDeposit books a down payment against a sales order
func (h *OrderHandler) RecordDeposit(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RecordDepositRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.invoicing.RecordDeposit(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
