package handler

import (
	inventoryapp "github.com/erp/accounting/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// InventoryHandler serves warehouses, stock transfers and stock counts
type InventoryHandler struct {
	BaseHandler
	warehouses *inventoryapp.WarehouseService
	transfers  *inventoryapp.TransferService
	opnames    *inventoryapp.OpnameService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(warehouses *inventoryapp.WarehouseService, transfers *inventoryapp.TransferService, opnames *inventoryapp.OpnameService) *InventoryHandler {
	return &InventoryHandler{warehouses: warehouses, transfers: transfers, opnames: opnames}
}

// CreateWarehouse adds a warehouse
func (h *InventoryHandler) CreateWarehouse(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateWarehouseRequest
	if !h.bind(c, &req) {
		return
	}

	wh, err := h.warehouses.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, wh)
}

// AssignPIC sets the person who approves transfers into a warehouse
func (h *InventoryHandler) AssignPIC(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AssignPICRequest
	if !h.bind(c, &req) {
		return
	}

	wh, err := h.warehouses.AssignPIC(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wh)
}

// GetWarehouse returns one warehouse
func (h *InventoryHandler) GetWarehouse(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	wh, err := h.warehouses.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, wh)
}

// ListWarehouses returns every warehouse of the company
func (h *InventoryHandler) ListWarehouses(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	list, err := h.warehouses.List(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// StockLevels returns on-hand quantities of a warehouse
func (h *InventoryHandler) StockLevels(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	levels, err := h.warehouses.Levels(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// StockMovements returns the movements one business document wrote
func (h *InventoryHandler) StockMovements(c *gin.Context) {
	companyID, refID, ok := h.scoped(c, "ref_id")
	if !ok {
		return
	}

	movements, err := h.warehouses.Movements(c.Request.Context(), companyID, c.Param("ref_type"), refID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// CreateTransfer godoc
// @ID           createStockTransfer
// @Summary      Submit a stock transfer
// @Description  The transfer waits in pending until the destination PIC approves or rejects it
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateTransferRequest true "Transfer"
// @Success      201 {object} dto.Response{data=inventoryapp.TransferResponse}
// @Failure      400 {object} dto.Response
// @Router       /stock-transfers [post]
func (h *InventoryHandler) CreateTransfer(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateTransferRequest
	if !h.bind(c, &req) {
		return
	}

	transfer, err := h.transfers.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// TransitionTransfer godoc
// @ID           transitionStockTransfer
// @Summary      Approve or reject a pending transfer
// @Description  Approval moves the stock and completes the transfer in one write
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Param        request body inventoryapp.TransitionTransferRequest true "Event"
// @Success      200 {object} dto.Response{data=inventoryapp.TransferResponse}
// @Failure      422 {object} dto.Response
// @Router       /stock-transfers/{id}/transition [post]
func (h *InventoryHandler) TransitionTransfer(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.TransitionTransferRequest
	if !h.bind(c, &req) {
		return
	}

	transfer, err := h.transfers.TransitionStockTransfer(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// GetTransfer returns one transfer
func (h *InventoryHandler) GetTransfer(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	transfer, err := h.transfers.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// ListTransfers filters by status and by either warehouse end
func (h *InventoryHandler) ListTransfers(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter inventoryapp.TransferListFilter
	if !h.bindQuery(c, &filter) || !h.queryID(c, "warehouse_id", &filter.WarehouseID) {
		return
	}

	page, err := h.transfers.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// CreateOpname opens a draft stock count
func (h *InventoryHandler) CreateOpname(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req inventoryapp.CreateOpnameRequest
	if !h.bind(c, &req) {
		return
	}

	opname, err := h.opnames.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opname)
}

// AddOpnameItem snapshots a product's system quantity into a draft count
func (h *InventoryHandler) AddOpnameItem(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.AddOpnameItemRequest
	if !h.bind(c, &req) {
		return
	}

	opname, err := h.opnames.AddItem(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// StartOpname moves a draft count to in progress
func (h *InventoryHandler) StartOpname(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	opname, err := h.opnames.Start(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// RecordCount stores the counted quantity of one product
func (h *InventoryHandler) RecordCount(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.RecordCountRequest
	if !h.bind(c, &req) {
		return
	}

	opname, err := h.opnames.RecordCount(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// CompleteOpname godoc
// @ID           completeStockOpname
// @Summary      Complete a stock count
// @Description  Adjusts stock to the counted quantities and posts the net difference
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id path string true "Opname ID" format(uuid)
// @Param        request body inventoryapp.CompleteOpnameRequest true "Actor"
// @Success      200 {object} dto.Response{data=inventoryapp.OpnameResponse}
// @Failure      422 {object} dto.Response
// @Router       /stock-opnames/{id}/complete [post]
func (h *InventoryHandler) CompleteOpname(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.CompleteOpnameRequest
	if !h.bind(c, &req) {
		return
	}

	opname, err := h.opnames.Complete(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// GetOpname returns one count with its items
func (h *InventoryHandler) GetOpname(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	opname, err := h.opnames.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opname)
}

// ListOpnames returns counts, newest first
func (h *InventoryHandler) ListOpnames(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}

	page, err := h.opnames.List(c.Request.Context(), companyID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}
