package handler

import (
	assetapp "github.com/erp/accounting/internal/application/asset"
	"github.com/gin-gonic/gin"
)

// AssetHandler serves the fixed asset register and depreciation
type AssetHandler struct {
	BaseHandler
	assets       *assetapp.AssetService
	depreciation *assetapp.DepreciationService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(assets *assetapp.AssetService, depreciation *assetapp.DepreciationService) *AssetHandler {
	return &AssetHandler{assets: assets, depreciation: depreciation}
}

// Register godoc
// @ID           registerAsset
// @Summary      Register a fixed asset
// @Description  Maps the asset's accumulated depreciation and expense accounts by asset id
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        request body assetapp.RegisterAssetRequest true "Asset"
// @Success      201 {object} dto.Response{data=assetapp.AssetResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /assets [post]
func (h *AssetHandler) Register(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req assetapp.RegisterAssetRequest
	if !h.bind(c, &req) {
		return
	}

	asset, err := h.assets.Register(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, asset)
}

// Dispose retires an asset; no further runs are posted for it
func (h *AssetHandler) Dispose(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req assetapp.DisposeAssetRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	asset, err := h.assets.Dispose(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// Get returns one asset with its book value
func (h *AssetHandler) Get(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	asset, err := h.assets.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// List filters assets by status
func (h *AssetHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter assetapp.AssetListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.assets.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// History returns the posted depreciation runs of an asset
func (h *AssetHandler) History(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	runs, err := h.assets.History(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, runs)
}

// PostRun godoc
// @ID           postDepreciationRun
// @Summary      Post one month of depreciation for an asset
// @Description  Periods are YYYY-MM and must follow the last posted period
// @Tags         assets
// @Accept       json
// @Produce      json
// @Param        id path string true "Asset ID" format(uuid)
// @Param        request body assetapp.DepreciationRunRequest true "Period"
// @Success      201 {object} dto.Response{data=assetapp.DepreciationResponse}
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /assets/{id}/depreciation [post]
func (h *AssetHandler) PostRun(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req assetapp.DepreciationRunRequest
	if !h.bind(c, &req) {
		return
	}

	run, err := h.depreciation.PostDepreciationRun(c.Request.Context(), companyID, id, req.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, run)
}
