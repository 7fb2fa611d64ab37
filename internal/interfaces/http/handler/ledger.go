package handler

import (
	"time"

	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves the chart of accounts
type AccountHandler struct {
	BaseHandler
	accounts *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create godoc
// @ID           createAccount
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        X-Company-ID header string true "Company ID" format(uuid)
// @Param        request body ledgerapp.CreateAccountRequest true "Account"
// @Success      201 {object} dto.Response{data=ledgerapp.AccountResponse}
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req ledgerapp.CreateAccountRequest
	if !h.bind(c, &req) {
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// Update godoc
// @ID           updateAccount
// @Summary      Rename, reclassify or deactivate an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body ledgerapp.UpdateAccountRequest true "Changes"
// @Success      200 {object} dto.Response{data=ledgerapp.AccountResponse}
// @Failure      404 {object} dto.Response
// @Router       /accounts/{id} [patch]
func (h *AccountHandler) Update(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateAccountRequest
	if !h.bind(c, &req) {
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Get godoc
// @ID           getAccount
// @Summary      Get an account with its balance
// @Tags         accounts
// @Produce      json
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.AccountResponse}
// @Failure      404 {object} dto.Response
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	account, err := h.accounts.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// List godoc
// @ID           listAccounts
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Param        type query string false "Account type"
// @Param        search query string false "Code or name"
// @Param        active_only query bool false "Only active accounts"
// @Success      200 {object} dto.Response{data=[]ledgerapp.AccountResponse}
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter ledgerapp.AccountListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.accounts.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// RoleMappingHandler serves the account role mapping table
type RoleMappingHandler struct {
	BaseHandler
	roles *ledgerapp.RoleMappingService
}

// NewRoleMappingHandler creates a new RoleMappingHandler
func NewRoleMappingHandler(roles *ledgerapp.RoleMappingService) *RoleMappingHandler {
	return &RoleMappingHandler{roles: roles}
}

// Set godoc
// @ID           setRoleMapping
// @Summary      Map an account role to an account
// @Description  Replaces the existing mapping of the role and qualifier, if any
// @Tags         role-mappings
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.SetRoleMappingRequest true "Mapping"
// @Success      200 {object} dto.Response{data=ledgerapp.RoleMappingResponse}
// @Failure      400 {object} dto.Response
// @Router       /role-mappings [put]
func (h *RoleMappingHandler) Set(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req ledgerapp.SetRoleMappingRequest
	if !h.bind(c, &req) {
		return
	}

	mapping, err := h.roles.Set(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapping)
}

// Remove deletes one mapping. The qualifier is optional.
func (h *RoleMappingHandler) Remove(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	if err := h.roles.Remove(c.Request.Context(), companyID, c.Param("role"), c.Query("qualifier")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List returns every mapping of the company
func (h *RoleMappingHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	mappings, err := h.roles.List(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mappings)
}

// CheckSetup reports which required roles are still unmapped
func (h *RoleMappingHandler) CheckSetup(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	status, err := h.roles.CheckSetup(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Suggest proposes accounts for unmapped roles
func (h *RoleMappingHandler) Suggest(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}

	suggestions, err := h.roles.Suggest(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suggestions)
}

// JournalHandler serves journal entries and the trial balance
type JournalHandler struct {
	BaseHandler
	journal *ledgerapp.JournalService
}

// NewJournalHandler creates a new JournalHandler
func NewJournalHandler(journal *ledgerapp.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// PostManual godoc
// @ID           postManualJournalEntry
// @Summary      Post a manual journal entry
// @Description  Lines must balance; the entry is numbered JE-YYYYMM-NNNNN
// @Tags         journal
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.PostManualEntryRequest true "Entry"
// @Success      201 {object} dto.Response{data=ledgerapp.JournalEntryResponse}
// @Failure      400 {object} dto.Response
// @Router       /journal-entries [post]
func (h *JournalHandler) PostManual(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var req ledgerapp.PostManualEntryRequest
	if !h.bind(c, &req) {
		return
	}

	entry, err := h.journal.PostManual(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Reverse godoc
// @ID           reverseJournalEntry
// @Summary      Reverse a posted journal entry
// @Description  Posts a mirror entry and marks the original reversed
// @Tags         journal
// @Accept       json
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Param        request body ledgerapp.ReverseEntryRequest false "Reversal"
// @Success      201 {object} dto.Response{data=ledgerapp.JournalEntryResponse}
// @Failure      409 {object} dto.Response
// @Router       /journal-entries/{id}/reverse [post]
func (h *JournalHandler) Reverse(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.ReverseEntryRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	entry, err := h.journal.Reverse(c.Request.Context(), companyID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get returns one entry with its lines
func (h *JournalHandler) Get(c *gin.Context) {
	companyID, id, ok := h.scoped(c, "id")
	if !ok {
		return
	}

	entry, err := h.journal.GetByID(c.Request.Context(), companyID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// GetByReference returns the entry a business document posted
func (h *JournalHandler) GetByReference(c *gin.Context) {
	companyID, refID, ok := h.scoped(c, "ref_id")
	if !ok {
		return
	}
	refType := ledger.ReferenceType(c.Param("ref_type"))
	if !refType.IsValid() {
		h.BadRequest(c, "Invalid reference type")
		return
	}

	entry, err := h.journal.GetByReference(c.Request.Context(), companyID, refType, refID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List returns entries filtered by reference type, account and date range
func (h *JournalHandler) List(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var filter ledgerapp.JournalListFilter
	if !h.bindQuery(c, &filter) || !h.queryID(c, "account_id", &filter.AccountID) {
		return
	}

	page, err := h.journal.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

type trialBalanceQuery struct {
	AsOf *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// TrialBalance godoc
// @ID           getTrialBalance
// @Summary      Trial balance as of a date
// @Tags         journal
// @Produce      json
// @Param        as_of query string false "Cut-off date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} dto.Response{data=ledgerapp.TrialBalanceResponse}
// @Router       /reports/trial-balance [get]
func (h *JournalHandler) TrialBalance(c *gin.Context) {
	companyID, ok := h.companyID(c)
	if !ok {
		return
	}
	var q trialBalanceQuery
	if !h.bindQuery(c, &q) {
		return
	}
	asOf := time.Now().UTC()
	if q.AsOf != nil {
		asOf = *q.AsOf
	}

	report, err := h.journal.TrialBalance(c.Request.Context(), companyID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
