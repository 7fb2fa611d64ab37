package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	assetapp "github.com/erp/accounting/internal/application/asset"
	financeapp "github.com/erp/accounting/internal/application/finance"
	ledgerapp "github.com/erp/accounting/internal/application/ledger"
	"github.com/erp/accounting/internal/domain/ledger"
	"github.com/erp/accounting/internal/infrastructure/persistence"
	"github.com/erp/accounting/internal/interfaces/http/dto"
	"github.com/erp/accounting/internal/interfaces/http/middleware"
	"github.com/erp/accounting/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type ledgerAPI struct {
	engine    *gin.Engine
	db        *gorm.DB
	companyID uuid.UUID
	chart     testutil.Chart
}

func newLedgerAPI(t *testing.T) *ledgerAPI {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	companyID := uuid.New()
	scope := persistence.NewGormTransactionScope(db, nil)
	poster := ledgerapp.NewPoster(ledger.PolicyStrict, nil)

	accounts := NewAccountHandler(ledgerapp.NewAccountService(scope))
	roles := NewRoleMappingHandler(ledgerapp.NewRoleMappingService(scope, ledger.PolicyStrict, nil))
	journal := NewJournalHandler(ledgerapp.NewJournalService(scope, poster))

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.CompanyScope(middleware.DefaultCompanyScopeConfig()))
	api := engine.Group("/api/v1")
	api.POST("/accounts", accounts.Create)
	api.GET("/accounts", accounts.List)
	api.GET("/accounts/:id", accounts.Get)
	api.GET("/role-mappings/setup-check", roles.CheckSetup)
	api.POST("/journal-entries", journal.PostManual)
	api.GET("/journal-entries/:id", journal.Get)
	api.POST("/journal-entries/:id/reverse", journal.Reverse)
	api.GET("/reports/trial-balance", journal.TrialBalance)

	return &ledgerAPI{
		engine:    engine,
		db:        db,
		companyID: companyID,
		chart:     testutil.SeedChart(t, db, companyID),
	}
}

func (a *ledgerAPI) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.CompanyIDHeader, a.companyID.String())

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *ledgerAPI) entry(debit, credit uuid.UUID, amount string) map[string]any {
	return map[string]any{
		"date":        "2024-06-15T00:00:00Z",
		"description": "Owner capital",
		"lines": []map[string]any{
			{"account_id": debit, "debit": amount, "credit": "0"},
			{"account_id": credit, "debit": "0", "credit": amount},
		},
	}
}

func TestJournalHandler_PostAndReverse(t *testing.T) {
	api := newLedgerAPI(t)
	cash := api.chart.ID(ledger.RoleCashBank)
	revenue := api.chart.ID(ledger.RoleRevenue)

	w, env := api.do(t, http.MethodPost, "/api/v1/journal-entries", api.entry(cash, revenue, "250000"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var posted ledgerapp.JournalEntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &posted))
	assert.Regexp(t, `^JE-202406-\d{5}$`, posted.EntryNumber)
	assert.Equal(t, "250000", posted.TotalDebit.String())
	assert.Equal(t, "250000.00", testutil.AccountBalance(t, api.db, api.companyID, cash))

	w, env = api.do(t, http.MethodPost, "/api/v1/journal-entries/"+posted.ID.String()+"/reverse", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reversal ledgerapp.JournalEntryResponse
	require.NoError(t, json.Unmarshal(env.Data, &reversal))
	require.NotNil(t, reversal.ReversalOfID)
	assert.Equal(t, posted.ID, *reversal.ReversalOfID)
	assert.Equal(t, "0.00", testutil.AccountBalance(t, api.db, api.companyID, cash))

	w, env = api.do(t, http.MethodPost, "/api/v1/journal-entries/"+posted.ID.String()+"/reverse", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_REVERSED", env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
}

func TestJournalHandler_RejectsUnbalancedEntry(t *testing.T) {
	api := newLedgerAPI(t)
	body := api.entry(api.chart.ID(ledger.RoleCashBank), api.chart.ID(ledger.RoleRevenue), "100")
	body["lines"].([]map[string]any)[1]["credit"] = "99.99"

	w, env := api.do(t, http.MethodPost, "/api/v1/journal-entries", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNBALANCED_ENTRY", env.Error.Code)
	assert.Equal(t, "0.00", testutil.AccountBalance(t, api.db, api.companyID, api.chart.ID(ledger.RoleCashBank)))
}

func TestJournalHandler_BindingErrors(t *testing.T) {
	api := newLedgerAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/v1/journal-entries", map[string]any{"description": "no lines"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	assert.NotEmpty(t, env.Error.Details)

	w, env = api.do(t, http.MethodGet, "/api/v1/journal-entries/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, env.Error.Code)

	w, env = api.do(t, http.MethodGet, "/api/v1/journal-entries/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestJournalHandler_TrialBalance(t *testing.T) {
	api := newLedgerAPI(t)
	_, _ = api.do(t, http.MethodPost, "/api/v1/journal-entries",
		api.entry(api.chart.ID(ledger.RoleCashBank), api.chart.ID(ledger.RoleRevenue), "1000"))

	w, env := api.do(t, http.MethodGet, "/api/v1/reports/trial-balance?as_of=2024-06-30", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tb ledgerapp.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &tb))
	assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
	assert.Equal(t, "1000", tb.TotalDebit.String())
}

func TestAccountHandler_CompanyIsolation(t *testing.T) {
	api := newLedgerAPI(t)

	w, env := api.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"code": "1-1010", "name": "Petty Cash", "type": "cash_bank",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created ledgerapp.AccountResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, env = api.do(t, http.MethodGet, "/api/v1/accounts?page_size=100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(len(api.chart)+1), env.Meta.Total)

	other := *api
	other.companyID = uuid.New()
	w, _ = other.do(t, http.MethodGet, "/api/v1/accounts/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompanyScope_RequiredOnAPI(t *testing.T) {
	api := newLedgerAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeCompanyMissing)
}

func TestRoleMappingHandler_CheckSetup(t *testing.T) {
	api := newLedgerAPI(t)

	w, env := api.do(t, http.MethodGet, "/api/v1/role-mappings/setup-check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status ledgerapp.SetupStatusResponse
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Complete)
	assert.Empty(t, status.Missing)
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name   string
		checks []HealthCheck
		status int
		state  string
	}{
		{"all ok", []HealthCheck{{Name: "database", Check: func(context.Context) error { return nil }}}, http.StatusOK, "healthy"},
		{"redis down", []HealthCheck{
			{Name: "database", Check: func(context.Context) error { return nil }},
			{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }},
		}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("erp-accounting", "1.0.0", tt.checks...)
			engine := gin.New()
			engine.GET("/health", h.Health)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.state, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checks))
		})
	}
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler("erp-accounting", "1.2.3")
	engine := gin.New()
	engine.GET("/info", h.GetSystemInfo)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var info SystemInfoResponse
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "erp-accounting", info.Name)
}

type stubDepreciation struct{ period string }

func (s *stubDepreciation) RunDue(_ context.Context, period string) (assetapp.RunSummary, error) {
	s.period = period
	return assetapp.RunSummary{Period: period, Scanned: 3, Posted: 2, Skipped: 1}, nil
}

type stubOverdue struct{ asOf time.Time }

func (s *stubOverdue) Sweep(_ context.Context, asOf time.Time) (financeapp.OverdueSweepResult, error) {
	s.asOf = asOf
	return financeapp.OverdueSweepResult{Scanned: 4, Marked: 4}, nil
}

func TestJobsHandler(t *testing.T) {
	dep := &stubDepreciation{}
	over := &stubOverdue{}
	h := NewJobsHandler(dep, over)
	engine := gin.New()
	engine.POST("/jobs/depreciation", h.RunDepreciation)
	engine.POST("/jobs/overdue", h.SweepOverdue)

	t.Run("depreciation period is validated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jobs/depreciation", bytes.NewBufferString(`{"period":"2024-13"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, dep.period)
	})

	t.Run("depreciation runs for the period", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/jobs/depreciation", bytes.NewBufferString(`{"period":"2024-06"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2024-06", dep.period)
	})

	t.Run("overdue sweep uses as_of", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs/overdue?as_of=2024-07-01", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2024-07-01", over.asOf.Format("2006-01-02"))
	})
}
