package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/accounting/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("ledger", "/accounts")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/accounts/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUseAppliesToAPIGroupOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Scoped", "yes")
		c.Next()
	})
	r.Register(NewDomainGroup("orders", "/orders").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "orders")
	})).Setup()

	assert.Equal(t, "yes", serve(engine, http.MethodGet, "/api/v1/orders").Header().Get("X-Scoped"))
	assert.Empty(t, serve(engine, http.MethodGet, "/health").Header().Get("X-Scoped"))
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("orders", "/orders")
		assert.Equal(t, "orders", g.Name())
		assert.Equal(t, "/orders", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.Status(http.StatusOK) }
		g := NewDomainGroup("accounts", "/accounts").
			GET("", ok).
			POST("", ok).
			PUT("/:id", ok).
			PATCH("/:id", ok).
			DELETE("/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tt := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/accounts"},
			{http.MethodPost, "/api/v1/accounts"},
			{http.MethodPut, "/api/v1/accounts/1"},
			{http.MethodPatch, "/api/v1/accounts/1"},
			{http.MethodDelete, "/api/v1/accounts/1"},
		} {
			assert.Equal(t, http.StatusOK, serve(engine, tt.method, tt.path).Code, "%s %s", tt.method, tt.path)
		}
	})

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("assets", "/assets")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "applied", serve(engine, http.MethodGet, "/api/v1/assets").Header().Get("X-Test-Middleware"))
	})

	t.Run("creates subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("pos", "/pos")
		g.Group("sales", "/sales").GET("", func(c *gin.Context) { c.String(http.StatusOK, "sales") })
		g.Group("sessions", "/sessions").GET("", func(c *gin.Context) { c.String(http.StatusOK, "sessions") })
		g.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "sales", serve(engine, http.MethodGet, "/api/v1/pos/sales").Body.String())
		assert.Equal(t, "sessions", serve(engine, http.MethodGet, "/api/v1/pos/sessions").Body.String())
	})
}

func TestDomainGroup_UseOnWrite(t *testing.T) {
	engine := gin.New()
	blocked := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	g := NewDomainGroup("pos", "/pos").UseOnWrite(blocked, nil)
	g.GET("/sales", ok).POST("/sales", ok)
	g.Group("sessions", "/sessions").GET("", ok).POST("", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/pos/sales").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/pos/sales").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v1/pos/sessions").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/pos/sessions").Code)
}

func TestRegisterAPI_Routes(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Accounts:  handler.NewAccountHandler(nil),
		Roles:     handler.NewRoleMappingHandler(nil),
		Journal:   handler.NewJournalHandler(nil),
		Finance:   handler.NewFinanceHandler(nil, nil, nil),
		POS:       handler.NewPOSHandler(nil, nil, nil),
		Inventory: handler.NewInventoryHandler(nil, nil, nil),
		Orders:    handler.NewOrderHandler(nil, nil),
		Assets:    handler.NewAssetHandler(nil, nil),
		Outbox:    handler.NewOutboxHandler(nil),
		System:    handler.NewSystemHandler("test", "0.0.0"),
		Jobs:      handler.NewJobsHandler(nil, nil),
	}
	require.NotPanics(t, func() {
		NewRouter(engine).RegisterAPI(h, nil).Setup()
	})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/accounts",
		"PATCH /api/v1/accounts/:id",
		"PUT /api/v1/role-mappings",
		"DELETE /api/v1/role-mappings/:role",
		"GET /api/v1/role-mappings/setup-check",
		"POST /api/v1/journal-entries",
		"POST /api/v1/journal-entries/:id/reverse",
		"GET /api/v1/journal-entries/by-reference/:ref_type/:ref_id",
		"GET /api/v1/reports/trial-balance",
		"GET /api/v1/reports/aging",
		"POST /api/v1/documents/:id/cancel",
		"POST /api/v1/payments",
		"POST /api/v1/payments/:id/allocate",
		"POST /api/v1/pos/sales",
		"GET /api/v1/pos/sessions/current",
		"POST /api/v1/pos/sessions/:id/movements",
		"POST /api/v1/pos/sessions/:id/close",
		"POST /api/v1/stock-transfers/:id/transition",
		"POST /api/v1/stock-opnames/:id/complete",
		"GET /api/v1/stock-movements/:ref_type/:ref_id",
		"POST /api/v1/orders/:id/invoice",
		"POST /api/v1/orders/:id/bill",
		"POST /api/v1/orders/:id/deposit",
		"POST /api/v1/assets/:id/depreciation",
		"POST /api/v1/system/jobs/depreciation",
		"GET /api/v1/system/outbox/dead",
		"GET /api/v1/health",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
