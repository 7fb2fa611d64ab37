package router

import (
	"github.com/erp/accounting/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler served under the versioned API
type Handlers struct {
	Accounts  *handler.AccountHandler
	Roles     *handler.RoleMappingHandler
	Journal   *handler.JournalHandler
	Finance   *handler.FinanceHandler
	POS       *handler.POSHandler
	Inventory *handler.InventoryHandler
	Orders    *handler.OrderHandler
	Assets    *handler.AssetHandler
	Outbox    *handler.OutboxHandler
	System    *handler.SystemHandler
	Jobs      *handler.JobsHandler
}

// RegisterAPI builds the domain groups of the accounting API. writeLimit,
// when not nil, guards every mutating route.
func (r *Router) RegisterAPI(h Handlers, writeLimit gin.HandlerFunc) *Router {
	ledgerRoutes := NewDomainGroup("ledger", "").UseOnWrite(writeLimit)

	accounts := ledgerRoutes.Group("accounts", "/accounts")
	accounts.POST("", h.Accounts.Create).
		GET("", h.Accounts.List).
		GET("/:id", h.Accounts.Get).
		PATCH("/:id", h.Accounts.Update)

	roles := ledgerRoutes.Group("role-mappings", "/role-mappings")
	roles.PUT("", h.Roles.Set).
		GET("", h.Roles.List).
		GET("/setup-check", h.Roles.CheckSetup).
		GET("/suggestions", h.Roles.Suggest).
		DELETE("/:role", h.Roles.Remove)

	journal := ledgerRoutes.Group("journal-entries", "/journal-entries")
	journal.POST("", h.Journal.PostManual).
		GET("", h.Journal.List).
		GET("/by-reference/:ref_type/:ref_id", h.Journal.GetByReference).
		GET("/:id", h.Journal.Get).
		POST("/:id/reverse", h.Journal.Reverse)

	reports := NewDomainGroup("reports", "/reports")
	reports.GET("/trial-balance", h.Journal.TrialBalance).
		GET("/aging", h.Finance.Aging)

	financeRoutes := NewDomainGroup("finance", "").UseOnWrite(writeLimit)
	financeRoutes.Group("documents", "/documents").
		GET("", h.Finance.ListDocuments).
		GET("/:id", h.Finance.GetDocument).
		POST("/:id/cancel", h.Finance.CancelDocument)
	financeRoutes.Group("payments", "/payments").
		POST("", h.Finance.RecordPayment).
		GET("/:id", h.Finance.GetPayment).
		POST("/:id/allocate", h.Finance.AllocatePayment)

	posRoutes := NewDomainGroup("pos", "/pos").UseOnWrite(writeLimit)
	posRoutes.Group("sales", "/sales").
		POST("", h.POS.PostSale).
		GET("", h.POS.ListSales).
		GET("/:id", h.POS.GetSale)
	posRoutes.Group("payment-methods", "/payment-methods").
		POST("", h.POS.CreatePaymentMethod).
		GET("", h.POS.ListPaymentMethods).
		PATCH("/:id/active", h.POS.SetPaymentMethodActive)
	posRoutes.Group("sessions", "/sessions").
		POST("", h.POS.OpenSession).
		GET("/current", h.POS.CurrentSession).
		GET("/:id", h.POS.GetSession).
		POST("/:id/movements", h.POS.RecordMovement).
		GET("/:id/movements", h.POS.ListMovements).
		POST("/:id/close", h.POS.CloseSession)

	inventoryRoutes := NewDomainGroup("inventory", "").UseOnWrite(writeLimit)
	inventoryRoutes.Group("warehouses", "/warehouses").
		POST("", h.Inventory.CreateWarehouse).
		GET("", h.Inventory.ListWarehouses).
		GET("/:id", h.Inventory.GetWarehouse).
		PUT("/:id/pic", h.Inventory.AssignPIC).
		GET("/:id/stock", h.Inventory.StockLevels)
	inventoryRoutes.Group("stock-movements", "/stock-movements").
		GET("/:ref_type/:ref_id", h.Inventory.StockMovements)
	inventoryRoutes.Group("stock-transfers", "/stock-transfers").
		POST("", h.Inventory.CreateTransfer).
		GET("", h.Inventory.ListTransfers).
		GET("/:id", h.Inventory.GetTransfer).
		POST("/:id/transition", h.Inventory.TransitionTransfer)
	inventoryRoutes.Group("stock-opnames", "/stock-opnames").
		POST("", h.Inventory.CreateOpname).
		GET("", h.Inventory.ListOpnames).
		GET("/:id", h.Inventory.GetOpname).
		POST("/:id/items", h.Inventory.AddOpnameItem).
		POST("/:id/start", h.Inventory.StartOpname).
		POST("/:id/counts", h.Inventory.RecordCount).
		POST("/:id/complete", h.Inventory.CompleteOpname)

	orders := NewDomainGroup("orders", "/orders").UseOnWrite(writeLimit)
	orders.POST("", h.Orders.Create).
		GET("", h.Orders.List).
		GET("/:id", h.Orders.Get).
		POST("/:id/confirm", h.Orders.Confirm).
		POST("/:id/cancel", h.Orders.Cancel).
		POST("/:id/invoice", h.Orders.GenerateInvoice).
		POST("/:id/bill", h.Orders.GenerateBill).
		POST("/:id/deposit", h.Orders.RecordDeposit)

	assets := NewDomainGroup("assets", "/assets").UseOnWrite(writeLimit)
	assets.POST("", h.Assets.Register).
		GET("", h.Assets.List).
		GET("/:id", h.Assets.Get).
		POST("/:id/dispose", h.Assets.Dispose).
		GET("/:id/depreciation", h.Assets.History).
		POST("/:id/depreciation", h.Assets.PostRun)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping)
	if h.Outbox != nil {
		system.Group("outbox", "/outbox").
			GET("/stats", h.Outbox.GetStats).
			GET("/dead", h.Outbox.GetDeadLetterEntries).
			POST("/dead/retry-all", h.Outbox.RetryAllDeadEntries).
			GET("/entries/:id", h.Outbox.GetEntry).
			POST("/entries/:id/retry", h.Outbox.RetryDeadEntry)
	}
	if h.Jobs != nil {
		system.Group("jobs", "/jobs").
			POST("/depreciation", h.Jobs.RunDepreciation).
			POST("/overdue", h.Jobs.SweepOverdue)
	}

	health := NewDomainGroup("health", "/health")
	health.GET("", h.System.Health)

	return r.Register(ledgerRoutes).
		Register(reports).
		Register(financeRoutes).
		Register(posRoutes).
		Register(inventoryRoutes).
		Register(orders).
		Register(assets).
		Register(system).
		Register(health)
}
