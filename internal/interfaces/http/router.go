package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/authorization"
	"github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/application/episode"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
	"github.com/jhoicas/homecare-fulfillment/internal/application/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock          *inventory.StockUseCase
	Orders         *fulfillment.OrderUseCase
	PickLists      *fulfillment.PickListUseCase
	Deliveries     *fulfillment.DeliveryUseCase
	Episodes       *episode.UseCase
	Authorizations *authorization.UseCase
	Rules          *billing.RuleUseCase
	Invoices       *billing.InvoiceUseCase
	Exports        *billing.ExportUseCase
	Modules        ports.EntitlementChecker
	Tokens         *jwt.Signer
	Log            zerolog.Logger
}

// Roles por área.
var (
	rolesStock     = []string{entity.RoleAdmin, entity.RoleBodeguero}
	rolesPlanning  = []string{entity.RoleAdmin, entity.RoleCoordinador}
	rolesLogistics = []string{entity.RoleAdmin, entity.RoleBodeguero, entity.RoleCoordinador}
	rolesAuthz     = []string{entity.RoleAdmin, entity.RoleCoordinador, entity.RoleFacturador}
	rolesBilling   = []string{entity.RoleAdmin, entity.RoleFacturador}
)

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	protected := api.Group("/", AuthMiddleware(deps.Tokens))

	// RequireModule va en cada prefijo; un Group("/") con middleware alcanza a toda /api.
	logistics := RequireModule(entity.ModuleLogistics, deps.Modules, deps.Log)
	billingModule := RequireModule(entity.ModuleBilling, deps.Modules, deps.Log)

	inventoryHandler := NewInventoryHandler(deps.Stock, deps.Log)
	inv := protected.Group("/inventory", logistics)
	inv.Post("/movements", RequireRole(rolesStock...), inventoryHandler.RegisterMovement)
	inv.Get("/movements", RequireRole(rolesLogistics...), inventoryHandler.ListMovements)
	inv.Get("/availability", RequireRole(rolesLogistics...), inventoryHandler.GetAvailability)

	orderHandler := NewOrderHandler(deps.Orders, deps.Log)
	pickListHandler := NewPickListHandler(deps.PickLists, deps.Log)
	orders := protected.Group("/orders", logistics)
	orders.Post("/", RequireRole(rolesPlanning...), orderHandler.CreateOrder)
	orders.Get("/:id", RequireRole(rolesLogistics...), orderHandler.GetOrder)
	orders.Post("/:id/items", RequireRole(rolesPlanning...), orderHandler.AddItems)
	orders.Post("/:id/kits", RequireRole(rolesPlanning...), orderHandler.ApplyKit)
	orders.Post("/:id/pick-list", RequireRole(rolesLogistics...), pickListHandler.Generate)

	kits := protected.Group("/kits", logistics, RequireRole(rolesPlanning...))
	kits.Post("/", orderHandler.CreateKit)
	kits.Post("/:id/items", orderHandler.AddKitItems)

	deliveryHandler := NewDeliveryHandler(deps.Deliveries, deps.Log)
	pickLists := protected.Group("/pick-lists", logistics, RequireRole(rolesLogistics...))
	pickLists.Get("/:id", pickListHandler.Get)
	pickLists.Put("/:id/items/:itemId/warehouse", pickListHandler.AssignWarehouse)
	pickLists.Post("/:id/items/:itemId/incident", pickListHandler.ReportIncident)
	pickLists.Post("/:id/freeze", pickListHandler.Freeze)
	pickLists.Post("/:id/pack", pickListHandler.Pack)
	pickLists.Post("/:id/delivery", deliveryHandler.Create)

	deliveries := protected.Group("/deliveries", logistics, RequireRole(rolesLogistics...))
	deliveries.Get("/:id", deliveryHandler.Get)
	deliveries.Get("/:id/evidence", deliveryHandler.ListEvidence)
	deliveries.Post("/:id/evidence", deliveryHandler.UploadEvidence)
	deliveries.Post("/:id/in-transit", deliveryHandler.MarkInTransit)
	deliveries.Post("/:id/delivered", deliveryHandler.MarkDelivered)
	deliveries.Post("/:id/close", deliveryHandler.Close)
	deliveries.Post("/:id/incident", deliveryHandler.ReportIncident)

	episodeHandler := NewEpisodeHandler(deps.Episodes, deps.Log)
	episodes := protected.Group("/episodes", logistics, RequireRole(rolesPlanning...))
	episodes.Post("/:id/stage", episodeHandler.MoveStage)
	episodes.Post("/:id/close", episodeHandler.Close)

	// Autorizaciones
	authzHandler := NewAuthorizationHandler(deps.Authorizations, deps.Log)
	authz := protected.Group("/authorizations",
		RequireModule(entity.ModuleAuthorizations, deps.Modules, deps.Log),
		RequireRole(rolesAuthz...),
	)
	authz.Post("/", authzHandler.Create)
	authz.Get("/:id", authzHandler.Get)
	authz.Patch("/:id/status", authzHandler.UpdateStatus)
	authz.Patch("/:id/requirements/:reqId", authzHandler.UpdateRequirement)
	authz.Post("/:id/requirements/:reqId/file", authzHandler.UploadRequirementFile)

	// Facturación
	invoiceHandler := NewInvoiceHandler(deps.Rules, deps.Invoices, deps.Log)
	protected.Put("/billing-rules", billingModule, RequireRole(rolesBilling...), invoiceHandler.UpsertRule)

	invoices := protected.Group("/invoices", billingModule, RequireRole(rolesBilling...))
	invoices.Post("/", invoiceHandler.Generate)
	invoices.Get("/:id", invoiceHandler.Get)
	invoices.Post("/:id/reconcile", invoiceHandler.Reconcile)
	invoices.Post("/:id/debit-notes", invoiceHandler.AddDebitNote)
	invoices.Post("/:id/payments", invoiceHandler.AddPayment)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	exportHandler := NewExportHandler(deps.Exports, deps.Log)
	exports := protected.Group("/exports", billingModule, RequireRole(rolesBilling...))
	exports.Get("/invoices", exportHandler.Invoices)
	exports.Get("/pre-liquidation", exportHandler.PreLiquidation)
}
