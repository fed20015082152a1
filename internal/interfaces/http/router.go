package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stockmanager-api/internal/application/auth"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/application/orders"
	"github.com/jhoicas/stockmanager-api/internal/application/usecase"
	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *usecase.UserUseCase
	ProductUC *usecase.ProductUseCase
	CatalogUC *usecase.CatalogUseCase
	Gateway   *inventory.MovementGateway
	Bulk      *inventory.BulkCoordinator
	OrdersUC  *orders.UseCase
	Wizard    *wizard.Service
	Gatherer  prometheus.Gatherer // nil = sin /metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// El token es opcional: sin token actúa la identidad de sistema
	secured := api.Group("/", OptionalAuth(deps.JWTSecret))

	authGroup := secured.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authHandler.Me)

	movementHandler := NewStockMovementHandler(deps.Gateway)
	movements := secured.Group("/stock-movements")
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)

	// Bulk antes de /:id
	bulkHandler := NewBulkHandler(deps.Bulk)
	products := secured.Group("/products")
	products.Put("/bulk/stock", bulkHandler.AdjustStock)
	products.Put("/bulk/category", bulkHandler.UpdateCategory)
	products.Put("/bulk/supplier", bulkHandler.UpdateSupplier)
	products.Put("/bulk/prices", bulkHandler.AdjustPrices)
	products.Put("/bulk/status", bulkHandler.UpdateStatus)
	products.Delete("/bulk", bulkHandler.Delete)

	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/ledger/verify", movementHandler.VerifyLedger)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	secured.Post("/categories", catalogHandler.CreateCategory)
	secured.Get("/categories", catalogHandler.ListCategories)
	secured.Post("/suppliers", catalogHandler.CreateSupplier)
	secured.Get("/suppliers", catalogHandler.ListSuppliers)

	orderHandler := NewOrderHandler(deps.OrdersUC)
	ordersGroup := secured.Group("/orders")
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id/status", orderHandler.UpdateStatus)
	ordersGroup.Delete("/:id", orderHandler.Delete)

	if deps.Wizard != nil {
		botHandler := NewBotHandler(deps.Wizard)
		secured.Post("/bot/conversations/:id/messages", botHandler.HandleMessage)
	}
}
