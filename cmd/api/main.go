package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/stockmanager-api/internal/application/auth"
	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/application/orders"
	"github.com/jhoicas/stockmanager-api/internal/application/usecase"
	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
	"github.com/jhoicas/stockmanager-api/internal/domain/repository"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/barcode"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockmanager-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stockmanager-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stockmanager-api/internal/interfaces/http"
	"github.com/jhoicas/stockmanager-api/pkg/config"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

// storage repositorios del backend elegido.
type storage struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	movements  repository.StockMovementRepository
	orders     repository.OrderRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	users      repository.UserRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Str("sessions", cfg.Bot.SessionDriver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: login deshabilitado y todo token será rechazado")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar sesiones del asistente")
	}
	defer closeSessions()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLedgerMetrics(registry)

	actors := inventory.NewActorResolver(store.users, cfg.Bot.SystemUserEmail, cfg.Bot.SystemUserName, log)
	gateway := inventory.NewMovementGateway(store.tx, store.products, store.movements, actors, log, m)
	bulk := inventory.NewBulkCoordinator(store.tx, store.categories, store.suppliers, actors, log, m)
	ordersUC := orders.NewUseCase(store.tx, store.orders, store.products, store.suppliers, gateway, actors, log, m)
	productUC := usecase.NewProductUseCase(store.tx, store.products, store.categories, store.suppliers, gateway, actors)
	catalogUC := usecase.NewCatalogUseCase(store.categories, store.suppliers)
	wizardSvc := wizard.NewService(sessions, store.products, barcode.NewDecoder(), gateway, cfg.Bot.SessionTTL, log, m)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    8 << 20, // fotos de códigos de barras en base64
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe docs/swagger.json)
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Stock Manager API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    usecase.NewUserUseCase(store.users),
		ProductUC: productUC,
		CatalogUC: catalogUC,
		Gateway:   gateway,
		Bulk:      bulk,
		OrdersUC:  ordersUC,
		Wizard:    wizardSvc,
		Gatherer:  registry,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			tx:         s,
			products:   s.Products(),
			movements:  s.Movements(),
			orders:     s.Orders(),
			categories: s.Categories(),
			suppliers:  s.Suppliers(),
			users:      s.Users(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPoolWithRetry(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.MigrateUp(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		orders:     postgres.NewOrderRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool),
		users:      postgres.NewUserRepository(pool),
		close:      pool.Close,
	}, nil
}

func openSessions(ctx context.Context, cfg *config.Config) (wizard.SessionStore, func(), error) {
	if cfg.Bot.SessionDriver == config.DriverMemory {
		return memory.NewSessionStore(nil), func() {}, nil
	}
	client, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return infraredis.NewSessionStore(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
}
