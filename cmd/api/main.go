package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Ensamble-api/internal/application/assembly"
	"github.com/jhoicas/Ensamble-api/internal/application/reporting"
	infraexcel "github.com/jhoicas/Ensamble-api/internal/infrastructure/excel"
	"github.com/jhoicas/Ensamble-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Ensamble-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Ensamble-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Ensamble-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Ensamble-api/internal/interfaces/http"
	"github.com/jhoicas/Ensamble-api/pkg/config"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.Migrations.AutoRun {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	bomRepo := postgres.NewBOMRepository(pool)
	assemblyRepo := postgres.NewAssemblyRepository(pool)
	stockRepo := postgres.NewVendorStockRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Idempotencia opcional (Redis)
	var idempotency assembly.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = client.Close() }()
		idempotency = infraredis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia de ensambles activa")
	}

	// Métricas opcionales (Prometheus)
	var (
		prom          *metrics.Prometheus
		assemblyStats assembly.Metrics
		requestStats  httpRouter.RequestObserver
	)
	if cfg.Metrics.Enabled {
		prom = metrics.New(cfg.Metrics.Namespace)
		assemblyStats = prom
		requestStats = prom
	}

	createAssemblyUC := assembly.NewCreateAssemblyUseCase(
		txRunner, bomRepo, poRepo, activityRepo, idempotency, assemblyStats, log,
	)
	reverseAssemblyUC := assembly.NewReverseAssemblyUseCase(txRunner, activityRepo, assemblyStats, log)
	catalogUC := assembly.NewCatalogUseCase(bomRepo, assemblyRepo)
	availabilityUC := assembly.NewAvailabilityUseCase(bomRepo, stockRepo)

	// Reportes: lista de retiro (PDF) y trazabilidad (XLSX)
	picklistUC := reporting.NewPicklistUseCase(assemblyRepo, bomRepo, infrapdf.NewMarotoPicklistGenerator(), log)
	traceabilityUC := reporting.NewTraceabilityUseCase(assemblyRepo, infraexcel.NewTraceabilityExporter(), log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Named("http"), requestStats))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Ensamble API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if prom != nil {
		app.Get("/metrics", adaptor.HTTPHandler(prom.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateAssembly:  createAssemblyUC,
		ReverseAssembly: reverseAssemblyUC,
		Catalog:         catalogUC,
		Availability:    availabilityUC,
		Picklists:       picklistUC,
		Traceability:    traceabilityUC,
		JWTSecret:       cfg.JWT.Secret,
		APIKeyHash:      cfg.APIKey.Hash,
		Logger:          log.Named("reports"),
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
