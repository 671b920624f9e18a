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

	_ "github.com/jhoicas/Documentos-api/docs"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Documentos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/realtime"
	httpRouter "github.com/jhoicas/Documentos-api/internal/interfaces/http"
	"github.com/jhoicas/Documentos-api/pkg/config"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

// storage repositorios de un backend (postgres o memoria).
type storage struct {
	txRunner   document.TxRunner
	documents  repository.DocumentRepository
	sequences  repository.SequenceRepository
	currencies repository.CurrencyRepository
	taxes      repository.TaxRepository
	articles   repository.ArticleRepository
	firms      repository.FirmRepository
	close      func()
}

// @title                       Documentos API
// @version                     1.0
// @description                 Cotizaciones y facturas de venta y de gastos.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	hub := realtime.NewHub()
	precision := int32(cfg.Documents.DefaultPrecision)

	documentUC := document.NewUseCase(
		store.txRunner, store.documents, store.currencies, store.taxes, store.articles, store.firms,
		hub, log, precision,
	)
	pdfUC := document.NewPDFUseCase(
		store.documents, store.firms, infrapdf.NewMarotoPDFGenerator(), cfg.Documents.IssuerName, precision,
	)
	sequenceUC := document.NewSequenceUseCase(store.txRunner, store.sequences, hub)
	referenceUC := document.NewReferenceUseCase(store.currencies, store.taxes, store.articles)
	firmUC := document.NewFirmUseCase(store.firms)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// Sin WriteTimeout: el canal SSE de numeración mantiene la respuesta abierta.
		WriteTimeout: 0,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Documentos API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Documents:   documentUC,
		PDF:         pdfUC,
		Sequences:   sequenceUC,
		References:  referenceUC,
		Firms:       firmUC,
		Hub:         hub,
		Log:         log,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
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

// openStorage aplica las migraciones y abre el pool, o arma el almacén en memoria
// con los datos de referencia por defecto.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		store := memory.NewStore()
		store.SeedDefaults()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			txRunner:   memory.NewTxRunner(store),
			documents:  memory.NewDocumentRepository(store),
			sequences:  memory.NewSequenceRepository(store),
			currencies: memory.NewCurrencyRepository(store),
			taxes:      memory.NewTaxRepository(store),
			articles:   memory.NewArticleRepository(store),
			firms:      memory.NewFirmRepository(store),
			close:      func() {},
		}, nil
	}

	version, err := postgres.Migrate(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath, postgres.Up)
	if err != nil {
		return nil, err
	}
	log.Info().Uint("version", version).Msg("migraciones aplicadas")

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:   postgres.NewTxRunner(pool),
		documents:  postgres.NewDocumentRepository(pool),
		sequences:  postgres.NewSequenceRepository(pool),
		currencies: postgres.NewCurrencyRepository(pool),
		taxes:      postgres.NewTaxRepository(pool),
		articles:   postgres.NewArticleRepository(pool),
		firms:      postgres.NewFirmRepository(pool),
		close:      pool.Close,
	}, nil
}
