package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/jhoicas/homecare-fulfillment/internal/application/authorization"
	"github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/application/episode"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
	"github.com/jhoicas/homecare-fulfillment/internal/application/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/application/tenancy"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/pdf"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/storage"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/homecare-fulfillment/internal/interfaces/http"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
	"github.com/jhoicas/homecare-fulfillment/pkg/jwt"
	"github.com/jhoicas/homecare-fulfillment/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	if err != nil {
		return fmt.Errorf("serve: JWT_SECRET es obligatorio: %w", err)
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("storage_driver", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log.Component("db"))
	if err != nil {
		log.Error().Err(err).Msg("persistencia")
		return err
	}
	defer be.close()

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Error().Err(err).Msg("almacenamiento de archivos")
		return err
	}

	auditSink := be.audit
	minEvidence := cfg.Fulfillment.MinDeliveryEvidence

	stockUC := inventory.NewStockUseCase(be.tx, auditSink, log.Component("inventory"))
	orderUC := fulfillment.NewOrderUseCase(be.tx, auditSink, log.Component("orders"))
	pickListUC := fulfillment.NewPickListUseCase(be.tx, auditSink, log.Component("pick_lists"))
	deliveryUC := fulfillment.NewDeliveryUseCase(be.tx, be.seq, files, auditSink, log.Component("deliveries"), fulfillment.DeliveryConfig{
		MinEvidence: minEvidence,
		Prefix:      cfg.Fulfillment.DeliveryPrefix,
	})
	episodeUC := episode.NewUseCase(be.tx, auditSink, log.Component("episodes"))
	authorizationUC := authorization.NewUseCase(be.tx, files, auditSink, log.Component("authorizations"))
	ruleUC := billing.NewRuleUseCase(be.tx, auditSink, log.Component("billing_rules"))
	invoiceUC := billing.NewInvoiceUseCase(be.tx, be.seq, auditSink, log.Component("invoices"), billing.InvoiceConfig{
		MinEvidence: minEvidence,
		Prefix:      cfg.Fulfillment.InvoicePrefix,
	})
	exportUC := billing.NewExportUseCase(be.tx, pdf.NewMarotoListingRenderer(), xlsx.NewExcelizeRenderer(), log.Component("exports"), minEvidence)
	moduleSvc := tenancy.NewModuleService(be.tenants)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Homecare Fulfillment API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Stock:          stockUC,
		Orders:         orderUC,
		PickLists:      pickListUC,
		Deliveries:     deliveryUC,
		Episodes:       episodeUC,
		Authorizations: authorizationUC,
		Rules:          ruleUC,
		Invoices:       invoiceUC,
		Exports:        exportUC,
		Modules:        moduleSvc,
		Tokens:         tokens,
		Log:            log.Component("http"),
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
	return nil
}
