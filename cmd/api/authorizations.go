package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/homecare-fulfillment/internal/application/authorization"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/storage"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
	"github.com/jhoicas/homecare-fulfillment/pkg/logger"
)

func authorizationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authorizations",
		Short: "Tareas de mantenimiento de autorizaciones",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Marca EXPIRED las autorizaciones con vigencia vencida en todos los tenants activos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpire(cmd.Context())
		},
	})
	return cmd
}

func runExpire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	be, err := openBackend(ctx, cfg, log.Component("db"))
	if err != nil {
		return err
	}
	defer be.close()
	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	uc := authorization.NewUseCase(be.tx, files, be.audit, log.Component("authorizations"))

	tenantIDs, err := be.tenants.ListActiveIDs(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	total := 0
	for _, id := range tenantIDs {
		n, err := uc.ExpireOverdue(ctx, id, now)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", id).Msg("vencer autorizaciones")
			continue
		}
		total += n
	}
	log.Info().Int("tenants", len(tenantIDs)).Int("expired", total).Msg("vencimiento de autorizaciones terminado")
	return nil
}
