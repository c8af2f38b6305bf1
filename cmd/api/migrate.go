package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/postgres"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
	"github.com/jhoicas/homecare-fulfillment/pkg/logger"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de base de datos (embebidas en el binario)",
	}
	cmd.AddCommand(migrateStep("up", "Aplica las migraciones pendientes", func(m *postgres.Migrator) error { return m.Up() }))
	cmd.AddCommand(migrateStep("down", "Revierte la última migración", func(m *postgres.Migrator) error { return m.Down() }))
	cmd.AddCommand(migrateStep("version", "Muestra la versión aplicada", func(m *postgres.Migrator) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	}))
	return cmd
}

func migrateStep(use, short string, fn func(m *postgres.Migrator) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DB.Driver == config.DriverMemory {
				return fmt.Errorf("migrate: DB_DRIVER=memory no usa migraciones")
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			return runMigrations(cfg, log.Component("migrate"), fn)
		},
	}
}
