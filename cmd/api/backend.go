package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/audit"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/memory"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/postgres"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

// backend agrupa la persistencia elegida por DB_DRIVER.
type backend struct {
	tx      ports.TxRunner
	seq     ports.Sequencer
	audit   ports.AuditSink
	tenants repository.TenantRepository
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.New()
		seedDemo(store, log)
		return &backend{
			tx:      store,
			seq:     memory.NewSequencer(),
			audit:   audit.NewLogSink(log),
			tenants: store,
			close:   func() {},
		}, nil
	case config.DriverPostgres, "":
		if cfg.DB.MigrationsAuto {
			if err := runMigrations(cfg, log, func(m *postgres.Migrator) error { return m.Up() }); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		seqPool, err := postgres.NewSequencerPool(ctx, cfg.DB, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("conexión a PostgreSQL (numeración): %w", err)
		}
		return &backend{
			tx:      postgres.NewTxRunner(pool),
			seq:     postgres.NewSequencer(seqPool),
			audit:   audit.Multi{postgres.NewAuditRepository(pool, log), audit.NewLogSink(log)},
			tenants: postgres.NewTenantRepository(pool),
			close: func() {
				seqPool.Close()
				pool.Close()
			},
		}, nil
	}
	return nil, fmt.Errorf("DB_DRIVER desconocido %q", cfg.DB.Driver)
}

// Identificadores fijos del tenant de demostración (solo DB_DRIVER=memory).
const (
	demoTenantID    = "00000000-0000-0000-0000-000000000001"
	demoWarehouseID = "00000000-0000-0000-0000-000000000101"
	demoProductID   = "00000000-0000-0000-0000-000000000201"
	demoPatientID   = "00000000-0000-0000-0000-000000000301"
	demoPayerID     = "00000000-0000-0000-0000-000000000401"
)

func seedDemo(store *memory.Store, log zerolog.Logger) {
	now := time.Now()
	store.AddTenant(entity.Tenant{ID: demoTenantID, Name: "Prestador Demo", Status: entity.TenantStatusActive, CreatedAt: now})
	for _, m := range []string{entity.ModuleLogistics, entity.ModuleAuthorizations, entity.ModuleBilling} {
		store.AddModule(entity.TenantModule{TenantID: demoTenantID, ModuleName: m, IsActive: true, ActivatedAt: now})
	}
	store.AddWarehouse(entity.Warehouse{ID: demoWarehouseID, TenantID: demoTenantID, Name: "Depósito central", Active: true, CreatedAt: now, UpdatedAt: now})
	store.AddProduct(entity.Product{ID: demoProductID, TenantID: demoTenantID, SKU: "GASA-10", Name: "Gasa estéril 10x10", UnitMeasure: "unidad", CreatedAt: now})
	store.AddPatient(entity.Patient{ID: demoPatientID, TenantID: demoTenantID, FullName: "Paciente Demo", DocumentID: "00000000"})
	store.AddPayer(entity.Payer{ID: demoPayerID, TenantID: demoTenantID, Name: "Obra Social Demo", TaxID: "30-00000000-0"})
	log.Warn().Str("tenant_id", demoTenantID).Msg("DB_DRIVER=memory: datos de demostración cargados, no se persiste nada")
}

// runMigrations abre el migrador, ejecuta fn y lo cierra.
func runMigrations(cfg *config.Config, log zerolog.Logger, fn func(m *postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}
