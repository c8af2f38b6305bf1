package tenancy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/tenancy"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/memory"
)

type mockTenants struct{ mock.Mock }

func (m *mockTenants) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*entity.Tenant)
	return t, args.Error(1)
}

func (m *mockTenants) GetModule(ctx context.Context, tenantID, moduleName string) (*entity.TenantModule, error) {
	args := m.Called(ctx, tenantID, moduleName)
	mod, _ := args.Get(0).(*entity.TenantModule)
	return mod, args.Error(1)
}

func (m *mockTenants) ListActiveIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func store(status string, modules ...entity.TenantModule) *memory.Store {
	s := memory.New()
	s.AddTenant(entity.Tenant{ID: "t1", Name: "Prestador", Status: status})
	for _, m := range modules {
		s.AddModule(m)
	}
	return s
}

func TestCheck_Motivos(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		status  string
		module  *entity.TenantModule
		check   string
		allowed bool
		reason  string
	}{
		{"activo", entity.TenantStatusActive, &entity.TenantModule{IsActive: true}, entity.ModuleLogistics, true, ""},
		{"con vencimiento futuro", entity.TenantStatusActive, &entity.TenantModule{IsActive: true, ExpiresAt: &future}, entity.ModuleLogistics, true, ""},
		{"vencido", entity.TenantStatusActive, &entity.TenantModule{IsActive: true, ExpiresAt: &past}, entity.ModuleLogistics, false, tenancy.ReasonModuleExpired},
		{"desactivado", entity.TenantStatusActive, &entity.TenantModule{IsActive: false}, entity.ModuleLogistics, false, tenancy.ReasonModuleInactive},
		{"no contratado", entity.TenantStatusActive, nil, entity.ModuleLogistics, false, tenancy.ReasonModuleMissing},
		{"cuenta suspendida", entity.TenantStatusSuspended, &entity.TenantModule{IsActive: true}, entity.ModuleLogistics, false, tenancy.ReasonTenantSuspended},
		{"deuda vencida bloquea facturación", entity.TenantStatusPastDue, &entity.TenantModule{IsActive: true}, entity.ModuleBilling, false, tenancy.ReasonTenantPastDue},
		{"deuda vencida no bloquea logística", entity.TenantStatusPastDue, &entity.TenantModule{IsActive: true}, entity.ModuleLogistics, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mods []entity.TenantModule
			if tt.module != nil {
				m := *tt.module
				m.TenantID, m.ModuleName = "t1", tt.check
				mods = append(mods, m)
			}
			svc := tenancy.NewModuleService(store(tt.status, mods...))

			ent, err := svc.Check(context.Background(), "t1", tt.check)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ent.Allowed)
			assert.Equal(t, tt.reason, ent.Reason)
		})
	}
}

func TestCheck_TenantInexistente(t *testing.T) {
	svc := tenancy.NewModuleService(memory.New())

	ent, err := svc.Check(context.Background(), "t-x", entity.ModuleLogistics)
	require.NoError(t, err)
	assert.False(t, ent.Allowed)
	assert.Equal(t, tenancy.ReasonTenantNotFound, ent.Reason)
}

func TestCheck_FalloDeInfraestructura(t *testing.T) {
	repo := new(mockTenants)
	repo.On("GetByID", mock.Anything, "t1").Return(&entity.Tenant{ID: "t1", Status: entity.TenantStatusActive}, nil)
	repo.On("GetModule", mock.Anything, "t1", entity.ModuleBilling).Return(nil, errors.New("conexión rechazada"))
	svc := tenancy.NewModuleService(repo)

	_, err := svc.Check(context.Background(), "t1", entity.ModuleBilling)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión rechazada")
	repo.AssertExpectations(t)
}

func TestCheck_ParametrosObligatorios(t *testing.T) {
	svc := tenancy.NewModuleService(memory.New())

	_, err := svc.Check(context.Background(), "", entity.ModuleBilling)
	assert.Error(t, err)
}
