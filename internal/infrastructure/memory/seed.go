package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.TenantRepository = (*Store)(nil)

// Carga de datos de referencia. Se usan en desarrollo y pruebas; no pasan por transacciones.

func (s *Store) AddTenant(t entity.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tenants[t.ID] = t
}

func (s *Store) AddModule(m entity.TenantModule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.modules[[2]string{m.TenantID, m.ModuleName}] = m
}

func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.warehouses[w.ID] = w
}

func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

func (s *Store) AddPatient(p entity.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.patients[p.ID] = p
}

func (s *Store) AddEpisode(e entity.Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.episodes[e.ID] = e
}

func (s *Store) AddStage(st entity.WorkflowStage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.stages[st.ID] = st
}

func (s *Store) AddPayer(p entity.Payer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.payers[p.ID] = p
}

func (s *Store) AddPlan(p entity.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.plans[p.ID] = p
}

func (s *Store) AddPayerRequirement(r entity.PayerRequirement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.catalog = append(s.state.catalog, r)
}

// GetByID implementa repository.TenantRepository.
func (s *Store) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.state.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// GetModule implementa repository.TenantRepository.
func (s *Store) GetModule(_ context.Context, tenantID, moduleName string) (*entity.TenantModule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.state.modules[[2]string{tenantID, moduleName}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// ListActiveIDs implementa repository.TenantRepository.
func (s *Store) ListActiveIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, t := range s.state.tenants {
		if t.Status != entity.TenantStatusSuspended {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
