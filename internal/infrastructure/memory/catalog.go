package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

type warehouseRepo struct{ t *txState }

func (r warehouseRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Warehouse, error) {
	w, ok := r.t.state.warehouses[id]
	if !ok || w.TenantID != tenantID {
		return nil, nil
	}
	return &w, nil
}

type productRepo struct{ t *txState }

func (r productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	p, ok := r.t.state.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

type patientRepo struct{ t *txState }

func (r patientRepo) GetPatient(_ context.Context, tenantID, id string) (*entity.Patient, error) {
	p, ok := r.t.state.patients[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r patientRepo) GetEpisode(_ context.Context, tenantID, id string) (*entity.Episode, error) {
	e, ok := r.t.state.episodes[id]
	if !ok || e.TenantID != tenantID {
		return nil, nil
	}
	return &e, nil
}

func (r patientRepo) GetEpisodeForUpdate(ctx context.Context, tenantID, id string) (*entity.Episode, error) {
	return r.GetEpisode(ctx, tenantID, id)
}

func (r patientRepo) UpdateEpisode(_ context.Context, e *entity.Episode) error {
	if _, ok := r.t.state.episodes[e.ID]; !ok {
		return errNotStored("episodio", e.ID)
	}
	r.t.state.episodes[e.ID] = *e
	return nil
}

func (r patientRepo) ListStages(_ context.Context, tenantID string) ([]entity.WorkflowStage, error) {
	var out []entity.WorkflowStage
	for _, s := range r.t.state.stages {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type payerRepo struct{ t *txState }

func (r payerRepo) GetPayer(_ context.Context, tenantID, id string) (*entity.Payer, error) {
	p, ok := r.t.state.payers[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r payerRepo) GetPlan(_ context.Context, tenantID, id string) (*entity.Plan, error) {
	p, ok := r.t.state.plans[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r payerRepo) ListRequirements(_ context.Context, tenantID, payerID string) ([]entity.PayerRequirement, error) {
	var out []entity.PayerRequirement
	for _, c := range r.t.state.catalog {
		if c.TenantID == tenantID && c.PayerID == payerID {
			out = append(out, c)
		}
	}
	return out, nil
}
