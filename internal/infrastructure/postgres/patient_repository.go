package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.PatientRepository = (*PatientRepo)(nil)

// PatientRepo lee pacientes, episodios y etapas del flujo.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

// GetPatient obtiene un paciente del tenant.
func (r *PatientRepo) GetPatient(ctx context.Context, tenantID, id string) (*entity.Patient, error) {
	query := `SELECT id, tenant_id, full_name, document_id FROM patients WHERE tenant_id = $1 AND id = $2`
	var p entity.Patient
	if err := r.q.QueryRow(ctx, query, tenantID, id).Scan(&p.ID, &p.TenantID, &p.FullName, &p.DocumentID); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

const episodeColumns = `id, tenant_id, patient_id, stage_id, status, closed_at, updated_at`

func (r *PatientRepo) getEpisode(ctx context.Context, query, tenantID, id string) (*entity.Episode, error) {
	var e entity.Episode
	var stageID *string
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&e.ID, &e.TenantID, &e.PatientID, &stageID, &e.Status, &e.ClosedAt, &e.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get episode: %w", err)
	}
	e.StageID = deref(stageID)
	return &e, nil
}

// GetEpisode obtiene un episodio del tenant.
func (r *PatientRepo) GetEpisode(ctx context.Context, tenantID, id string) (*entity.Episode, error) {
	return r.getEpisode(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetEpisodeForUpdate obtiene el episodio y bloquea la fila.
func (r *PatientRepo) GetEpisodeForUpdate(ctx context.Context, tenantID, id string) (*entity.Episode, error) {
	return r.getEpisode(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// UpdateEpisode persiste etapa, estado y cierre.
func (r *PatientRepo) UpdateEpisode(ctx context.Context, e *entity.Episode) error {
	query := `
		UPDATE episodes SET stage_id = $3, status = $4, closed_at = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, e.TenantID, e.ID, nullIfEmpty(e.StageID), e.Status, e.ClosedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update episode: %w", err)
	}
	return nil
}

// ListStages devuelve las etapas del tenant ordenadas por posición.
func (r *PatientRepo) ListStages(ctx context.Context, tenantID string) ([]entity.WorkflowStage, error) {
	query := `
		SELECT id, tenant_id, name, position, is_terminal
		FROM workflow_stages WHERE tenant_id = $1 ORDER BY position, name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()
	var list []entity.WorkflowStage
	for rows.Next() {
		var s entity.WorkflowStage
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.Position, &s.IsTerminal); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
