package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// PatientRepository agrupa pacientes, episodios y las etapas de flujo del tenant.
type PatientRepository interface {
	GetPatient(ctx context.Context, tenantID, id string) (*entity.Patient, error)
	GetEpisode(ctx context.Context, tenantID, id string) (*entity.Episode, error)
	// GetEpisodeForUpdate bloquea la fila del episodio (SELECT FOR UPDATE).
	GetEpisodeForUpdate(ctx context.Context, tenantID, id string) (*entity.Episode, error)
	UpdateEpisode(ctx context.Context, e *entity.Episode) error
	ListStages(ctx context.Context, tenantID string) ([]entity.WorkflowStage, error)
}
