// Package episode mueve episodios entre etapas del flujo y los cierra.
package episode

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/workflow"
)

// UseCase aplica la máquina de etapas del tenant a sus episodios.
type UseCase struct {
	tx    ports.TxRunner
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, audit ports.AuditSink, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, audit: audit, log: log}
}

// MoveStage avanza el episodio a stageID.
func (uc *UseCase) MoveStage(ctx context.Context, actor entity.Actor, episodeID, stageID string) (*entity.Episode, error) {
	var from string
	ep, err := uc.withEpisode(ctx, actor.TenantID, episodeID, func(m *workflow.Machine, ep *entity.Episode) error {
		from = ep.StageID
		if err := m.CanMove(ep.StageID, stageID); err != nil {
			return err
		}
		ep.StageID = stageID
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "episode.stage_moved", "episode", ep.ID,
		map[string]string{"from": from, "to": stageID}))
	return ep, nil
}

// Close cierra el episodio; solo desde una etapa terminal.
func (uc *UseCase) Close(ctx context.Context, actor entity.Actor, episodeID string) (*entity.Episode, error) {
	ep, err := uc.withEpisode(ctx, actor.TenantID, episodeID, func(m *workflow.Machine, ep *entity.Episode) error {
		if err := m.RequireTerminal(ep.StageID); err != nil {
			return err
		}
		now := time.Now()
		ep.Status = entity.EpisodeStatusClosed
		ep.ClosedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("episode_id", ep.ID).Msg("episodio cerrado")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "episode.closed", "episode", ep.ID, map[string]string{"stage_id": ep.StageID}))
	return ep, nil
}

func (uc *UseCase) withEpisode(ctx context.Context, tenantID, id string, fn func(m *workflow.Machine, ep *entity.Episode) error) (*entity.Episode, error) {
	var ep *entity.Episode
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		ep, err = s.Patients.GetEpisodeForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if ep == nil {
			return domain.ErrEpisodeNotFound
		}
		if ep.Status == entity.EpisodeStatusClosed {
			return domain.ErrInvalidStatus
		}
		stages, err := s.Patients.ListStages(ctx, tenantID)
		if err != nil {
			return err
		}
		if err := fn(workflow.New(stages), ep); err != nil {
			return err
		}
		ep.UpdatedAt = time.Now()
		return s.Patients.UpdateEpisode(ctx, ep)
	})
	if err != nil {
		return nil, err
	}
	return ep, nil
}
