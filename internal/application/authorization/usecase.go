// Package authorization gestiona autorizaciones de financiadores y sus requisitos documentales.
package authorization

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// UseCase orquesta alta, requisitos, cambios de estado y vencimientos.
type UseCase struct {
	tx      ports.TxRunner
	storage ports.ObjectStorage
	audit   ports.AuditSink
	log     zerolog.Logger
	now     func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx ports.TxRunner, storage ports.ObjectStorage, audit ports.AuditSink, log zerolog.Logger) *UseCase {
	return &UseCase{tx: tx, storage: storage, audit: audit, log: log, now: time.Now}
}

// Create registra la autorización copiando el catálogo de requisitos del financiador.
// Queda ACTIVE si no hay requisitos obligatorios (EXPIRED si la vigencia ya terminó), si no PENDING.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateAuthorizationRequest) (*entity.Authorization, error) {
	start, err := time.Parse(dto.DateLayout, in.StartDate)
	if err != nil {
		return nil, domain.ErrValidation.With("start_date inválida")
	}
	var end *time.Time
	if in.EndDate != "" {
		e, err := time.Parse(dto.DateLayout, in.EndDate)
		if err != nil {
			return nil, domain.ErrValidation.With("end_date inválida")
		}
		if e.Before(start) {
			return nil, domain.ErrValidation.With("end_date anterior a start_date")
		}
		end = &e
	}
	if in.LimitAmount != nil && in.LimitAmount.IsNegative() {
		return nil, domain.ErrValidation.With("limit_amount no puede ser negativo")
	}
	if in.LimitUnits != nil && in.LimitUnits.IsNegative() {
		return nil, domain.ErrValidation.With("limit_units no puede ser negativo")
	}

	now := uc.now()
	a := &entity.Authorization{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		PayerID:     in.PayerID,
		PlanID:      in.PlanID,
		PatientID:   in.PatientID,
		EpisodeID:   in.EpisodeID,
		Number:      strings.TrimSpace(in.Number),
		Status:      entity.AuthorizationPending,
		StartDate:   start,
		EndDate:     end,
		LimitAmount: in.LimitAmount,
		LimitUnits:  in.LimitUnits,
		Notes:       in.Notes,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.tx.Run(ctx, func(s repository.Stores) error {
		if err := checkReferences(ctx, s, a); err != nil {
			return err
		}
		catalog, err := s.Payers.ListRequirements(ctx, actor.TenantID, a.PayerID)
		if err != nil {
			return err
		}
		for _, c := range catalog {
			a.Requirements = append(a.Requirements, entity.AuthorizationRequirement{
				ID:              uuid.New().String(),
				AuthorizationID: a.ID,
				Name:            c.Name,
				IsRequired:      c.IsRequired,
				Status:          entity.RequirementPending,
				UpdatedAt:       now,
			})
		}
		a.Recompute(now)
		return s.Authorizations.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("authorization_id", a.ID).Str("status", a.Status).Msg("autorización creada")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "authorization.created", "authorization", a.ID,
		map[string]string{"number": a.Number, "status": a.Status}))
	return a, nil
}

// Get devuelve la autorización con sus requisitos.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*entity.Authorization, error) {
	var a *entity.Authorization
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		a, err = s.Authorizations.GetByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrAuthorizationNotFound
	}
	return a, nil
}

// UpdateStatus fija el estado a mano (suspensión, anulación, reactivación).
func (uc *UseCase) UpdateStatus(ctx context.Context, actor entity.Actor, id, status string) (*entity.Authorization, error) {
	var prev string
	a, err := uc.mutate(ctx, actor.TenantID, id, func(s repository.Stores, a *entity.Authorization, now time.Time) error {
		prev = a.Status
		return a.SetStatus(status, now)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "authorization.status_changed", "authorization", a.ID,
		map[string]string{"from": prev, "to": a.Status}))
	return a, nil
}

// UpdateRequirement cambia el estado de un requisito y recalcula la autorización.
func (uc *UseCase) UpdateRequirement(ctx context.Context, actor entity.Actor, id, reqID, status string) (*entity.Authorization, error) {
	return uc.setRequirement(ctx, actor, id, reqID, status, nil)
}

// UploadRequirementFile guarda el documento y marca el requisito como SUBMITTED.
// El objeto se sube antes de la transacción.
func (uc *UseCase) UploadRequirementFile(ctx context.Context, actor entity.Actor, id, reqID string, f dto.UploadedFile) (*entity.Authorization, error) {
	if len(f.Data) == 0 {
		return nil, domain.ErrValidation.With("archivo vacío")
	}
	a, err := uc.Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if _, ok := a.Requirement(reqID); !ok {
		return nil, domain.ErrRequirementNotFound
	}
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(f.Name), "\\", "/"))
	key := fmt.Sprintf("tenants/%s/authorizations/%s/requirements/%s/%s-%s", actor.TenantID, id, reqID, uuid.New().String(), name)
	obj, err := uc.storage.Upload(ctx, key, f.Data, f.ContentType)
	if err != nil {
		uc.log.Error().Err(err).Str("authorization_id", id).Msg("error subiendo documento de requisito")
		return nil, fmt.Errorf("subir documento: %w", err)
	}
	file := &entity.RequirementFile{Key: obj.Key, Name: name, MimeType: f.ContentType, Size: int64(len(f.Data))}
	return uc.setRequirement(ctx, actor, id, reqID, entity.RequirementSubmitted, file)
}

func (uc *UseCase) setRequirement(ctx context.Context, actor entity.Actor, id, reqID, status string, file *entity.RequirementFile) (*entity.Authorization, error) {
	var prev string
	a, err := uc.mutate(ctx, actor.TenantID, id, func(s repository.Stores, a *entity.Authorization, now time.Time) error {
		prev = a.Status
		r, err := a.SetRequirementStatus(reqID, status, file, now)
		if err != nil {
			return err
		}
		return s.Authorizations.UpdateRequirement(ctx, actor.TenantID, r)
	})
	if err != nil {
		return nil, err
	}
	meta := map[string]string{"requirement_id": reqID, "status": status}
	if prev != a.Status {
		meta["authorization_status"] = a.Status
		uc.log.Info().Str("authorization_id", a.ID).Str("from", prev).Str("to", a.Status).Msg("estado de autorización recalculado")
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "authorization.requirement_updated", "authorization", a.ID, meta))
	return a, nil
}

// ExpireOverdue pasa a EXPIRED las autorizaciones PENDING o ACTIVE cuya vigencia terminó antes de now.
// Devuelve cuántas cambió.
func (uc *UseCase) ExpireOverdue(ctx context.Context, tenantID string, now time.Time) (int, error) {
	n := 0
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		list, err := s.Authorizations.ListEndedBefore(ctx, tenantID, entity.DateOf(now))
		if err != nil {
			return err
		}
		for _, cand := range list {
			a, err := s.Authorizations.GetForUpdate(ctx, tenantID, cand.ID)
			if err != nil {
				return err
			}
			if a == nil || !a.EndedBefore(now) {
				continue
			}
			if a.Status != entity.AuthorizationPending && a.Status != entity.AuthorizationActive {
				continue
			}
			a.Status = entity.AuthorizationExpired
			a.UpdatedAt = now
			if err := s.Authorizations.Update(ctx, a); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Str("tenant_id", tenantID).Int("expired", n).Msg("autorizaciones vencidas")
	}
	return n, nil
}

func (uc *UseCase) mutate(ctx context.Context, tenantID, id string, fn func(s repository.Stores, a *entity.Authorization, now time.Time) error) (*entity.Authorization, error) {
	var a *entity.Authorization
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		a, err = s.Authorizations.GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrAuthorizationNotFound
		}
		if err := fn(s, a, uc.now()); err != nil {
			return err
		}
		return s.Authorizations.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func checkReferences(ctx context.Context, s repository.Stores, a *entity.Authorization) error {
	payer, err := s.Payers.GetPayer(ctx, a.TenantID, a.PayerID)
	if err != nil {
		return err
	}
	if payer == nil {
		return domain.ErrPayerNotFound
	}
	if a.PlanID != "" {
		plan, err := s.Payers.GetPlan(ctx, a.TenantID, a.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return domain.ErrPlanNotFound
		}
		if plan.PayerID != a.PayerID {
			return domain.ErrPlanPayerMismatch
		}
	}
	patient, err := s.Patients.GetPatient(ctx, a.TenantID, a.PatientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return domain.ErrPatientNotFound
	}
	if a.EpisodeID != "" {
		ep, err := s.Patients.GetEpisode(ctx, a.TenantID, a.EpisodeID)
		if err != nil {
			return err
		}
		if ep == nil {
			return domain.ErrEpisodeNotFound
		}
		if ep.PatientID != a.PatientID {
			return domain.ErrEpisodePatientMismatch
		}
	}
	return nil
}
