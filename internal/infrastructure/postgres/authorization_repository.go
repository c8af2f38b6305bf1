package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.AuthorizationRepository = (*AuthorizationRepo)(nil)

// AuthorizationRepo implementación de AuthorizationRepository (usable con pool o tx).
type AuthorizationRepo struct {
	q Querier
}

// NewAuthorizationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuthorizationRepository(q Querier) *AuthorizationRepo {
	return &AuthorizationRepo{q: q}
}

const authorizationColumns = `id, tenant_id, payer_id, plan_id, patient_id, episode_id, number, status,
	start_date, end_date, limit_amount, limit_units, notes, created_by, created_at, updated_at`

// Create inserta la autorización y la copia de requisitos.
func (r *AuthorizationRepo) Create(ctx context.Context, a *entity.Authorization) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO authorizations (` + authorizationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.TenantID, a.PayerID, nullIfEmpty(a.PlanID), a.PatientID, nullIfEmpty(a.EpisodeID), a.Number, a.Status,
		a.StartDate, a.EndDate, a.LimitAmount, a.LimitUnits, a.Notes, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert authorization: %w", err)
	}
	req := `
		INSERT INTO authorization_requirements (id, authorization_id, name, is_required, status, file_key, file_name, file_mime, file_size, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range a.Requirements {
		rq := &a.Requirements[i]
		if rq.ID == "" {
			rq.ID = uuid.New().String()
		}
		rq.AuthorizationID = a.ID
		args := append([]any{rq.ID, rq.AuthorizationID, rq.Name, rq.IsRequired, rq.Status}, fileArgs(rq.File)...)
		args = append(args, rq.UpdatedAt)
		if _, err := r.q.Exec(ctx, req, args...); err != nil {
			return fmt.Errorf("insert authorization requirement: %w", err)
		}
	}
	return nil
}

func fileArgs(f *entity.RequirementFile) []any {
	if f == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{f.Key, f.Name, f.MimeType, f.Size}
}

func scanAuthorization(row pgx.Row) (*entity.Authorization, error) {
	var a entity.Authorization
	var planID, episodeID *string
	err := row.Scan(
		&a.ID, &a.TenantID, &a.PayerID, &planID, &a.PatientID, &episodeID, &a.Number, &a.Status,
		&a.StartDate, &a.EndDate, &a.LimitAmount, &a.LimitUnits, &a.Notes, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.PlanID = deref(planID)
	a.EpisodeID = deref(episodeID)
	return &a, nil
}

func (r *AuthorizationRepo) loadRequirements(ctx context.Context, a *entity.Authorization) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, authorization_id, name, is_required, status, file_key, file_name, file_mime, file_size, updated_at
		FROM authorization_requirements WHERE authorization_id = $1 ORDER BY position`, a.ID)
	if err != nil {
		return fmt.Errorf("list authorization requirements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rq entity.AuthorizationRequirement
		var key, name, mime *string
		var size *int64
		if err := rows.Scan(&rq.ID, &rq.AuthorizationID, &rq.Name, &rq.IsRequired, &rq.Status,
			&key, &name, &mime, &size, &rq.UpdatedAt); err != nil {
			return fmt.Errorf("scan authorization requirement: %w", err)
		}
		if key != nil {
			rq.File = &entity.RequirementFile{Key: *key, Name: deref(name), MimeType: deref(mime)}
			if size != nil {
				rq.File.Size = *size
			}
		}
		a.Requirements = append(a.Requirements, rq)
	}
	return rows.Err()
}

func (r *AuthorizationRepo) get(ctx context.Context, tenantID, id string, lock bool) (*entity.Authorization, error) {
	query := `SELECT ` + authorizationColumns + ` FROM authorizations WHERE tenant_id = $1 AND id = $2`
	if lock {
		query += " FOR UPDATE"
	}
	a, err := scanAuthorization(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get authorization: %w", err)
	}
	if err := r.loadRequirements(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID devuelve la autorización con sus requisitos.
func (r *AuthorizationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Authorization, error) {
	return r.get(ctx, tenantID, id, false)
}

// GetForUpdate bloquea la cabecera y devuelve la autorización con requisitos.
func (r *AuthorizationRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Authorization, error) {
	return r.get(ctx, tenantID, id, true)
}

// Update persiste estado, notas y updated_at.
func (r *AuthorizationRepo) Update(ctx context.Context, a *entity.Authorization) error {
	query := `UPDATE authorizations SET status = $3, notes = $4, updated_at = $5 WHERE tenant_id = $1 AND id = $2`
	if _, err := r.q.Exec(ctx, query, a.TenantID, a.ID, a.Status, a.Notes, a.UpdatedAt); err != nil {
		return fmt.Errorf("update authorization: %w", err)
	}
	return nil
}

// UpdateRequirement persiste estado y archivo de un requisito de una autorización del tenant.
func (r *AuthorizationRepo) UpdateRequirement(ctx context.Context, tenantID string, rq *entity.AuthorizationRequirement) error {
	query := `
		UPDATE authorization_requirements ar
		SET status = $3, file_key = $4, file_name = $5, file_mime = $6, file_size = $7, updated_at = $8
		FROM authorizations a
		WHERE ar.authorization_id = a.id AND a.tenant_id = $1 AND ar.id = $2`
	args := append([]any{tenantID, rq.ID, rq.Status}, fileArgs(rq.File)...)
	args = append(args, rq.UpdatedAt)
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update authorization requirement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update authorization requirement: requisito %s no encontrado", rq.ID)
	}
	return nil
}

func (r *AuthorizationRepo) list(ctx context.Context, query string, args ...any) ([]entity.Authorization, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list authorizations: %w", err)
	}
	var list []entity.Authorization
	for rows.Next() {
		a, err := scanAuthorization(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan authorization: %w", err)
		}
		list = append(list, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Requisitos con el cursor ya cerrado: la conexión no admite dos consultas abiertas.
	for i := range list {
		if err := r.loadRequirements(ctx, &list[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListByPayer devuelve las autorizaciones del financiador por fecha de creación.
func (r *AuthorizationRepo) ListByPayer(ctx context.Context, tenantID, payerID string) ([]entity.Authorization, error) {
	return r.list(ctx, `SELECT `+authorizationColumns+`
		FROM authorizations WHERE tenant_id = $1 AND payer_id = $2 ORDER BY created_at`, tenantID, payerID)
}

// ListEndedBefore devuelve autorizaciones PENDING o ACTIVE con end_date anterior al día dado.
func (r *AuthorizationRepo) ListEndedBefore(ctx context.Context, tenantID string, day time.Time) ([]entity.Authorization, error) {
	return r.list(ctx, `SELECT `+authorizationColumns+`
		FROM authorizations
		WHERE tenant_id = $1 AND status IN ('PENDING', 'ACTIVE') AND end_date IS NOT NULL AND end_date < $2::date
		ORDER BY end_date`, tenantID, entity.DateOf(day))
}
