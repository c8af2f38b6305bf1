package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

// Estados de la autorización del financiador.
const (
	AuthorizationPending   = "PENDING"
	AuthorizationActive    = "ACTIVE"
	AuthorizationSuspended = "SUSPENDED"
	AuthorizationExpired   = "EXPIRED"
	AuthorizationCancelled = "CANCELLED"
)

// Estados de un requisito documental.
const (
	RequirementPending   = "PENDING"
	RequirementSubmitted = "SUBMITTED"
	RequirementApproved  = "APPROVED"
	RequirementRejected  = "REJECTED"
)

// Authorization es el permiso del financiador para facturar prestaciones de un paciente.
type Authorization struct {
	ID           string
	TenantID     string
	PayerID      string
	PlanID       string // opcional
	PatientID    string
	EpisodeID    string // opcional
	Number       string
	Status       string
	StartDate    time.Time
	EndDate      *time.Time
	LimitAmount  *decimal.Decimal
	LimitUnits   *decimal.Decimal
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Requirements []AuthorizationRequirement
}

// RequirementFile son los metadatos del documento subido para un requisito.
type RequirementFile struct {
	Key      string
	Name     string
	MimeType string
	Size     int64
}

// AuthorizationRequirement es la copia del catálogo del financiador tomada al crear la autorización.
type AuthorizationRequirement struct {
	ID              string
	AuthorizationID string
	Name            string
	IsRequired      bool
	Status          string
	File            *RequirementFile
	UpdatedAt       time.Time
}

// Cleared informa si el requisito ya no bloquea la autorización.
func (r AuthorizationRequirement) Cleared() bool {
	return r.Status == RequirementSubmitted || r.Status == RequirementApproved
}

// IsValidAuthorizationStatus informa si s es un estado conocido.
func IsValidAuthorizationStatus(s string) bool {
	switch s {
	case AuthorizationPending, AuthorizationActive, AuthorizationSuspended, AuthorizationExpired, AuthorizationCancelled:
		return true
	}
	return false
}

// IsValidRequirementStatus informa si s es un estado de requisito conocido.
func IsValidRequirementStatus(s string) bool {
	switch s {
	case RequirementPending, RequirementSubmitted, RequirementApproved, RequirementRejected:
		return true
	}
	return false
}

// DateOf trunca t al día calendario en UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RequirementsCleared informa si ningún requisito obligatorio está pendiente o rechazado.
func (a *Authorization) RequirementsCleared() bool {
	for _, r := range a.Requirements {
		if r.IsRequired && !r.Cleared() {
			return false
		}
	}
	return true
}

// EndedBefore informa si la vigencia terminó antes del día de t.
func (a *Authorization) EndedBefore(t time.Time) bool {
	return a.EndDate != nil && DateOf(*a.EndDate).Before(DateOf(t))
}

// Requirement busca un requisito por id.
func (a *Authorization) Requirement(id string) (*AuthorizationRequirement, bool) {
	for i := range a.Requirements {
		if a.Requirements[i].ID == id {
			return &a.Requirements[i], true
		}
	}
	return nil, false
}

// Recompute ajusta el estado según requisitos y vigencia. Solo toca PENDING y ACTIVE;
// los estados fijados a mano (SUSPENDED, CANCELLED, EXPIRED) se respetan.
// Devuelve true si el estado cambió.
func (a *Authorization) Recompute(now time.Time) bool {
	prev := a.Status
	switch a.Status {
	case AuthorizationPending:
		if a.RequirementsCleared() {
			a.Status = AuthorizationActive
			if a.EndedBefore(now) {
				a.Status = AuthorizationExpired
			}
		}
	case AuthorizationActive:
		if !a.RequirementsCleared() {
			a.Status = AuthorizationPending
		}
	}
	return prev != a.Status
}

// SetRequirementStatus actualiza un requisito y recalcula el estado de la autorización.
func (a *Authorization) SetRequirementStatus(reqID, status string, file *RequirementFile, now time.Time) (*AuthorizationRequirement, error) {
	if !IsValidRequirementStatus(status) {
		return nil, domain.ErrValidation.With("estado de requisito desconocido: " + status)
	}
	r, ok := a.Requirement(reqID)
	if !ok {
		return nil, domain.ErrRequirementNotFound
	}
	r.Status = status
	if file != nil {
		r.File = file
	}
	r.UpdatedAt = now
	a.Recompute(now)
	a.UpdatedAt = now
	return r, nil
}

// SetStatus es el override manual; acepta cualquier estado enumerado.
func (a *Authorization) SetStatus(status string, now time.Time) error {
	if !IsValidAuthorizationStatus(status) {
		return domain.ErrValidation.With("estado de autorización desconocido: " + status)
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}
