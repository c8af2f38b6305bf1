package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// CreateAuthorizationRequest body para POST /api/authorizations.
type CreateAuthorizationRequest struct {
	PayerID     string           `json:"payer_id" validate:"required"`
	PlanID      string           `json:"plan_id,omitempty"`
	PatientID   string           `json:"patient_id" validate:"required"`
	EpisodeID   string           `json:"episode_id,omitempty"`
	Number      string           `json:"number" validate:"required,max=60"`
	StartDate   string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string           `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LimitAmount *decimal.Decimal `json:"limit_amount,omitempty"`
	LimitUnits  *decimal.Decimal `json:"limit_units,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

// UpdateAuthorizationStatusRequest body para PATCH /api/authorizations/:id/status.
type UpdateAuthorizationStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ACTIVE SUSPENDED EXPIRED CANCELLED"`
}

// UpdateRequirementRequest body para PATCH /api/authorizations/:id/requirements/:reqId.
type UpdateRequirementRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING SUBMITTED APPROVED REJECTED"`
}

// RequirementResponse requisito documental.
type RequirementResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsRequired bool      `json:"is_required"`
	Status     string    `json:"status"`
	FileKey    string    `json:"file_key,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AuthorizationResponse autorización con requisitos.
type AuthorizationResponse struct {
	ID           string                `json:"id"`
	Number       string                `json:"number"`
	PayerID      string                `json:"payer_id"`
	PlanID       string                `json:"plan_id,omitempty"`
	PatientID    string                `json:"patient_id"`
	EpisodeID    string                `json:"episode_id,omitempty"`
	Status       string                `json:"status"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date,omitempty"`
	LimitAmount  *decimal.Decimal      `json:"limit_amount,omitempty"`
	LimitUnits   *decimal.Decimal      `json:"limit_units,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Requirements []RequirementResponse `json:"requirements"`
}

// NewAuthorizationResponse mapea una autorización.
func NewAuthorizationResponse(a *entity.Authorization) AuthorizationResponse {
	reqs := make([]RequirementResponse, 0, len(a.Requirements))
	for _, r := range a.Requirements {
		rr := RequirementResponse{ID: r.ID, Name: r.Name, IsRequired: r.IsRequired, Status: r.Status, UpdatedAt: r.UpdatedAt}
		if r.File != nil {
			rr.FileKey, rr.FileName = r.File.Key, r.File.Name
		}
		reqs = append(reqs, rr)
	}
	start := a.StartDate
	return AuthorizationResponse{
		ID:           a.ID,
		Number:       a.Number,
		PayerID:      a.PayerID,
		PlanID:       a.PlanID,
		PatientID:    a.PatientID,
		EpisodeID:    a.EpisodeID,
		Status:       a.Status,
		StartDate:    formatDate(&start),
		EndDate:      formatDate(a.EndDate),
		LimitAmount:  a.LimitAmount,
		LimitUnits:   a.LimitUnits,
		Notes:        a.Notes,
		Requirements: reqs,
	}
}
