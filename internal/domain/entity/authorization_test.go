package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

func pendingAuth(end *time.Time) *entity.Authorization {
	return &entity.Authorization{
		Status:    entity.AuthorizationPending,
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   end,
		Requirements: []entity.AuthorizationRequirement{
			{ID: "r1", IsRequired: true, Status: entity.RequirementPending},
			{ID: "r2", IsRequired: true, Status: entity.RequirementPending},
			{ID: "r3", IsRequired: false, Status: entity.RequirementPending},
		},
	}
}

func TestAuthorization_AutoActivacion(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a := pendingAuth(nil)

	_, err := a.SetRequirementStatus("r1", entity.RequirementSubmitted, nil, now)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationPending, a.Status)

	_, err = a.SetRequirementStatus("r2", entity.RequirementApproved, &entity.RequirementFile{Key: "k"}, now)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationActive, a.Status, "el opcional pendiente no bloquea")

	_, err = a.SetRequirementStatus("r2", entity.RequirementRejected, nil, now)
	require.NoError(t, err)
	assert.Equal(t, entity.AuthorizationPending, a.Status)
}

func TestAuthorization_AutoActivacionVencida(t *testing.T) {
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a := pendingAuth(&end)

	_, _ = a.SetRequirementStatus("r1", entity.RequirementSubmitted, nil, now)
	_, _ = a.SetRequirementStatus("r2", entity.RequirementSubmitted, nil, now)
	assert.Equal(t, entity.AuthorizationExpired, a.Status)
}

func TestAuthorization_OverrideManualSeRespeta(t *testing.T) {
	now := time.Now()
	a := pendingAuth(nil)
	require.NoError(t, a.SetStatus(entity.AuthorizationSuspended, now))
	assert.ErrorIs(t, a.SetStatus("WHATEVER", now), domain.ErrValidation)

	_, _ = a.SetRequirementStatus("r1", entity.RequirementSubmitted, nil, now)
	_, _ = a.SetRequirementStatus("r2", entity.RequirementSubmitted, nil, now)
	assert.Equal(t, entity.AuthorizationSuspended, a.Status)
}

func TestAuthorization_RequisitoInexistente(t *testing.T) {
	a := pendingAuth(nil)
	_, err := a.SetRequirementStatus("zz", entity.RequirementSubmitted, nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrRequirementNotFound)
	_, err = a.SetRequirementStatus("r1", "LOST", nil, time.Now())
	assert.ErrorIs(t, err, domain.ErrValidation)
}
