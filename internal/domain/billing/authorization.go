package billing

import (
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// CheckAuthorization valida que la autorización cubra la fecha efectiva at.
// Orden: vencida por estado, requisitos pendientes, no activa, fuera de vigencia.
func CheckAuthorization(a *entity.Authorization, at time.Time) error {
	if a.Status == entity.AuthorizationExpired {
		return domain.ErrAuthorizationExpired
	}
	if !a.RequirementsCleared() {
		return domain.ErrAuthorizationRequirementsPending
	}
	if a.Status != entity.AuthorizationActive {
		return domain.ErrAuthorizationNotActive
	}
	day := entity.DateOf(at)
	if entity.DateOf(a.StartDate).After(day) {
		return domain.ErrAuthorizationNotStarted
	}
	if a.EndedBefore(at) {
		return domain.ErrAuthorizationExpired
	}
	return nil
}
