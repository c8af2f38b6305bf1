package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
)

// RequireModule devuelve un middleware Fiber que verifica si el tenant del token
// tiene el módulo habilitado. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalTenantID).
//
// Comportamiento:
//   - 403 Forbidden  → módulo no contratado, vencido o cuenta bloqueada (el motivo va en el mensaje).
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
//   - Si no hay tenant_id en el contexto, responde 401.
func RequireModule(moduleName string, checker ports.EntitlementChecker, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := GetTenantID(c)
		if tenantID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "tenant_id no encontrado en el token",
			})
		}

		ent, err := checker.Check(c.Context(), tenantID, moduleName)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID).Str("module", moduleName).Msg("verificación de módulo fallida")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MODULE_CHECK_FAILED",
				Message: "no se pudo verificar el módulo, intente más tarde",
			})
		}

		if !ent.Allowed {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "MODULE_DISABLED",
				Message: "el módulo '" + moduleName + "' no está disponible: " + ent.Reason,
			})
		}

		return c.Next()
	}
}
