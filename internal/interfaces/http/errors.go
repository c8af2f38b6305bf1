package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

// statusFor traduce la categoría del error de dominio a status HTTP.
func statusFor(e *domain.Error) int {
	switch e.Kind {
	case domain.KindPrecondition, domain.KindCapacity, domain.KindConflict:
		return fiber.StatusConflict
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindMismatch, domain.KindCompleteness:
		return fiber.StatusUnprocessableEntity
	case domain.KindAccess:
		if e.Code == domain.ErrUnauthorized.Code {
			return fiber.StatusUnauthorized
		}
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

// writeError responde con el código estable del dominio. Cualquier otro error es 500 y se loguea.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != domain.KindInternal {
		return c.Status(statusFor(de)).JSON(dto.ErrorResponse{Code: de.Code, Message: de.Message})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
