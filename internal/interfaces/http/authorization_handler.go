package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/authorization"
	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
)

// AuthorizationHandler maneja autorizaciones de financiadores y sus requisitos.
type AuthorizationHandler struct {
	uc  *authorization.UseCase
	log zerolog.Logger
}

// NewAuthorizationHandler construye el handler.
func NewAuthorizationHandler(uc *authorization.UseCase, log zerolog.Logger) *AuthorizationHandler {
	return &AuthorizationHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar autorización
// @Description  Copia los requisitos del financiador; queda ACTIVE si no hay obligatorios pendientes.
// @Tags         authorizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAuthorizationRequest  true  "payer_id, patient_id, number, vigencia y límites"
// @Success      201  {object}  dto.AuthorizationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/authorizations [post]
func (h *AuthorizationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAuthorizationRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewAuthorizationResponse(a))
}

// Get godoc
// @Summary      Obtener autorización
// @Tags         authorizations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Autorización"
// @Success      200  {object}  dto.AuthorizationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/authorizations/{id} [get]
func (h *AuthorizationHandler) Get(c *fiber.Ctx) error {
	a, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAuthorizationResponse(a))
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la autorización
// @Tags         authorizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                                true  "Autorización"
// @Param        body  body  dto.UpdateAuthorizationStatusRequest  true  "status"
// @Success      200  {object}  dto.AuthorizationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/authorizations/{id}/status [patch]
func (h *AuthorizationHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateAuthorizationStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.uc.UpdateStatus(c.Context(), GetActor(c), c.Params("id"), in.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAuthorizationResponse(a))
}

// UpdateRequirement godoc
// @Summary      Actualizar estado de un requisito
// @Description  Al aprobarse el último obligatorio la autorización pasa a ACTIVE.
// @Tags         authorizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                        true  "Autorización"
// @Param        reqId  path  string                        true  "Requisito"
// @Param        body   body  dto.UpdateRequirementRequest  true  "status"
// @Success      200  {object}  dto.AuthorizationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/authorizations/{id}/requirements/{reqId} [patch]
func (h *AuthorizationHandler) UpdateRequirement(c *fiber.Ctx) error {
	var in dto.UpdateRequirementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.uc.UpdateRequirement(c.Context(), GetActor(c), c.Params("id"), c.Params("reqId"), in.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAuthorizationResponse(a))
}

// UploadRequirementFile godoc
// @Summary      Adjuntar documento a un requisito
// @Tags         authorizations
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Autorización"
// @Param        reqId  path      string  true  "Requisito"
// @Param        file   formData  file    true  "Documento"
// @Success      200  {object}  dto.AuthorizationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/authorizations/{id}/requirements/{reqId}/file [post]
func (h *AuthorizationHandler) UploadRequirementFile(c *fiber.Ctx) error {
	f, err := readUpload(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	a, err := h.uc.UploadRequirementFile(c.Context(), GetActor(c), c.Params("id"), c.Params("reqId"), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewAuthorizationResponse(a))
}
