package http

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

// DeliveryHandler maneja entregas y sus evidencias.
type DeliveryHandler struct {
	uc  *fulfillment.DeliveryUseCase
	log zerolog.Logger
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *fulfillment.DeliveryUseCase, log zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear entrega de una lista empacada
// @Description  Una entrega por lista de picking; si ya existe se devuelve con 200.
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Lista de picking"
// @Success      201  {object}  dto.DeliveryResponse
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/pick-lists/{id}/delivery [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	d, created, err := h.uc.Create(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !created {
		_, count, err := h.uc.Get(c.Context(), GetTenantID(c), d.ID)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(dto.NewDeliveryResponse(d, count))
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDeliveryResponse(d, 0))
}

// Get godoc
// @Summary      Obtener entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [get]
func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	d, count, err := h.uc.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewDeliveryResponse(d, count))
}

// ListEvidence godoc
// @Summary      Evidencias de la entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Entrega"
// @Success      200  {array}   dto.EvidenceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/evidence [get]
func (h *DeliveryHandler) ListEvidence(c *fiber.Ctx) error {
	list, err := h.uc.ListEvidence(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.EvidenceResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.NewEvidenceResponse(&list[i], ""))
	}
	return c.JSON(out)
}

// UploadEvidence godoc
// @Summary      Adjuntar evidencia (foto, remito firmado)
// @Tags         deliveries
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Entrega"
// @Param        file  formData  file    true  "Archivo"
// @Success      201  {object}  dto.EvidenceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/evidence [post]
func (h *DeliveryHandler) UploadEvidence(c *fiber.Ctx) error {
	f, err := readUpload(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	ev, url, err := h.uc.UploadEvidence(c.Context(), GetActor(c), c.Params("id"), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewEvidenceResponse(ev, url))
}

// MarkInTransit godoc
// @Summary      Despachar con firma del transportista
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "Entrega"
// @Param        body  body  dto.CarrierSignatureRequest  true  "name, dni"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/in-transit [post]
func (h *DeliveryHandler) MarkInTransit(c *fiber.Ctx) error {
	var in dto.CarrierSignatureRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	d, err := h.uc.MarkInTransit(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, d.ID)
}

// MarkDelivered godoc
// @Summary      Confirmar entrega en domicilio
// @Description  Descuenta el stock de la lista una sola vez. Requiere evidencias y firma del transportista.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "Entrega"
// @Param        body  body  dto.MarkDeliveredRequest  true  "datos del receptor"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "EVIDENCE_REQUIRED o CARRIER_SIGNATURE_REQUIRED"
// @Router       /api/deliveries/{id}/delivered [post]
func (h *DeliveryHandler) MarkDelivered(c *fiber.Ctx) error {
	var in dto.MarkDeliveredRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	d, err := h.uc.MarkDelivered(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, d.ID)
}

// Close godoc
// @Summary      Cerrar entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/close [post]
func (h *DeliveryHandler) Close(c *fiber.Ctx) error {
	d, err := h.uc.Close(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, d.ID)
}

// ReportIncident godoc
// @Summary      Registrar incidencia de entrega
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "Entrega"
// @Param        body  body  dto.DeliveryIncidentRequest  true  "cause"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/incident [post]
func (h *DeliveryHandler) ReportIncident(c *fiber.Ctx) error {
	var in dto.DeliveryIncidentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	d, err := h.uc.ReportIncident(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return h.respond(c, d.ID)
}

// respond relee la entrega para devolverla con su conteo de evidencias.
func (h *DeliveryHandler) respond(c *fiber.Ctx, id string) error {
	d, count, err := h.uc.Get(c.Context(), GetTenantID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewDeliveryResponse(d, count))
}

// readUpload lee el campo multipart "file" completo en memoria.
func readUpload(c *fiber.Ctx) (dto.UploadedFile, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return dto.UploadedFile{}, domain.ErrValidation.With("falta el archivo 'file'")
	}
	src, err := fh.Open()
	if err != nil {
		return dto.UploadedFile{}, domain.ErrValidation.With("archivo ilegible")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return dto.UploadedFile{}, domain.ErrValidation.With("archivo ilegible")
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return dto.UploadedFile{Name: fh.Filename, ContentType: ct, Data: data}, nil
}
