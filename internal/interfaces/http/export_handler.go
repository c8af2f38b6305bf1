package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
)

// ExportHandler descarga listados de facturas y pre-liquidaciones por financiador.
type ExportHandler struct {
	uc  *billing.ExportUseCase
	log zerolog.Logger
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *billing.ExportUseCase, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{uc: uc, log: log}
}

// Invoices godoc
// @Summary      Listado de facturas del financiador
// @Tags         exports
// @Security     Bearer
// @Produce      text/csv
// @Produce      application/pdf
// @Param        payer_id  query  string  true   "Financiador"
// @Param        from      query  string  false  "Desde (AAAA-MM-DD), por defecto inicio de mes"
// @Param        to        query  string  false  "Hasta inclusive (AAAA-MM-DD), por defecto hoy"
// @Param        format    query  string  false  "csv | pdf"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exports/invoices [get]
func (h *ExportHandler) Invoices(c *fiber.Ctx) error {
	var q dto.PeriodQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, h.log, err)
	}
	f, err := h.uc.ExportInvoices(c.Context(), GetTenantID(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, f)
}

// PreLiquidation godoc
// @Summary      Pre-liquidación de entregas del financiador
// @Tags         exports
// @Security     Bearer
// @Produce      text/csv
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        payer_id  query  string  true   "Financiador"
// @Param        from      query  string  false  "Desde (AAAA-MM-DD)"
// @Param        to        query  string  false  "Hasta inclusive (AAAA-MM-DD)"
// @Param        format    query  string  false  "csv | xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/exports/pre-liquidation [get]
func (h *ExportHandler) PreLiquidation(c *fiber.Ctx) error {
	var q dto.PeriodQuery
	if err := bindQuery(c, &q); err != nil {
		return writeError(c, h.log, err)
	}
	f, err := h.uc.ExportPreLiquidation(c.Context(), GetTenantID(c), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return sendFile(c, f)
}

func sendFile(c *fiber.Ctx, f *billing.ExportFile) error {
	c.Attachment(f.Name)
	c.Set(fiber.HeaderContentType, f.ContentType)
	return c.Send(f.Data)
}
