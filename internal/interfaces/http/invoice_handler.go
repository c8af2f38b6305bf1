package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	domainbilling "github.com/jhoicas/homecare-fulfillment/internal/domain/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// InvoiceHandler maneja reglas de facturación, facturas, débitos y cobros.
type InvoiceHandler struct {
	rules    *billing.RuleUseCase
	invoices *billing.InvoiceUseCase
	log      zerolog.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(rules *billing.RuleUseCase, invoices *billing.InvoiceUseCase, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{rules: rules, invoices: invoices, log: log}
}

// UpsertRule godoc
// @Summary      Crear o reemplazar regla de facturación
// @Description  Sin plan_id la regla aplica a todos los planes del financiador.
// @Tags         billing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertBillingRuleRequest  true  "payer_id, plan_id, product_id, precios"
// @Success      200  {object}  dto.BillingRuleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/billing-rules [put]
func (h *InvoiceHandler) UpsertRule(c *fiber.Ctx) error {
	var in dto.UpsertBillingRuleRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	r, err := h.rules.Upsert(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBillingRuleResponse(r))
}

// Generate godoc
// @Summary      Facturar una entrega
// @Description  Valida autorización vigente, límites y reglas. Una sola factura por entrega.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateInvoiceRequest  true  "delivery_id, authorization_id"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse  "DELIVERY_ALREADY_INVOICED o límites"
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	inv, st, err := h.invoices.Generate(c.Context(), GetActor(c), in)
	return h.respond(c, fiber.StatusCreated, inv, st, err)
}

// Get godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	inv, st, err := h.invoices.Get(c.Context(), GetTenantID(c), c.Params("id"))
	return h.respond(c, fiber.StatusOK, inv, st, err)
}

// Reconcile godoc
// @Summary      Recalcular estado de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/reconcile [post]
func (h *InvoiceHandler) Reconcile(c *fiber.Ctx) error {
	inv, st, err := h.invoices.Reconcile(c.Context(), GetTenantID(c), c.Params("id"))
	return h.respond(c, fiber.StatusOK, inv, st, err)
}

// AddDebitNote godoc
// @Summary      Registrar débito del financiador
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Factura"
// @Param        body  body  dto.DebitNoteRequest  true  "amount, reason"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/debit-notes [post]
func (h *InvoiceHandler) AddDebitNote(c *fiber.Ctx) error {
	var in dto.DebitNoteRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	inv, st, err := h.invoices.AddDebitNote(c.Context(), GetActor(c), c.Params("id"), in)
	return h.respond(c, fiber.StatusCreated, inv, st, err)
}

// AddPayment godoc
// @Summary      Registrar cobro
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "Factura"
// @Param        body  body  dto.PaymentRequest  true  "amount, method, reference"
// @Success      201  {object}  dto.InvoiceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	inv, st, err := h.invoices.AddPayment(c.Context(), GetActor(c), c.Params("id"), in)
	return h.respond(c, fiber.StatusCreated, inv, st, err)
}

// Cancel godoc
// @Summary      Anular factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	inv, err := h.invoices.Cancel(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewInvoiceResponse(inv, domainbilling.ReconcileInvoice(inv).NetDue))
}

func (h *InvoiceHandler) respond(c *fiber.Ctx, status int, inv *entity.Invoice, st domainbilling.Settlement, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(status).JSON(dto.NewInvoiceResponse(inv, st.NetDue))
}
