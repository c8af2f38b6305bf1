package domain

// Kind agrupa los errores de dominio por categoría; la capa HTTP decide el status a partir de ella.
type Kind int

const (
	KindInternal     Kind = iota
	KindPrecondition      // estado actual no permite la operación
	KindValidation        // entrada mal formada
	KindNotFound          // referencia inexistente o de otro tenant
	KindMismatch          // referencias que no pertenecen entre sí
	KindCapacity          // stock o límites de autorización
	KindCompleteness      // faltan evidencias, firmas, reglas o requisitos
	KindConflict          // ya existe (entrega facturada, etc.)
	KindAccess            // rol o módulo
)

// Error es un error de dominio con código estable (ej. "INSUFFICIENT_STOCK").
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is compara por código, así errors.Is funciona también con copias creadas por With.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With devuelve una copia del error con detalle adicional en el mensaje.
func (e *Error) With(detail string) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: e.Message + ": " + detail}
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// Errores de precondición.
var (
	ErrInvalidStatus       = newError(KindPrecondition, "INVALID_STATUS", "el estado actual no permite la operación")
	ErrPickListNotFrozen   = newError(KindPrecondition, "PICKLIST_NOT_FROZEN", "la lista de picking no está congelada")
	ErrWorkflowNotTerminal = newError(KindPrecondition, "WORKFLOW_NOT_TERMINAL", "el episodio no está en una etapa terminal")
	ErrOrderLocked         = newError(KindPrecondition, "ORDER_LOCKED", "la orden ya tiene lista de picking")
)

// Errores de validación.
var (
	ErrValidation                       = newError(KindValidation, "VALIDATION_ERROR", "entrada inválida")
	ErrInvalidQuantity                  = newError(KindValidation, "INVALID_QUANTITY", "cantidad inválida")
	ErrInvalidUnitPrice                 = newError(KindValidation, "INVALID_UNIT_PRICE", "precio unitario inválido")
	ErrIncidentRequiredOnlyForReduction = newError(KindValidation, "INCIDENT_REQUIRED_ONLY_FOR_REDUCTION", "la incidencia solo aplica a reducciones de cantidad")
)

// Errores referenciales.
var (
	ErrOrderNotFound         = newError(KindNotFound, "ORDER_NOT_FOUND", "orden no encontrada")
	ErrPickListNotFound      = newError(KindNotFound, "PICKLIST_NOT_FOUND", "lista de picking no encontrada")
	ErrPickListItemNotFound  = newError(KindNotFound, "PICKLIST_ITEM_NOT_FOUND", "ítem de picking no encontrado")
	ErrDeliveryNotFound      = newError(KindNotFound, "DELIVERY_NOT_FOUND", "entrega no encontrada")
	ErrWarehouseNotFound     = newError(KindNotFound, "WAREHOUSE_NOT_FOUND", "bodega no encontrada")
	ErrProductNotFound       = newError(KindNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado")
	ErrPatientNotFound       = newError(KindNotFound, "PATIENT_NOT_FOUND", "paciente no encontrado")
	ErrEpisodeNotFound       = newError(KindNotFound, "EPISODE_NOT_FOUND", "episodio no encontrado")
	ErrPayerNotFound         = newError(KindNotFound, "PAYER_NOT_FOUND", "financiador no encontrado")
	ErrPlanNotFound          = newError(KindNotFound, "PLAN_NOT_FOUND", "plan no encontrado")
	ErrAuthorizationNotFound = newError(KindNotFound, "AUTHORIZATION_NOT_FOUND", "autorización no encontrada")
	ErrRequirementNotFound   = newError(KindNotFound, "REQUIREMENT_NOT_FOUND", "requisito no encontrado")
	ErrInvoiceNotFound       = newError(KindNotFound, "INVOICE_NOT_FOUND", "factura no encontrada")
	ErrKitNotFound           = newError(KindNotFound, "KIT_NOT_FOUND", "kit no encontrado")
	ErrStageNotFound         = newError(KindNotFound, "STAGE_NOT_FOUND", "etapa de flujo no encontrada")
)

// Errores de pertenencia entre referencias.
var (
	ErrEpisodePatientMismatch = newError(KindMismatch, "EPISODE_PATIENT_MISMATCH", "el episodio no pertenece al paciente")
	ErrAuthorizationMismatch  = newError(KindMismatch, "AUTHORIZATION_MISMATCH", "la autorización no corresponde al paciente de la entrega")
	ErrPlanPayerMismatch      = newError(KindMismatch, "PLAN_PAYER_MISMATCH", "el plan no pertenece al financiador")
)

// Errores de capacidad.
var (
	ErrInsufficientStock        = newError(KindCapacity, "INSUFFICIENT_STOCK", "stock insuficiente")
	ErrAuthorizationLimitUnits  = newError(KindCapacity, "AUTHORIZATION_LIMIT_UNITS", "se supera el límite de unidades de la autorización")
	ErrAuthorizationLimitAmount = newError(KindCapacity, "AUTHORIZATION_LIMIT_AMOUNT", "se supera el límite de monto de la autorización")
)

// Errores de completitud.
var (
	ErrEvidenceRequired                 = newError(KindCompleteness, "EVIDENCE_REQUIRED", "la entrega no tiene evidencias suficientes")
	ErrAuthorizationRequirementsPending = newError(KindCompleteness, "AUTHORIZATION_REQUIREMENTS_PENDING", "la autorización tiene requisitos pendientes")
	ErrAuthorizationNotActive           = newError(KindCompleteness, "AUTHORIZATION_NOT_ACTIVE", "la autorización no está activa")
	ErrAuthorizationNotStarted          = newError(KindCompleteness, "AUTHORIZATION_NOT_STARTED", "la autorización aún no está vigente")
	ErrAuthorizationExpired             = newError(KindCompleteness, "AUTHORIZATION_EXPIRED", "la autorización está vencida")
	ErrCarrierSignatureRequired         = newError(KindCompleteness, "CARRIER_SIGNATURE_REQUIRED", "falta la firma del transportista")
	ErrWarehouseRequired                = newError(KindCompleteness, "WAREHOUSE_REQUIRED", "hay ítems sin bodega asignada")
	ErrBillingRuleMissing               = newError(KindCompleteness, "BILLING_RULE_MISSING", "no hay regla de facturación para el producto")
	ErrNoBillableItems                  = newError(KindCompleteness, "NO_BILLABLE_ITEMS", "la entrega no tiene ítems facturables")
	ErrDeliveryNotReady                 = newError(KindCompleteness, "DELIVERY_NOT_READY", "la entrega no está entregada ni cerrada")
)

// Errores de conflicto.
var (
	ErrDeliveryAlreadyInvoiced = newError(KindConflict, "DELIVERY_ALREADY_INVOICED", "la entrega ya fue facturada")
)

// Errores de acceso (fuera del flujo de dominio, usados por middlewares).
var (
	ErrUnauthorized = newError(KindAccess, "UNAUTHORIZED", "no autorizado")
	ErrForbidden    = newError(KindAccess, "FORBIDDEN", "acceso denegado")
)
