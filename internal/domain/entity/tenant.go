package entity

import "time"

// Estados de la cuenta del tenant.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusPastDue   = "past_due"
)

// Módulos contratables (deben coincidir con el CHECK de tenant_modules).
const (
	ModuleLogistics      = "logistics"
	ModuleAuthorizations = "authorizations"
	ModuleBilling        = "billing"
)

// Tenant es la organización prestadora (multi-tenant).
type Tenant struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
}

// TenantModule representa la activación de un módulo en un tenant.
type TenantModule struct {
	TenantID    string
	ModuleName  string
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
}

// Entitlement es la decisión ya resuelta de acceso a un módulo.
type Entitlement struct {
	Allowed bool
	Reason  string
}
