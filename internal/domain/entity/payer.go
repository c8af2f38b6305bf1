package entity

// Payer es el financiador (obra social, prepaga, aseguradora) al que se factura.
type Payer struct {
	ID       string
	TenantID string
	Name     string
	TaxID    string
}

// Plan es un plan comercial de un financiador.
type Plan struct {
	ID       string
	TenantID string
	PayerID  string
	Name     string
}

// PayerRequirement es una entrada del catálogo de requisitos documentales de un financiador.
type PayerRequirement struct {
	ID         string
	TenantID   string
	PayerID    string
	Name       string
	IsRequired bool
}
