package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// Formatos de exportación.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// InvoiceListing es el listado de facturas de un financiador en un período.
type InvoiceListing struct {
	Payer       entity.Payer
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Rows        []InvoiceListingRow
	Totals      InvoiceListingTotals
}

// InvoiceListingRow es una factura del listado: sus líneas y la conciliación como subtotal.
type InvoiceListingRow struct {
	Number              string
	IssuedAt            time.Time
	Status              string
	PatientName         string
	PatientDocument     string
	AuthorizationNumber string
	Lines               []InvoiceListingLine
	Gross               decimal.Decimal
	Debits              decimal.Decimal
	Payments            decimal.Decimal
	NetDue              decimal.Decimal
}

// InvoiceListingLine es un ítem facturado tal como quedó en la factura.
type InvoiceListingLine struct {
	DeliveryNumber string
	ProductSKU     string
	ProductName    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Honorarium     decimal.Decimal
	Total          decimal.Decimal
}

// InvoiceListingTotals acumula las columnas de importes (facturas anuladas excluidas).
type InvoiceListingTotals struct {
	Gross    decimal.Decimal
	Debits   decimal.Decimal
	Payments decimal.Decimal
	NetDue   decimal.Decimal
}

// PreLiquidation es la planilla previa a facturar: lo entregado contra lo autorizado.
type PreLiquidation struct {
	Payer       entity.Payer
	From        time.Time
	To          time.Time
	GeneratedAt time.Time
	Rows        []PreLiquidationRow
}

// PreLiquidationRow es un ítem entregado. RuleFound=false deja el importe esperado en cero.
type PreLiquidationRow struct {
	DeliveryNumber      string
	DeliveredAt         time.Time
	PatientName         string
	PatientDocument     string
	AuthorizationNumber string
	ProductSKU          string
	ProductName         string
	RequestedQty        decimal.Decimal
	PickedQty           decimal.Decimal
	EvidenceCount       int
	Evidenced           bool
	Invoiced            bool
	RuleFound           bool
	UnitPrice           decimal.Decimal
	Honorarium          decimal.Decimal
	ExpectedAmount      decimal.Decimal
}

// InvoiceListingRenderer arma el documento del listado (PDF).
type InvoiceListingRenderer interface {
	RenderInvoiceListing(ctx context.Context, l InvoiceListing) ([]byte, error)
}

// PreLiquidationRenderer arma la planilla de pre-liquidación (XLSX).
type PreLiquidationRenderer interface {
	RenderPreLiquidation(ctx context.Context, p PreLiquidation) ([]byte, error)
}

// ExportFile es el archivo listo para descargar.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}
