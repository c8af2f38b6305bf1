// Package pdf arma el listado de facturas de un financiador para un período.
//
// Layout de la página A4 apaisada:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  HEADER: Financiador + CUIT     │  Período + fecha de emisión     │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Entrega | SKU | Producto | Cant. | P.Unit | Hon. | Total  │
//	│    por factura: banda con N°, fecha, estado, paciente, autoriz.  │
//	│    una fila por ítem y subtotal Bruto / Débitos / Cobrado / Saldo│
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TOTALES: Bruto / Débitos / Cobrado / Saldo (sin anuladas)        │
//	└──────────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	appbilling "github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

var _ appbilling.InvoiceListingRenderer = (*MarotoListingRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorMuted   = &props.Color{Red: 160, Green: 160, Blue: 160}
	colorBlack   = &props.Color{Red: 0, Green: 0, Blue: 0}
	colorHeader  = &props.Color{Red: 225, Green: 234, Blue: 244}
)

const dateLayout = "02/01/2006"

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoListingRenderer implementa billing.InvoiceListingRenderer usando Maroto v2.
type MarotoListingRenderer struct {
	printer *message.Printer
}

// NewMarotoListingRenderer construye el renderer con formato numérico es-AR.
func NewMarotoListingRenderer() *MarotoListingRenderer {
	return &MarotoListingRenderer{printer: message.NewPrinter(language.MustParse("es-AR"))}
}

// RenderInvoiceListing genera el PDF y devuelve sus bytes.
func (g *MarotoListingRenderer) RenderInvoiceListing(_ context.Context, l appbilling.InvoiceListing) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Listado de facturas "+l.Payer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(l))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(l.Rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin facturas en el período.", props.Text{Size: 8, Top: 2, Color: colorGray, Align: align.Center}),
		)))
	}
	for _, r := range l.Rows {
		m.AddRows(g.invoiceRows(r)...)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(l.Totals))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Generado el %s. Las facturas anuladas se listan pero no suman a los totales.",
			l.GeneratedAt.Format(dateLayout+" 15:04")),
			props.Text{Size: 6.5, Color: colorGray, Top: 3}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: financiador (izq) y período (der).
func (g *MarotoListingRenderer) headerRow(l appbilling.InvoiceListing) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(l.Payer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CUIT: "+nonEmpty(l.Payer.TaxID, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("LISTADO DE FACTURAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s al %s", l.From.Format(dateLayout), l.To.Format(dateLayout)), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(fmt.Sprintf("%d factura(s)", len(l.Rows)), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de ítems sobre fondo celeste.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Entrega", 2, align.Left),
		h("SKU", 1, align.Left),
		h("Producto", 3, align.Left),
		h("Cantidad", 1, align.Right),
		h("P. unitario", 2, align.Right),
		h("Honorario", 1, align.Right),
		h("Total", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorHeader})
}

// lineSizes acompaña a tableHeaderRow.
var lineSizes = []int{2, 1, 3, 1, 2, 1, 2}

// invoiceRows: banda de la factura, una fila por ítem y el subtotal. Las anuladas van en gris.
func (g *MarotoListingRenderer) invoiceRows(r appbilling.InvoiceListingRow) []core.Row {
	color := colorBlack
	if r.Status == entity.InvoiceCancelled {
		color = colorMuted
	}
	cell := func(s string, size int, a align.Type, style fontstyle.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{
			Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1, Color: color, Style: style,
		}))
	}
	patient := r.PatientName
	if r.PatientDocument != "" {
		patient += " (" + r.PatientDocument + ")"
	}
	rows := []core.Row{row.New(7).Add(
		cell(r.Number, 2, align.Left, fontstyle.Bold),
		cell(r.IssuedAt.Format(dateLayout), 1, align.Center, fontstyle.Normal),
		cell(r.Status, 1, align.Center, fontstyle.Normal),
		cell(patient, 5, align.Left, fontstyle.Normal),
		cell("Aut. "+nonEmpty(r.AuthorizationNumber, "-"), 3, align.Right, fontstyle.Normal),
	)}

	for _, ln := range r.Lines {
		cells := g.lineCells(ln)
		cols := make([]core.Col, len(cells))
		for i, c := range cells {
			a := align.Right
			if i < 3 {
				a = align.Left
			}
			cols[i] = cell(c, lineSizes[i], a, fontstyle.Normal)
		}
		rows = append(rows, row.New(6).Add(cols...))
	}

	rows = append(rows, row.New(7).Add(
		col.New(4),
		cell("Bruto "+g.money(r.Gross), 2, align.Right, fontstyle.Bold),
		cell("Débitos "+g.money(r.Debits), 2, align.Right, fontstyle.Bold),
		cell("Cobrado "+g.money(r.Payments), 2, align.Right, fontstyle.Bold),
		cell("Saldo "+g.money(r.NetDue), 2, align.Right, fontstyle.Bold),
	))
	rows = append(rows, line.NewRow(1, props.Line{Color: colorHeader, Thickness: 0.2}))
	return rows
}

// lineCells devuelve el texto de cada columna de un ítem, en el orden de tableHeaderRow.
func (g *MarotoListingRenderer) lineCells(ln appbilling.InvoiceListingLine) []string {
	return []string{
		nonEmpty(ln.DeliveryNumber, "-"),
		nonEmpty(ln.ProductSKU, "-"),
		ln.ProductName,
		g.printer.Sprintf("%v", number.Decimal(ln.Quantity.InexactFloat64())),
		g.money(ln.UnitPrice),
		g.money(ln.Honorarium),
		g.money(ln.Total),
	}
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoListingRenderer) totalsRow(t appbilling.InvoiceListingTotals) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Bruto:"),
			label("Débitos:"),
			label("Cobrado:"),
			grandLabel("SALDO A COBRAR:"),
		),
		col.New(3).Add(
			value(g.money(t.Gross)),
			value(g.money(t.Debits)),
			value(g.money(t.Payments)),
			grandValue(g.money(t.NetDue)),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea con separadores es-AR y dos decimales. Ej: 1234.5 → "$ 1.234,50".
func (g *MarotoListingRenderer) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$ %v", number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}
