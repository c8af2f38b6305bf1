package pdf

import appbilling "github.com/jhoicas/homecare-fulfillment/internal/application/billing"

// LineCells expone las columnas de un ítem del listado a los tests externos.
func LineCells(g *MarotoListingRenderer, ln appbilling.InvoiceListingLine) []string {
	return g.lineCells(ln)
}
