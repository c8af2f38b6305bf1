package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/jhoicas/homecare-fulfillment/internal/application/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/pdf"
)

func gasa(delivery string, qty, total, honorarium int64) appbilling.InvoiceListingLine {
	return appbilling.InvoiceListingLine{
		DeliveryNumber: delivery,
		ProductSKU:     "GAS-01",
		ProductName:    "Gasa estéril",
		Quantity:       decimal.NewFromInt(qty),
		UnitPrice:      decimal.NewFromInt(total / qty).Sub(decimal.NewFromInt(honorarium)),
		Honorarium:     decimal.NewFromInt(honorarium),
		Total:          decimal.NewFromInt(total),
	}
}

func TestRenderInvoiceListing_GeneraPDF(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	l := appbilling.InvoiceListing{
		Payer:       entity.Payer{Name: "OSDE", TaxID: "30-12345678-9"},
		From:        day,
		To:          day.AddDate(0, 0, 30),
		GeneratedAt: day,
		Rows: []appbilling.InvoiceListingRow{
			{Number: "FAC-202603-000001", IssuedAt: day, Status: entity.InvoicePartial, PatientName: "Ana Gómez",
				Lines: []appbilling.InvoiceListingLine{
					gasa("ENT-202603-000001", 10, 1000, 0),
					gasa("ENT-202603-000002", 2, 80, 20),
				},
				Gross: decimal.NewFromInt(1200), Debits: decimal.NewFromInt(100), Payments: decimal.NewFromInt(500), NetDue: decimal.NewFromInt(600)},
			{Number: "FAC-202603-000002", IssuedAt: day, Status: entity.InvoiceCancelled, PatientName: "Luis Paz",
				Lines: []appbilling.InvoiceListingLine{gasa("ENT-202603-000003", 3, 300, 0)},
				Gross: decimal.NewFromInt(300), NetDue: decimal.NewFromInt(300)},
		},
		Totals: appbilling.InvoiceListingTotals{
			Gross: decimal.NewFromInt(1200), Debits: decimal.NewFromInt(100), Payments: decimal.NewFromInt(500), NetDue: decimal.NewFromInt(600),
		},
	}

	data, err := pdf.NewMarotoListingRenderer().RenderInvoiceListing(context.Background(), l)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderInvoiceListing_SinFacturas(t *testing.T) {
	data, err := pdf.NewMarotoListingRenderer().RenderInvoiceListing(context.Background(), appbilling.InvoiceListing{
		Payer: entity.Payer{Name: "PAMI"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderInvoiceListing_ColumnasDelItem(t *testing.T) {
	g := pdf.NewMarotoListingRenderer()

	cells := pdf.LineCells(g, appbilling.InvoiceListingLine{
		DeliveryNumber: "ENT-202603-000001",
		ProductSKU:     "GAS-01",
		ProductName:    "Gasa estéril",
		Quantity:       decimal.RequireFromString("12"),
		UnitPrice:      decimal.RequireFromString("12345.5"),
		Honorarium:     decimal.RequireFromString("20"),
		Total:          decimal.RequireFromString("148386"),
	})
	assert.Equal(t, []string{
		"ENT-202603-000001", "GAS-01", "Gasa estéril", "12",
		"$ 12.345,50", "$ 20,00", "$ 148.386,00",
	}, cells)
}

func TestRenderInvoiceListing_ItemSinEntregaNiSKU(t *testing.T) {
	cells := pdf.LineCells(pdf.NewMarotoListingRenderer(), appbilling.InvoiceListingLine{
		ProductName: "Oxígeno",
		Quantity:    decimal.NewFromInt(1),
	})
	require.Len(t, cells, 7)
	assert.Equal(t, []string{"-", "-", "Oxígeno", "1"}, cells[:4])
	assert.Equal(t, "$ 0,00", cells[6])
}
