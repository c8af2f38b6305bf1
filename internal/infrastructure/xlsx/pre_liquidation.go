// Package xlsx arma la planilla de pre-liquidación con excelize.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	appbilling "github.com/jhoicas/homecare-fulfillment/internal/application/billing"
)

var _ appbilling.PreLiquidationRenderer = (*ExcelizeRenderer)(nil)

const sheetName = "Pre-liquidación"

var headings = []string{
	"Entrega", "Fecha entrega", "Paciente", "Documento", "Autorización",
	"SKU", "Producto", "Cant. pedida", "Cant. entregada", "Evidencias",
	"Con evidencia", "Facturado", "Con regla", "Precio unit.", "Honorario", "Importe esperado",
}

// ExcelizeRenderer implementa billing.PreLiquidationRenderer.
type ExcelizeRenderer struct{}

// NewExcelizeRenderer construye el renderer.
func NewExcelizeRenderer() *ExcelizeRenderer { return &ExcelizeRenderer{} }

// RenderPreLiquidation genera el libro y devuelve sus bytes.
func (r *ExcelizeRenderer) RenderPreLiquidation(_ context.Context, p appbilling.PreLiquidation) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	title := fmt.Sprintf("%s | %s al %s", p.Payer.Name, p.From.Format("02/01/2006"), p.To.Format("02/01/2006"))
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, fmt.Errorf("xlsx: título: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	_ = f.SetCellStyle(sheetName, "A1", "A1", bold)

	headerRow := make([]any, len(headings))
	for i, h := range headings {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A3", &headerRow); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headings), 3)
	_ = f.SetCellStyle(sheetName, "A3", last, header)

	for i, row := range p.Rows {
		n := i + 4
		values := []any{
			row.DeliveryNumber,
			row.DeliveredAt.Format("2006-01-02"),
			row.PatientName,
			row.PatientDocument,
			row.AuthorizationNumber,
			row.ProductSKU,
			row.ProductName,
			row.RequestedQty.InexactFloat64(),
			row.PickedQty.InexactFloat64(),
			row.EvidenceCount,
			yesNo(row.Evidenced),
			yesNo(row.Invoiced),
			yesNo(row.RuleFound),
			row.UnitPrice.InexactFloat64(),
			row.Honorarium.InexactFloat64(),
			row.ExpectedAmount.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, n)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", n, err)
		}
		from, _ := excelize.CoordinatesToCellName(14, n)
		to, _ := excelize.CoordinatesToCellName(16, n)
		_ = f.SetCellStyle(sheetName, from, to, money)
	}

	if len(p.Rows) > 0 {
		n := len(p.Rows) + 4
		_ = f.SetCellValue(sheetName, fmt.Sprintf("O%d", n), "Total")
		_ = f.SetCellFormula(sheetName, fmt.Sprintf("P%d", n), fmt.Sprintf("SUM(P4:P%d)", n-1))
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("O%d", n), fmt.Sprintf("O%d", n), bold)
		_ = f.SetCellStyle(sheetName, fmt.Sprintf("P%d", n), fmt.Sprintf("P%d", n), money)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 18)
	_ = f.SetColWidth(sheetName, "C", "C", 28)
	_ = f.SetColWidth(sheetName, "G", "G", 32)
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 3, TopLeftCell: "A4", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}
