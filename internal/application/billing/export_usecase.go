package billing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	domainbilling "github.com/jhoicas/homecare-fulfillment/internal/domain/billing"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportUseCase arma los listados por financiador: facturas (CSV/PDF) y pre-liquidación (CSV/XLSX).
type ExportUseCase struct {
	tx          ports.TxRunner
	pdf         InvoiceListingRenderer
	xlsx        PreLiquidationRenderer
	log         zerolog.Logger
	minEvidence int
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(tx ports.TxRunner, pdf InvoiceListingRenderer, xlsx PreLiquidationRenderer, log zerolog.Logger, minEvidence int) *ExportUseCase {
	if minEvidence < 1 {
		minEvidence = 1
	}
	return &ExportUseCase{tx: tx, pdf: pdf, xlsx: xlsx, log: log, minEvidence: minEvidence}
}

// ExportInvoices genera el listado de facturas del financiador en el formato pedido (csv por defecto).
func (uc *ExportUseCase) ExportInvoices(ctx context.Context, tenantID string, q dto.PeriodQuery) (*ExportFile, error) {
	format := q.Format
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, domain.ErrValidation.With("formato no soportado para facturas: " + format)
	}
	l, err := uc.InvoiceListing(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("facturas_%s_%s_%s", l.Payer.Name, l.From.Format("20060102"), l.To.Format("20060102"))
	if format == FormatPDF {
		data, err := uc.pdf.RenderInvoiceListing(ctx, *l)
		if err != nil {
			return nil, fmt.Errorf("export: generar pdf: %w", err)
		}
		return &ExportFile{Name: name + ".pdf", ContentType: contentTypePDF, Data: data}, nil
	}
	data, err := invoiceListingCSV(l)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: name + ".csv", ContentType: contentTypeCSV, Data: data}, nil
}

// ExportPreLiquidation genera la pre-liquidación en el formato pedido (csv por defecto).
func (uc *ExportUseCase) ExportPreLiquidation(ctx context.Context, tenantID string, q dto.PeriodQuery) (*ExportFile, error) {
	format := q.Format
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, domain.ErrValidation.With("formato no soportado para pre-liquidación: " + format)
	}
	p, err := uc.PreLiquidation(ctx, tenantID, q)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("preliquidacion_%s_%s_%s", p.Payer.Name, p.From.Format("20060102"), p.To.Format("20060102"))
	if format == FormatXLSX {
		data, err := uc.xlsx.RenderPreLiquidation(ctx, *p)
		if err != nil {
			return nil, fmt.Errorf("export: generar xlsx: %w", err)
		}
		return &ExportFile{Name: name + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
	}
	data, err := preLiquidationCSV(p)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Name: name + ".csv", ContentType: contentTypeCSV, Data: data}, nil
}

// InvoiceListing reúne las facturas emitidas al financiador en el período.
func (uc *ExportUseCase) InvoiceListing(ctx context.Context, tenantID string, q dto.PeriodQuery) (*InvoiceListing, error) {
	from, to, err := parsePeriod(q)
	if err != nil {
		return nil, err
	}
	end := to.AddDate(0, 0, 1)
	l := &InvoiceListing{From: from, To: to, GeneratedAt: time.Now()}
	l.Totals = InvoiceListingTotals{Gross: decimal.Zero, Debits: decimal.Zero, Payments: decimal.Zero, NetDue: decimal.Zero}
	err = uc.tx.Run(ctx, func(s repository.Stores) error {
		payer, err := s.Payers.GetPayer(ctx, tenantID, q.PayerID)
		if err != nil {
			return err
		}
		if payer == nil {
			return domain.ErrPayerNotFound
		}
		l.Payer = *payer
		invoices, err := s.Invoices.List(ctx, tenantID, repository.InvoiceFilter{PayerID: q.PayerID, From: &from, To: &end})
		if err != nil {
			return err
		}
		patients := map[string]*entity.Patient{}
		products := map[string]*entity.Product{}
		auths := map[string]*entity.Authorization{}
		for i := range invoices {
			inv := &invoices[i]
			st := domainbilling.Reconcile(inv.Gross(), inv.DebitTotal(), inv.PaymentTotal())
			row := InvoiceListingRow{
				Number:   inv.Number,
				IssuedAt: inv.IssuedAt,
				Status:   inv.Status,
				Gross:    st.Gross,
				Debits:   st.Debits,
				Payments: st.Payments,
				NetDue:   st.NetDue,
			}
			if p, err := cachedPatient(ctx, s, tenantID, inv.PatientID, patients); err != nil {
				return err
			} else if p != nil {
				row.PatientName, row.PatientDocument = p.FullName, p.DocumentID
			}
			a, ok := auths[inv.AuthorizationID]
			if !ok {
				if a, err = s.Authorizations.GetByID(ctx, tenantID, inv.AuthorizationID); err != nil {
					return err
				}
				auths[inv.AuthorizationID] = a
			}
			if a != nil {
				row.AuthorizationNumber = a.Number
			}
			for _, it := range inv.Items {
				line := InvoiceListingLine{
					DeliveryNumber: it.Evidence.DeliveryNumber,
					ProductName:    it.Description,
					Quantity:       it.Quantity,
					UnitPrice:      it.UnitPrice,
					Honorarium:     it.Honorarium,
					Total:          it.Total,
				}
				p, err := cachedProduct(ctx, s, tenantID, it.ProductID, products)
				if err != nil {
					return err
				}
				if p != nil {
					line.ProductSKU = p.SKU
					if line.ProductName == "" {
						line.ProductName = p.Name
					}
				}
				row.Lines = append(row.Lines, line)
			}
			l.Rows = append(l.Rows, row)
			if inv.Status != entity.InvoiceCancelled {
				l.Totals.Gross = l.Totals.Gross.Add(st.Gross)
				l.Totals.Debits = l.Totals.Debits.Add(st.Debits)
				l.Totals.Payments = l.Totals.Payments.Add(st.Payments)
				l.Totals.NetDue = l.Totals.NetDue.Add(st.NetDue)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(l.Rows, func(i, j int) bool { return l.Rows[i].Number < l.Rows[j].Number })
	return l, nil
}

// PreLiquidation cruza las entregas del período con las autorizaciones del financiador.
// Solo entran entregas de pacientes con una autorización del financiador vigente a la fecha de entrega.
func (uc *ExportUseCase) PreLiquidation(ctx context.Context, tenantID string, q dto.PeriodQuery) (*PreLiquidation, error) {
	from, to, err := parsePeriod(q)
	if err != nil {
		return nil, err
	}
	out := &PreLiquidation{From: from, To: to, GeneratedAt: time.Now()}
	err = uc.tx.Run(ctx, func(s repository.Stores) error {
		payer, err := s.Payers.GetPayer(ctx, tenantID, q.PayerID)
		if err != nil {
			return err
		}
		if payer == nil {
			return domain.ErrPayerNotFound
		}
		out.Payer = *payer
		auths, err := s.Authorizations.ListByPayer(ctx, tenantID, q.PayerID)
		if err != nil {
			return err
		}
		deliveries, err := s.Deliveries.ListDelivered(ctx, tenantID, from, to.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		patients := map[string]*entity.Patient{}
		products := map[string]*entity.Product{}
		for i := range deliveries {
			d := &deliveries[i]
			if d.DeliveredAt == nil {
				continue
			}
			auth := matchAuthorization(auths, d.PatientID, *d.DeliveredAt)
			if auth == nil {
				continue
			}
			rows, err := uc.deliveryRows(ctx, s, tenantID, d, auth, patients, products)
			if err != nil {
				return err
			}
			out.Rows = append(out.Rows, rows...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *ExportUseCase) deliveryRows(ctx context.Context, s repository.Stores, tenantID string, d *entity.Delivery, auth *entity.Authorization,
	patients map[string]*entity.Patient, products map[string]*entity.Product) ([]PreLiquidationRow, error) {
	pl, err := s.PickLists.GetByID(ctx, tenantID, d.PickListID)
	if err != nil || pl == nil {
		return nil, err
	}
	evidence, err := s.Deliveries.CountEvidence(ctx, tenantID, d.ID)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.Invoices.DeliveryInvoiced(ctx, tenantID, d.ID)
	if err != nil {
		return nil, err
	}
	patient, err := cachedPatient(ctx, s, tenantID, d.PatientID, patients)
	if err != nil {
		return nil, err
	}
	rows := make([]PreLiquidationRow, 0, len(pl.Items))
	for _, it := range pl.Items {
		row := PreLiquidationRow{
			DeliveryNumber:      d.Number,
			DeliveredAt:         *d.DeliveredAt,
			AuthorizationNumber: auth.Number,
			RequestedQty:        it.RequestedQty,
			PickedQty:           it.PickedQty,
			EvidenceCount:       evidence,
			Evidenced:           evidence >= uc.minEvidence,
			Invoiced:            invoiced,
			UnitPrice:           decimal.Zero,
			Honorarium:          decimal.Zero,
			ExpectedAmount:      decimal.Zero,
		}
		if patient != nil {
			row.PatientName, row.PatientDocument = patient.FullName, patient.DocumentID
		}
		p, err := cachedProduct(ctx, s, tenantID, it.ProductID, products)
		if err != nil {
			return nil, err
		}
		if p != nil {
			row.ProductSKU, row.ProductName = p.SKU, p.Name
		}
		candidates, err := s.BillingRules.ListCandidates(ctx, tenantID, auth.PayerID, it.ProductID)
		if err != nil {
			return nil, err
		}
		if rule, err := domainbilling.ResolveRule(candidates, auth.PlanID); err == nil {
			row.RuleFound = true
			row.UnitPrice, row.Honorarium = rule.UnitPrice, rule.Honorarium
			row.ExpectedAmount = rule.LineTotal(it.PickedQty)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// matchAuthorization elige la autorización del paciente que cubre la fecha; prefiere ACTIVE.
func matchAuthorization(auths []entity.Authorization, patientID string, at time.Time) *entity.Authorization {
	var fallback *entity.Authorization
	day := entity.DateOf(at)
	for i := range auths {
		a := &auths[i]
		if a.PatientID != patientID || a.Status == entity.AuthorizationCancelled {
			continue
		}
		if entity.DateOf(a.StartDate).After(day) || a.EndedBefore(at) {
			continue
		}
		if a.Status == entity.AuthorizationActive {
			return a
		}
		if fallback == nil {
			fallback = a
		}
	}
	return fallback
}

func cachedPatient(ctx context.Context, s repository.Stores, tenantID, id string, cache map[string]*entity.Patient) (*entity.Patient, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := s.Patients.GetPatient(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	cache[id] = p
	return p, nil
}

func cachedProduct(ctx context.Context, s repository.Stores, tenantID, id string, cache map[string]*entity.Product) (*entity.Product, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := s.Products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	cache[id] = p
	return p, nil
}

// parsePeriod interpreta from/to como días UTC. Sin from: primer día del mes en curso; sin to: hoy.
func parsePeriod(q dto.PeriodQuery) (time.Time, time.Time, error) {
	today := entity.DateOf(time.Now())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := today
	var err error
	if q.From != "" {
		if from, err = time.Parse(dto.DateLayout, q.From); err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation.With("from inválida")
		}
	}
	if q.To != "" {
		if to, err = time.Parse(dto.DateLayout, q.To); err != nil {
			return time.Time{}, time.Time{}, domain.ErrValidation.With("to inválida")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, domain.ErrValidation.With("to anterior a from")
	}
	return from, to, nil
}

// ── CSV ───────────────────────────────────────────────────────────────────────

// invoiceListingCSV escribe una fila ITEM por línea facturada, un SUBTOTAL por factura y el TOTAL final.
func invoiceListingCSV(l *InvoiceListing) ([]byte, error) {
	records := [][]string{{
		"tipo", "numero", "fecha", "estado", "paciente", "documento", "autorizacion",
		"entrega", "sku", "producto", "cantidad", "precio_unitario", "honorario", "total_linea",
		"bruto", "debitos", "cobros", "neto",
	}}
	for _, r := range l.Rows {
		head := []string{r.Number, r.IssuedAt.Format(dto.DateLayout), r.Status, r.PatientName, r.PatientDocument, r.AuthorizationNumber}
		for _, ln := range r.Lines {
			rec := append([]string{"ITEM"}, head...)
			rec = append(rec,
				ln.DeliveryNumber, ln.ProductSKU, ln.ProductName, ln.Quantity.String(),
				ln.UnitPrice.StringFixed(2), ln.Honorarium.StringFixed(2), ln.Total.StringFixed(2),
				"", "", "", "",
			)
			records = append(records, rec)
		}
		rec := append([]string{"SUBTOTAL"}, head...)
		rec = append(rec,
			"", "", "", "", "", "", "",
			r.Gross.StringFixed(2), r.Debits.StringFixed(2), r.Payments.StringFixed(2), r.NetDue.StringFixed(2),
		)
		records = append(records, rec)
	}
	records = append(records, []string{
		"TOTAL", "", "", "", "", "", "", "", "", "", "", "", "", "",
		l.Totals.Gross.StringFixed(2), l.Totals.Debits.StringFixed(2), l.Totals.Payments.StringFixed(2), l.Totals.NetDue.StringFixed(2),
	})
	return writeCSV(records)
}

func preLiquidationCSV(p *PreLiquidation) ([]byte, error) {
	records := [][]string{{
		"entrega", "fecha_entrega", "paciente", "documento", "autorizacion", "sku", "producto",
		"cantidad_autorizada", "cantidad_entregada", "evidencias", "con_evidencia", "facturada",
		"regla", "precio_unitario", "honorario", "importe_esperado",
	}}
	for _, r := range p.Rows {
		records = append(records, []string{
			r.DeliveryNumber, r.DeliveredAt.Format(dto.DateLayout), r.PatientName, r.PatientDocument, r.AuthorizationNumber,
			r.ProductSKU, r.ProductName, r.RequestedQty.String(), r.PickedQty.String(), strconv.Itoa(r.EvidenceCount),
			yesNo(r.Evidenced), yesNo(r.Invoiced), yesNo(r.RuleFound),
			r.UnitPrice.StringFixed(2), r.Honorarium.StringFixed(2), r.ExpectedAmount.StringFixed(2),
		})
	}
	return writeCSV(records)
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("export: escribir csv: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}
