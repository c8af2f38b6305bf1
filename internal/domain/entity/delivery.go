package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

// Estados de la entrega. El ciclo solo avanza.
const (
	DeliveryPacked    = "PACKED"
	DeliveryInTransit = "IN_TRANSIT"
	DeliveryDelivered = "DELIVERED"
	DeliveryClosed    = "CLOSED"
	DeliveryIncident  = "INCIDENT"
)

// CarrierSignature es la firma del transportista al retirar.
type CarrierSignature struct {
	Name     string
	DNI      string
	SignedAt time.Time
}

// ReceiverSignature es la firma de quien recibe en el domicilio.
type ReceiverSignature struct {
	Name     string
	DNI      string
	Relation string
	SignedAt time.Time
}

// Normalized recorta los campos y exige nombre, DNI y vínculo.
func (r ReceiverSignature) Normalized() (ReceiverSignature, error) {
	r.Name, r.DNI, r.Relation = strings.TrimSpace(r.Name), strings.TrimSpace(r.DNI), strings.TrimSpace(r.Relation)
	if r.Name == "" || r.DNI == "" || r.Relation == "" {
		return r, domain.ErrValidation.With("nombre, DNI y vínculo de quien recibe son obligatorios")
	}
	return r, nil
}

// Delivery es el envío físico de una lista de picking empacada (1:1).
type Delivery struct {
	ID          string
	TenantID    string
	PickListID  string
	OrderID     string
	PatientID   string
	Number      string
	Status      string
	Carrier     *CarrierSignature
	Receiver    *ReceiverSignature
	IncidentID  string
	DeliveredAt *time.Time
	ClosedAt    *time.Time
	CreatedAt   time.Time
}

// DeliveryEvidence es un archivo de respaldo de la entrega (append-only).
type DeliveryEvidence struct {
	ID         string
	TenantID   string
	DeliveryID string
	FileKey    string
	FileName   string
	MimeType   string
	Size       int64
	UploadedBy string
	CreatedAt  time.Time
}

// MarkInTransit registra la firma del transportista y pasa a IN_TRANSIT.
func (d *Delivery) MarkInTransit(name, dni string, now time.Time) error {
	if d.Status != DeliveryPacked {
		return domain.ErrInvalidStatus
	}
	name, dni = strings.TrimSpace(name), strings.TrimSpace(dni)
	if name == "" || dni == "" {
		return domain.ErrValidation.With("nombre y DNI del transportista son obligatorios")
	}
	d.Carrier = &CarrierSignature{Name: name, DNI: dni, SignedAt: now}
	d.Status = DeliveryInTransit
	return nil
}

// AcceptsEvidence informa si todavía se pueden adjuntar evidencias.
func (d *Delivery) AcceptsEvidence() error {
	switch d.Status {
	case DeliveryPacked, DeliveryInTransit, DeliveryDelivered, DeliveryIncident:
		return nil
	}
	return domain.ErrInvalidStatus
}

// MarkDelivered valida firmas y evidencias y pasa a DELIVERED.
// El compromiso de stock lo coordina el caso de uso en la misma transacción.
func (d *Delivery) MarkDelivered(r ReceiverSignature, evidenceCount, minEvidence int, now time.Time) error {
	if d.Status != DeliveryInTransit {
		return domain.ErrInvalidStatus
	}
	if d.Carrier == nil || d.Carrier.Name == "" || d.Carrier.DNI == "" {
		return domain.ErrCarrierSignatureRequired
	}
	if evidenceCount < minEvidence {
		return domain.ErrEvidenceRequired
	}
	r, err := r.Normalized()
	if err != nil {
		return err
	}
	r.SignedAt = now
	d.Receiver = &r
	d.DeliveredAt = &now
	d.Status = DeliveryDelivered
	return nil
}

// Close pasa de DELIVERED a CLOSED.
func (d *Delivery) Close(now time.Time) error {
	if d.Status != DeliveryDelivered {
		return domain.ErrInvalidStatus
	}
	d.ClosedAt = &now
	d.Status = DeliveryClosed
	return nil
}

// ReportIncident marca la entrega como fallida antes de llegar al domicilio.
func (d *Delivery) ReportIncident(incidentID string) error {
	if d.Status != DeliveryPacked && d.Status != DeliveryInTransit {
		return domain.ErrInvalidStatus
	}
	d.IncidentID = incidentID
	d.Status = DeliveryIncident
	return nil
}

// Billable informa si la entrega ya puede facturarse.
func (d *Delivery) Billable() bool {
	return d.Status == DeliveryDelivered || d.Status == DeliveryClosed
}
