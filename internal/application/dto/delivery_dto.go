package dto

import (
	"time"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// CarrierSignatureRequest body para POST /api/deliveries/:id/in-transit.
type CarrierSignatureRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	DNI  string `json:"dni" validate:"required,max=20"`
}

// MarkDeliveredRequest body para POST /api/deliveries/:id/delivered.
type MarkDeliveredRequest struct {
	ReceiverName     string `json:"receiver_name" validate:"required,max=120"`
	ReceiverDNI      string `json:"receiver_dni" validate:"required,max=20"`
	ReceiverRelation string `json:"receiver_relation" validate:"required,max=60"`
}

// DeliveryIncidentRequest body para POST /api/deliveries/:id/incident.
type DeliveryIncidentRequest struct {
	Cause       string `json:"cause" validate:"required,oneof=OUT_OF_STOCK INDICATION_CHANGED HOME_REFUSAL NON_COMPLIANCE DAMAGED OTHER"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

// UploadedFile archivo recibido por multipart, ya leído.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// SignatureResponse firma registrada.
type SignatureResponse struct {
	Name     string    `json:"name"`
	DNI      string    `json:"dni"`
	Relation string    `json:"relation,omitempty"`
	SignedAt time.Time `json:"signed_at"`
}

// DeliveryResponse entrega.
type DeliveryResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	PickListID    string             `json:"pick_list_id"`
	OrderID       string             `json:"order_id"`
	PatientID     string             `json:"patient_id"`
	Status        string             `json:"status"`
	Carrier       *SignatureResponse `json:"carrier,omitempty"`
	Receiver      *SignatureResponse `json:"receiver,omitempty"`
	IncidentID    string             `json:"incident_id,omitempty"`
	DeliveredAt   *time.Time         `json:"delivered_at,omitempty"`
	ClosedAt      *time.Time         `json:"closed_at,omitempty"`
	EvidenceCount int                `json:"evidence_count"`
}

// EvidenceResponse evidencia adjunta.
type EvidenceResponse struct {
	ID        string    `json:"id"`
	FileKey   string    `json:"file_key"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDeliveryResponse mapea una entrega.
func NewDeliveryResponse(d *entity.Delivery, evidenceCount int) DeliveryResponse {
	out := DeliveryResponse{
		ID:            d.ID,
		Number:        d.Number,
		PickListID:    d.PickListID,
		OrderID:       d.OrderID,
		PatientID:     d.PatientID,
		Status:        d.Status,
		IncidentID:    d.IncidentID,
		DeliveredAt:   d.DeliveredAt,
		ClosedAt:      d.ClosedAt,
		EvidenceCount: evidenceCount,
	}
	if d.Carrier != nil {
		out.Carrier = &SignatureResponse{Name: d.Carrier.Name, DNI: d.Carrier.DNI, SignedAt: d.Carrier.SignedAt}
	}
	if d.Receiver != nil {
		out.Receiver = &SignatureResponse{Name: d.Receiver.Name, DNI: d.Receiver.DNI, Relation: d.Receiver.Relation, SignedAt: d.Receiver.SignedAt}
	}
	return out
}

// NewEvidenceResponse mapea una evidencia.
func NewEvidenceResponse(e *entity.DeliveryEvidence, url string) EvidenceResponse {
	return EvidenceResponse{
		ID:        e.ID,
		FileKey:   e.FileKey,
		FileName:  e.FileName,
		MimeType:  e.MimeType,
		Size:      e.Size,
		URL:       url,
		CreatedAt: e.CreatedAt,
	}
}
