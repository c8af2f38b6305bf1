package entity

import "time"

// Estados del episodio de atención.
const (
	EpisodeStatusActive = "ACTIVE"
	EpisodeStatusClosed = "CLOSED"
)

// Patient es el paciente domiciliario.
type Patient struct {
	ID         string
	TenantID   string
	FullName   string
	DocumentID string
}

// Episode es un episodio de atención de un paciente, recorrido por etapas de flujo.
type Episode struct {
	ID        string
	TenantID  string
	PatientID string
	StageID   string
	Status    string
	ClosedAt  *time.Time
	UpdatedAt time.Time
}

// WorkflowStage es una etapa configurable del flujo de episodios.
type WorkflowStage struct {
	ID         string
	TenantID   string
	Name       string
	Position   int
	IsTerminal bool
}
