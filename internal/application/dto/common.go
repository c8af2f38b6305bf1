package dto

import "time"

// DateLayout es el formato de fechas de calendario en requests y responses.
const DateLayout = "2006-01-02"

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// PeriodQuery filtro de período para exportaciones. Ambas fechas son días inclusivos.
type PeriodQuery struct {
	PayerID string `query:"payer_id" validate:"required"`
	From    string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Format  string `query:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
