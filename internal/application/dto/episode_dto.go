package dto

// MoveStageRequest body para POST /api/episodes/:id/stage.
type MoveStageRequest struct {
	StageID string `json:"stage_id" validate:"required"`
}

// EpisodeResponse episodio.
type EpisodeResponse struct {
	ID        string `json:"id"`
	PatientID string `json:"patient_id"`
	StageID   string `json:"stage_id"`
	Status    string `json:"status"`
}
