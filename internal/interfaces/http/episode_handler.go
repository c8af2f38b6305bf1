package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/episode"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// EpisodeHandler mueve episodios por las etapas del flujo.
type EpisodeHandler struct {
	uc  *episode.UseCase
	log zerolog.Logger
}

// NewEpisodeHandler construye el handler.
func NewEpisodeHandler(uc *episode.UseCase, log zerolog.Logger) *EpisodeHandler {
	return &EpisodeHandler{uc: uc, log: log}
}

// MoveStage godoc
// @Summary      Mover episodio de etapa
// @Tags         episodes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Episodio"
// @Param        body  body  dto.MoveStageRequest  true  "stage_id"
// @Success      200  {object}  dto.EpisodeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/episodes/{id}/stage [post]
func (h *EpisodeHandler) MoveStage(c *fiber.Ctx) error {
	var in dto.MoveStageRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	ep, err := h.uc.MoveStage(c.Context(), GetActor(c), c.Params("id"), in.StageID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(episodeResponse(ep))
}

// Close godoc
// @Summary      Cerrar episodio
// @Description  Solo desde una etapa terminal.
// @Tags         episodes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Episodio"
// @Success      200  {object}  dto.EpisodeResponse
// @Failure      409  {object}  dto.ErrorResponse  "WORKFLOW_NOT_TERMINAL"
// @Router       /api/episodes/{id}/close [post]
func (h *EpisodeHandler) Close(c *fiber.Ctx) error {
	ep, err := h.uc.Close(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(episodeResponse(ep))
}

func episodeResponse(ep *entity.Episode) dto.EpisodeResponse {
	return dto.EpisodeResponse{ID: ep.ID, PatientID: ep.PatientID, StageID: ep.StageID, Status: ep.Status}
}
