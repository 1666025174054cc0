package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/repos"
	"github.com/yungbote/mindpalace-backend/internal/requestdata"
	"github.com/yungbote/mindpalace-backend/internal/services"
)

type PalaceHandler struct {
	log        *logger.Logger
	generation services.PalaceGenerationService
	runRepo    repos.PalaceGenerationRunRepo
}

func NewPalaceHandler(log *logger.Logger, generation services.PalaceGenerationService, runRepo repos.PalaceGenerationRunRepo) *PalaceHandler {
	return &PalaceHandler{
		log:        log.With("handler", "PalaceHandler"),
		generation: generation,
		runRepo:    runRepo,
	}
}

// Generate enqueues association generation for a (floor, room) pair.
// The work itself happens on the run worker; clients follow progress
// over SSE or by polling GetRun.
func (h *PalaceHandler) Generate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	floorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_floor_id", err)
		return
	}
	var body struct {
		RoomID      uuid.UUID `json:"room_id"`
		NumConcepts int       `json:"num_concepts"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RoomID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	run, err := h.generation.EnqueueForFloorRoom(c.Request.Context(), rd.UserID, floorID, body.RoomID, body.NumConcepts)
	if err != nil {
		h.log.Error("Generate enqueue failed", "error", err, "floor_id", floorID, "room_id", body.RoomID)
		RespondError(c, http.StatusInternalServerError, "enqueue_generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

// GetGeneration returns the latest run for a floor.
func (h *PalaceHandler) GetGeneration(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	floorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_floor_id", err)
		return
	}
	run, err := h.runRepo.GetLatestByFloorID(c.Request.Context(), nil, floorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_run_failed", err)
		return
	}
	if run == nil || run.UserID != rd.UserID {
		RespondError(c, http.StatusNotFound, "run_not_found", nil)
		return
	}
	RespondOK(c, gin.H{"run": run})
}
