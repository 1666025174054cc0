package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/requestdata"
	"github.com/yungbote/mindpalace-backend/internal/services"
)

type FloorHandler struct {
	log          *logger.Logger
	floorService services.FloorService
	pdfService   services.PDFService
}

func NewFloorHandler(log *logger.Logger, floorService services.FloorService, pdfService services.PDFService) *FloorHandler {
	return &FloorHandler{
		log:          log.With("handler", "FloorHandler"),
		floorService: floorService,
		pdfService:   pdfService,
	}
}

func (h *FloorHandler) ListFloors(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	floors, err := h.floorService.ListFloors(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ListFloors failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_floors_failed", err)
		return
	}
	RespondOK(c, gin.H{"floors": floors})
}

func (h *FloorHandler) CreateFloor(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	floor, err := h.floorService.CreateFloor(c.Request.Context(), rd.UserID, body.Name)
	if err != nil {
		h.log.Error("CreateFloor failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "create_floor_failed", err)
		return
	}
	RespondOK(c, gin.H{"floor": floor})
}

func (h *FloorHandler) GetFloor(c *gin.Context) {
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
	floor, err := h.floorService.GetFloor(c.Request.Context(), rd.UserID, floorID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "floor_not_found", err)
		return
	}
	RespondOK(c, gin.H{"floor": floor})
}

func (h *FloorHandler) UpdateFloor(c *gin.Context) {
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
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.floorService.UpdateFloor(c.Request.Context(), rd.UserID, floorID, updates); err != nil {
		RespondError(c, http.StatusInternalServerError, "update_floor_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *FloorHandler) DeleteFloor(c *gin.Context) {
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
	if err := h.floorService.DeleteFloor(c.Request.Context(), rd.UserID, floorID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_floor_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *FloorHandler) AttachRoom(c *gin.Context) {
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
		RoomID uuid.UUID `json:"room_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.RoomID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.floorService.AttachRoom(c.Request.Context(), rd.UserID, floorID, body.RoomID); err != nil {
		RespondError(c, http.StatusInternalServerError, "attach_room_failed", err)
		return
	}
	RespondOK(c, gin.H{"attached": true})
}

func (h *FloorHandler) DetachRoom(c *gin.Context) {
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
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	if err := h.floorService.DetachRoom(c.Request.Context(), rd.UserID, floorID, roomID); err != nil {
		RespondError(c, http.StatusInternalServerError, "detach_room_failed", err)
		return
	}
	RespondOK(c, gin.H{"detached": true})
}

func (h *FloorHandler) ListFloorRooms(c *gin.Context) {
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
	rooms, err := h.floorService.ListRooms(c.Request.Context(), rd.UserID, floorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_floor_rooms_failed", err)
		return
	}
	RespondOK(c, gin.H{"rooms": rooms})
}

func (h *FloorHandler) ListAssociations(c *gin.Context) {
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
	rows, err := h.floorService.ListAssociations(c.Request.Context(), rd.UserID, floorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_associations_failed", err)
		return
	}
	RespondOK(c, gin.H{"associations": rows})
}

func (h *FloorHandler) Walkthrough(c *gin.Context) {
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
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	slides, err := h.floorService.Walkthrough(c.Request.Context(), rd.UserID, floorID, roomID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "walkthrough_failed", err)
		return
	}
	RespondOK(c, gin.H{"slides": slides})
}

func (h *FloorHandler) UploadFile(c *gin.Context) {
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
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}

	file, err := h.pdfService.UploadToFloor(
		c.Request.Context(), rd.UserID, floorID,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data,
	)
	if err != nil {
		h.log.Error("UploadFile failed", "error", err, "floor_id", floorID)
		RespondError(c, http.StatusInternalServerError, "upload_file_failed", err)
		return
	}
	RespondOK(c, gin.H{"file": file})
}

func (h *FloorHandler) ListFiles(c *gin.Context) {
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
	files, err := h.pdfService.ListByFloor(c.Request.Context(), rd.UserID, floorID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "load_files_failed", err)
		return
	}
	RespondOK(c, gin.H{"files": files})
}
