package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mindpalace-backend/internal/logger"
	"github.com/yungbote/mindpalace-backend/internal/requestdata"
	"github.com/yungbote/mindpalace-backend/internal/services"
)

type RoomHandler struct {
	log         *logger.Logger
	roomService services.RoomService
}

func NewRoomHandler(log *logger.Logger, roomService services.RoomService) *RoomHandler {
	return &RoomHandler{
		log:         log.With("handler", "RoomHandler"),
		roomService: roomService,
	}
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	rooms, err := h.roomService.ListRooms(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("ListRooms failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "load_rooms_failed", err)
		return
	}
	RespondOK(c, gin.H{"rooms": rooms})
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
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
	room, err := h.roomService.CreateRoom(c.Request.Context(), rd.UserID, body.Name)
	if err != nil {
		h.log.Error("CreateRoom failed", "error", err, "user_id", rd.UserID)
		RespondError(c, http.StatusInternalServerError, "create_room_failed", err)
		return
	}
	RespondOK(c, gin.H{"room": room})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	room, objects, err := h.roomService.GetRoom(c.Request.Context(), rd.UserID, roomID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "room_not_found", err)
		return
	}
	RespondOK(c, gin.H{"room": room, "objects": objects})
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.roomService.UpdateRoom(c.Request.Context(), rd.UserID, roomID, updates); err != nil {
		RespondError(c, http.StatusInternalServerError, "update_room_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	if err := h.roomService.DeleteRoom(c.Request.Context(), rd.UserID, roomID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_room_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *RoomHandler) AddObject(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	object, err := h.roomService.AddObject(c.Request.Context(), rd.UserID, roomID, body.Name, body.Description)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "add_object_failed", err)
		return
	}
	RespondOK(c, gin.H{"object": object})
}

func (h *RoomHandler) UpdateObject(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	objectID, err := uuid.Parse(c.Param("objectId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_object_id", err)
		return
	}
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.roomService.UpdateObject(c.Request.Context(), rd.UserID, objectID, updates); err != nil {
		RespondError(c, http.StatusInternalServerError, "update_object_failed", err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *RoomHandler) DeleteObject(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	objectID, err := uuid.Parse(c.Param("objectId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_object_id", err)
		return
	}
	if err := h.roomService.DeleteObject(c.Request.Context(), rd.UserID, objectID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_object_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *RoomHandler) AddObjectsFromPhoto(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_room_id", err)
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_photo", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_photo", err)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_photo", err)
		return
	}

	maxObjects := 0
	if v := c.Query("max_objects"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			maxObjects = parsed
		}
	}

	objects, err := h.roomService.AddObjectsFromPhoto(c.Request.Context(), rd.UserID, roomID, data, maxObjects)
	if err != nil {
		h.log.Error("AddObjectsFromPhoto failed", "error", err, "room_id", roomID)
		RespondError(c, http.StatusInternalServerError, "detect_objects_failed", err)
		return
	}
	RespondOK(c, gin.H{"objects": objects})
}
