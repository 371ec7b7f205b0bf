package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meeting-room-client/internal/model"
)

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type roomsResponse struct {
	Rooms  []model.Room  `json:"rooms"`
	Filter rangeResponse `json:"filter"`
}

type filterRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (h *Handler) roomsBody(rooms []model.Room) roomsResponse {
	start, end := h.directory.Range()
	return roomsResponse{Rooms: rooms, Filter: rangeResponse{Start: start, End: end}}
}

// GetRooms handles GET /api/rooms.
func (h *Handler) GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.roomsBody(h.directory.Rooms()))
}

// ReloadRooms handles POST /api/rooms/reload.
func (h *Handler) ReloadRooms(c *gin.Context) {
	rooms, err := h.directory.LoadAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.roomsBody(rooms))
}

// FilterRooms handles POST /api/rooms/filter.
func (h *Handler) FilterRooms(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	rooms, err := h.directory.FilterByRange(c.Request.Context(), req.Start, req.End)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.roomsBody(rooms))
}

// ResetFilter handles DELETE /api/rooms/filter.
func (h *Handler) ResetFilter(c *gin.Context) {
	rooms, err := h.directory.ResetFilter(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.roomsBody(rooms))
}

// ToggleSchedule handles POST /api/rooms/:id/schedule/toggle.
func (h *Handler) ToggleSchedule(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	view, err := h.directory.ToggleSchedule(c.Request.Context(), roomID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
