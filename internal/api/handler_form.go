package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

type equipmentRequest struct {
	Tag string `json:"tag" binding:"required"`
}

// GetForm handles GET /api/form.
func (h *Handler) GetForm(c *gin.Context) {
	c.JSON(http.StatusOK, h.form.Snapshot())
}

// OpenForm handles POST /api/form/open/:roomID.
func (h *Handler) OpenForm(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("roomID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}
	room, ok := h.directory.Room(roomID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found."})
		return
	}

	if err := h.form.Open(room); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.form.Snapshot())
}

// UpdateForm handles PATCH /api/form with a {"field": "value"} object.
func (h *Handler) UpdateForm(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	names := make([]string, 0, len(req))
	for name := range req {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.form.SetField(name, req[name]); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, h.form.Snapshot())
}

// ToggleEquipment handles POST /api/form/equipment.
func (h *Handler) ToggleEquipment(c *gin.Context) {
	var req equipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.form.ToggleEquipment(req.Tag); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.form.Snapshot())
}

// SubmitForm handles POST /api/form/submit.
func (h *Handler) SubmitForm(c *gin.Context) {
	b, err := h.form.Submit(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// CancelForm handles DELETE /api/form.
func (h *Handler) CancelForm(c *gin.Context) {
	h.form.Cancel()
	c.Status(http.StatusNoContent)
}
