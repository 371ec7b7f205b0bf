package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meeting-room-client/internal/booking"
	"meeting-room-client/internal/model"
)

// GetBookings handles GET /api/bookings. The current user's bookings are fetched the first
// time they are asked for. A load overtaken by a newer one renders whatever that one installed.
func (h *Handler) GetBookings(c *gin.Context) {
	_, err := h.list.Load(c.Request.Context(), h.identity(c).UserID)
	if err != nil && !errors.Is(err, booking.ErrSuperseded) {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": h.list.Views(h.now())})
}

// ReloadBookings handles POST /api/bookings/reload.
func (h *Handler) ReloadBookings(c *gin.Context) {
	if _, err := h.list.Reload(c.Request.Context()); err != nil && !errors.Is(err, booking.ErrSuperseded) {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": h.list.Views(h.now())})
}

// CancelBooking handles DELETE /api/bookings/:id. The caller confirms with ?confirm=true.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	err = h.list.CancelBooking(c.Request.Context(), id, func(model.Booking) bool { return confirmed })
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled."})
}

// EditBooking handles POST /api/bookings/:id/edit.
func (h *Handler) EditBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.list.BeginEdit(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.form.Snapshot())
}
