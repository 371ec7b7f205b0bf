package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type vapidResponse struct {
	PublicKey string `json:"public_key"`
	TTL       int    `json:"ttl"`
}

// GetVAPIDPublicKey hands the browser what it needs to subscribe to booking reminders. Without
// push options the daemon runs with reminders off and there is nothing to subscribe to.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking reminders are disabled."})
		return
	}
	if h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}

	c.JSON(http.StatusOK, vapidResponse{PublicKey: h.webpush.VAPIDPublicKey, TTL: h.webpush.TTL})
}
