package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"meeting-room-client/config"
	"meeting-room-client/internal/mw"
)

// NewRouter creates and configures a new Gin router. metrics, when non-nil, is served at
// metricsPath outside the rate limit.
func NewRouter(h *Handler, cfg config.ServerConfig, log *zap.Logger, metricsPath string, metrics http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(log))

	if metrics != nil {
		r.GET(metricsPath, gin.WrapH(metrics))
	}

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, log)
	loggedIn := mw.RequireIdentity(h.sessions)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/session/login", h.Login)
		api.POST("/session/signup", h.Signup)
		api.DELETE("/session", h.Logout)
		api.GET("/session", h.GetSession)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		user := api.Group("")
		user.Use(loggedIn)

		user.GET("/rooms", h.GetRooms)
		user.POST("/rooms/reload", h.ReloadRooms)
		user.POST("/rooms/filter", h.FilterRooms)
		user.DELETE("/rooms/filter", h.ResetFilter)
		user.POST("/rooms/:id/schedule/toggle", h.ToggleSchedule)

		user.GET("/form", h.GetForm)
		user.POST("/form/open/:roomID", h.OpenForm)
		user.PATCH("/form", h.UpdateForm)
		user.POST("/form/equipment", h.ToggleEquipment)
		user.POST("/form/submit", h.SubmitForm)
		user.DELETE("/form", h.CancelForm)

		user.GET("/bookings", h.GetBookings)
		user.POST("/bookings/reload", h.ReloadBookings)
		user.DELETE("/bookings/:id", h.CancelBooking)
		user.POST("/bookings/:id/edit", h.EditBooking)

		user.GET("/subscriptions", h.GetSubscription)
		user.PUT("/subscriptions", h.PutSubscription)
		user.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}
