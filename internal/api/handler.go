package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meeting-room-client/internal/booking"
	"meeting-room-client/internal/directory"
	"meeting-room-client/internal/mw"
	"meeting-room-client/internal/parse"
	"meeting-room-client/internal/remote"
	"meeting-room-client/internal/session"
	"meeting-room-client/internal/store"
)

// Deps are the sessions and stores the handlers operate on.
type Deps struct {
	Store     store.Store
	WebPush   *webpush.Options
	Sessions  *session.Manager
	Directory *directory.Directory
	Form      *booking.Form
	List      *booking.List
	Log       *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	webpush   *webpush.Options
	sessions  *session.Manager
	directory *directory.Directory
	form      *booking.Form
	list      *booking.List
	log       *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:     deps.Store,
		webpush:   deps.WebPush,
		sessions:  deps.Sessions,
		directory: deps.Directory,
		form:      deps.Form,
		list:      deps.List,
		log:       log,
		now:       time.Now,
	}
}

// fail writes err as {"error": message} with a status matching its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, directory.ErrSuperseded):
		return http.StatusConflict, directory.Message(err)
	case errors.Is(err, directory.ErrIncompleteRange):
		return http.StatusBadRequest, directory.Message(err)
	case errors.Is(err, directory.ErrFetchFailed):
		return http.StatusBadGateway, directory.Message(err)

	case errors.Is(err, session.ErrMissingCredentials):
		return http.StatusBadRequest, session.Message(err)
	case errors.Is(err, session.ErrLoginFailed), errors.Is(err, session.ErrSignupFailed):
		return remoteStatus(err), session.Message(err)

	case errors.Is(err, parse.ErrInvalidTimeFormat),
		errors.Is(err, booking.ErrIncompleteForm),
		errors.Is(err, booking.ErrCapacityExceeded),
		errors.Is(err, booking.ErrUnknownEquipment),
		errors.Is(err, booking.ErrUnknownField),
		errors.Is(err, booking.ErrNotConfirmed):
		return http.StatusBadRequest, booking.Message(err)
	case errors.Is(err, booking.ErrNotLoggedIn):
		return http.StatusUnauthorized, booking.Message(err)
	case errors.Is(err, booking.ErrUnknownBooking):
		return http.StatusNotFound, booking.Message(err)
	case errors.Is(err, booking.ErrFormClosed), errors.Is(err, booking.ErrSubmitting), errors.Is(err, booking.ErrSuperseded):
		return http.StatusConflict, booking.Message(err)
	case errors.Is(err, booking.ErrBookingFailed), errors.Is(err, booking.ErrCancelFailed), errors.Is(err, booking.ErrFetchFailed):
		return remoteStatus(err), booking.Message(err)
	}
	return http.StatusInternalServerError, "Something went wrong."
}

// remoteStatus passes a client error of the booking service through and reports everything
// else as a bad gateway.
func remoteStatus(err error) int {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	var serverErr *booking.ServerError
	if errors.As(err, &serverErr) && serverErr.Status >= 400 && serverErr.Status < 500 {
		return serverErr.Status
	}
	return http.StatusBadGateway
}

// identity returns the user set by mw.RequireIdentity, falling back to the current session.
func (h *Handler) identity(c *gin.Context) session.Identity {
	if v, ok := c.Get(mw.IdentityKey); ok {
		if id, ok := v.(session.Identity); ok {
			return id
		}
	}
	return h.sessions.Current()
}
