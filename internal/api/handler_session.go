package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting-room-client/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	LoggedIn bool              `json:"logged_in"`
	User     *session.Identity `json:"user,omitempty"`
}

func sessionBody(id session.Identity) sessionResponse {
	if !id.LoggedIn() {
		return sessionResponse{}
	}
	return sessionResponse{LoggedIn: true, User: &id}
}

// Login handles POST /api/session/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(id))
}

// Signup handles POST /api/session/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.sessions.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(id))
}

// Logout handles DELETE /api/session.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionBody(h.sessions.Current()))
}
