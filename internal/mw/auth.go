package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meeting-room-client/internal/session"
)

// IdentityKey is the gin context key holding the session.Identity of a request.
const IdentityKey = "identity"

// IdentitySource reports who is logged in.
type IdentitySource interface {
	Current() session.Identity
}

// RequireIdentity rejects requests while nobody is logged in.
func RequireIdentity(identities IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identities.Current()
		if !id.LoggedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in first."})
			return
		}
		c.Set(IdentityKey, id)
		c.Next()
	}
}
