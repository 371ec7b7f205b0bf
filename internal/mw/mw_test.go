package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"meeting-room-client/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)

	assert.True(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.False(t, limiter.GetLimiter("10.0.0.1").Allow())
	assert.True(t, limiter.GetLimiter("10.0.0.2").Allow())
	assert.Same(t, limiter.GetLimiter("10.0.0.1"), limiter.AddIP("10.0.0.1"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	entries := logs.FilterMessage("request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "abc-123", fields["request_id"])
		assert.Equal(t, "/rooms", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/rooms", nil)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

type fixedIdentity session.Identity

func (f fixedIdentity) Current() session.Identity { return session.Identity(f) }

func TestRequireIdentity(t *testing.T) {
	for _, tc := range []struct {
		name     string
		identity fixedIdentity
		want     int
	}{
		{name: "anonymous", identity: fixedIdentity{}, want: http.StatusUnauthorized},
		{name: "logged in", identity: fixedIdentity{UserID: 9}, want: http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/bookings", RequireIdentity(tc.identity), func(c *gin.Context) {
				id := c.MustGet(IdentityKey).(session.Identity)
				assert.Equal(t, int64(9), id.UserID)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/bookings", nil)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
