package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-room-client/internal/model"
)

func TestPutSubscription_InvalidRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)

	w := env.do(t, http.MethodPut, "/api/subscriptions", "")
	assertError(t, w, http.StatusBadRequest, "invalid request")
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	endpoint := "https://push.example.com/send/a%2Bb"

	w := env.do(t, http.MethodPut, "/api/subscriptions", `{"endpoint": "`+endpoint+`", "p256dh": "key", "auth": "secret"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	subs, err := env.store.SubscriptionsForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, model.PushSubscription{Endpoint: endpoint, UserID: 7, P256DH: "key", Auth: "secret", CreatedAt: subs[0].CreatedAt}, subs[0])

	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"endpoint": "`+endpoint+`", "user_id": 7}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/subscriptions", "")
	assertError(t, w, http.StatusBadRequest, "endpoint is required")

	w = env.do(t, http.MethodDelete, "/api/subscriptions", `{"endpoint": "`+endpoint+`"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, "")
	assertError(t, w, http.StatusNotFound, "subscription not found")
}

func TestGetSubscription_OtherUser(t *testing.T) {
	env := newTestEnv(t, nil)
	env.login(t)
	require.NoError(t, env.store.UpsertSubscription(context.Background(), model.PushSubscription{
		Endpoint: "https://push.example.com/other", UserID: 8, P256DH: "k", Auth: "a",
	}))

	w := env.do(t, http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/other", "")
	assertError(t, w, http.StatusNotFound, "subscription not found")
}

func TestRawQueryParam(t *testing.T) {
	v, ok := rawQueryParam("a=1&endpoint=x%2By&b=2", "endpoint")
	assert.True(t, ok)
	assert.Equal(t, "x%2By", v)

	_, ok = rawQueryParam("a=1", "endpoint")
	assert.False(t, ok)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/api/vapid_public_key", "")
	assertError(t, w, http.StatusNotFound, "Booking reminders are disabled.")

	env = newTestEnv(t, &webpush.Options{})
	w = env.do(t, http.MethodGet, "/api/vapid_public_key", "")
	assertError(t, w, http.StatusServiceUnavailable, "vapid keys are not configured")

	env = newTestEnv(t, &webpush.Options{VAPIDPublicKey: "public", TTL: 3600})
	w = env.do(t, http.MethodGet, "/api/vapid_public_key", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key": "public", "ttl": 3600}`, w.Body.String())
}
