package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"meeting-room-client/config"
	"meeting-room-client/internal/booking"
	"meeting-room-client/internal/db"
	"meeting-room-client/internal/directory"
	"meeting-room-client/internal/model"
	"meeting-room-client/internal/remote"
	"meeting-room-client/internal/session"
	"meeting-room-client/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeRemote is a scripted booking service.
type fakeRemote struct {
	mu       sync.Mutex
	calls    map[string]int
	requests map[string]string
	override map[string]func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeRemote) record(key string, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[key]++
	f.requests[key] = string(body)
	if r.URL.RawQuery != "" {
		f.requests[key+"?"] = r.URL.RawQuery
	}
}

func (f *fakeRemote) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeRemote) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[key]
}

// on replaces the canned answer of one route.
func (f *fakeRemote) on(key string, fn func(w http.ResponseWriter, r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.override[key] = fn
}

func (f *fakeRemote) route(mux *http.ServeMux, pattern, canned string) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		f.record(pattern, r)
		f.mu.Lock()
		fn := f.override[pattern]
		f.mu.Unlock()
		if fn != nil {
			fn(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, canned)
	})
}

const (
	roomsJSON = `[
		{"id": 1, "name": "Alpha", "capacity": 4, "equipment": "Projector, Whiteboard"},
		{"id": 2, "name": "Beta", "capacity": 10, "equipment": null}
	]`
	bookingsJSON = `[
		{"id": 11, "user_id": 7, "room_id": 1, "room_name": "Alpha", "title": "Standup", "attendees_count": 3,
		 "start_time": "2030-01-01T09:00:00Z", "end_time": "2030-01-01T09:30:00Z", "equipment": "Projector"}
	]`
)

type testEnv struct {
	router  *gin.Engine
	remote  *fakeRemote
	store   store.Store
	form    *booking.Form
	list    *booking.List
	rooms   *directory.Directory
	session *session.Manager
}

func newTestEnv(t *testing.T, push *webpush.Options) *testEnv {
	t.Helper()

	fake := &fakeRemote{
		calls:    map[string]int{},
		requests: map[string]string{},
		override: map[string]func(http.ResponseWriter, *http.Request){},
	}
	mux := http.NewServeMux()
	fake.route(mux, "POST /api/users/login", `{"id": 7, "name": "Ann", "email": "ann@example.com"}`)
	fake.route(mux, "POST /api/users/signup", `{"id": 8, "name": "Bob", "email": "bob@example.com"}`)
	fake.route(mux, "GET /api/rooms", roomsJSON)
	fake.route(mux, "GET /api/bookings/availability", `[{"id": 2, "name": "Beta", "capacity": 10, "equipment": ""}]`)
	fake.route(mux, "GET /api/bookings/room/{id}/today", `[{"start_time": "2030-01-01T09:00:00Z", "end_time": "2030-01-01T10:00:00Z", "title": "Busy"}]`)
	fake.route(mux, "GET /api/bookings/user/{id}", bookingsJSON)
	fake.route(mux, "POST /api/bookings", `{"id": 12, "user_id": 7, "room_id": 1, "title": "Planning", "attendees_count": 3,
		"start_time": "2030-01-01T10:00:00Z", "end_time": "2030-01-01T11:00:00Z", "equipment": "Projector"}`)
	fake.route(mux, "PUT /api/bookings/{id}", `{"id": 11}`)
	fake.route(mux, "DELETE /api/bookings/{id}", `{}`)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	appStore := store.NewGormStore(gormDB)

	log := zap.NewNop()
	client := remote.NewClient(config.RemoteConfig{BaseURL: server.URL}, log, nil)
	sessions := session.NewManager(client, appStore, log)
	rooms := directory.New(client, time.UTC, log)
	form := booking.NewForm(client, rooms, sessions, time.UTC, log)
	list := booking.NewList(client, form, log)
	form.OnCreated(func(ctx context.Context, _ model.Booking) { rooms.LoadAll(ctx) })
	form.OnUpdated(func(ctx context.Context, _ model.Booking) { list.Reload(ctx) })

	h := NewHandler(Deps{
		Store:     appStore,
		WebPush:   push,
		Sessions:  sessions,
		Directory: rooms,
		Form:      form,
		List:      list,
		Log:       log,
	})
	h.now = func() time.Time { return time.Date(2030, 1, 1, 9, 15, 0, 0, time.UTC) }

	cfg := config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}
	return &testEnv{
		router:  NewRouter(h, cfg, log, "/metrics", nil),
		remote:  fake,
		store:   appStore,
		form:    form,
		list:    list,
		rooms:   rooms,
		session: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/session/login", `{"email": "ann@example.com", "password": "secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	assert.Equal(t, status, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error": %q}`, message), w.Body.String())
}
