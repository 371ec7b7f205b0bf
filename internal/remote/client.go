package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meeting-room-client/config"
	"meeting-room-client/internal/model"
	"meeting-room-client/internal/parse"
)

// Client talks to the remote booking service. It holds no per-user state and is safe for
// concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
	metrics *Metrics
}

// NewClient creates a client for the configured base URL. An invalid proxy URL is logged and
// ignored.
func NewClient(cfg config.RemoteConfig, log *zap.Logger, metrics *Metrics) *Client {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			log.Warn("invalid proxy url, remote client will not use a proxy",
				zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		log:     log,
		metrics: metrics,
	}
}

// ListRooms fetches every room.
func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	var dtos []roomDTO
	if err := c.do(ctx, "rooms", http.MethodGet, "/api/rooms", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return roomsFromWire(dtos), nil
}

// AvailableRooms fetches the rooms the service reports as free in [start, end].
func (c *Client) AvailableRooms(ctx context.Context, start, end time.Time) ([]model.Room, error) {
	q := url.Values{}
	q.Set("start", formatInstant(start))
	q.Set("end", formatInstant(end))

	var dtos []roomDTO
	if err := c.do(ctx, "availability", http.MethodGet, "/api/bookings/availability", q, nil, &dtos); err != nil {
		return nil, err
	}
	return roomsFromWire(dtos), nil
}

// TodaySchedule fetches today's bookings of one room.
func (c *Client) TodaySchedule(ctx context.Context, roomID int64) ([]model.ScheduleSlot, error) {
	var dtos []slotDTO
	path := fmt.Sprintf("/api/bookings/room/%d/today", roomID)
	if err := c.do(ctx, "room_schedule", http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, err
	}

	slots := make([]model.ScheduleSlot, 0, len(dtos))
	for _, d := range dtos {
		slot, err := d.toModel(roomID)
		if err != nil {
			return nil, fmt.Errorf("%w: room %d schedule: %v", ErrInvalidResponse, roomID, err)
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// UserBookings fetches the bookings owned by userID.
func (c *Client) UserBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	var dtos []bookingDTO
	path := fmt.Sprintf("/api/bookings/user/%d", userID)
	if err := c.do(ctx, "user_bookings", http.MethodGet, path, nil, nil, &dtos); err != nil {
		return nil, err
	}

	bookings := make([]model.Booking, 0, len(dtos))
	for _, d := range dtos {
		b, err := d.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// CreateBooking submits a new booking. The service's answer is decoded when it looks like a
// booking; an undecodable success body still counts as success.
func (c *Client) CreateBooking(ctx context.Context, draft BookingDraft) (model.Booking, error) {
	payload := createBookingPayload{
		RoomID:         draft.RoomID,
		UserID:         draft.UserID,
		Title:          draft.Title,
		StartTime:      formatInstant(draft.Start),
		EndTime:        formatInstant(draft.End),
		AttendeesCount: draft.Attendees,
		Equipment:      parse.JoinEquipment(draft.Equipment),
	}

	var dto bookingDTO
	err := c.do(ctx, "create_booking", http.MethodPost, "/api/bookings", nil, payload, &dto)
	return c.mutationResult("create_booking", dto, err)
}

// UpdateBooking replaces the editable fields of booking id.
func (c *Client) UpdateBooking(ctx context.Context, id int64, draft BookingDraft) (model.Booking, error) {
	payload := updateBookingPayload{
		Title:          draft.Title,
		AttendeesCount: draft.Attendees,
		StartTime:      formatInstant(draft.Start),
		EndTime:        formatInstant(draft.End),
		Equipment:      parse.JoinEquipment(draft.Equipment),
		UserID:         draft.UserID,
	}

	var dto bookingDTO
	path := fmt.Sprintf("/api/bookings/%d", id)
	err := c.do(ctx, "update_booking", http.MethodPut, path, nil, payload, &dto)
	return c.mutationResult("update_booking", dto, err)
}

// DeleteBooking cancels booking id on behalf of userID.
func (c *Client) DeleteBooking(ctx context.Context, id, userID int64) error {
	q := url.Values{}
	q.Set("user", strconv.FormatInt(userID, 10))
	path := fmt.Sprintf("/api/bookings/%d", id)
	return c.do(ctx, "delete_booking", http.MethodDelete, path, q, nil, nil)
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	var dto userDTO
	payload := credentialsPayload{Email: email, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, "/api/users/login", nil, payload, &dto); err != nil {
		return model.User{}, err
	}
	return dto.toModel(), nil
}

// Signup registers a new account and returns it.
func (c *Client) Signup(ctx context.Context, name, email, password string) (model.User, error) {
	var dto userDTO
	payload := credentialsPayload{Name: name, Email: email, Password: password}
	if err := c.do(ctx, "signup", http.MethodPost, "/api/users/signup", nil, payload, &dto); err != nil {
		return model.User{}, err
	}
	return dto.toModel(), nil
}

func (c *Client) mutationResult(endpoint string, dto bookingDTO, err error) (model.Booking, error) {
	if errors.Is(err, ErrInvalidResponse) {
		c.log.Warn("booking accepted but response body not understood", zap.String("endpoint", endpoint), zap.Error(err))
		return model.Booking{}, nil
	}
	if err != nil {
		return model.Booking{}, err
	}
	if dto.StartTime == "" || dto.EndTime == "" {
		return model.Booking{ID: dto.ID, UserID: dto.UserID, RoomID: dto.RoomID, Title: dto.Title}, nil
	}
	b, convErr := dto.toModel()
	if convErr != nil {
		c.log.Warn("booking accepted but response body not understood", zap.String("endpoint", endpoint), zap.Error(convErr))
		return model.Booking{ID: dto.ID}, nil
	}
	return b, nil
}

// do sends one request and decodes a 2xx JSON body into out. Non-2xx answers become *APIError.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal request payload: %v", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(jsonBody)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(started))
		c.log.Warn("remote request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(started))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}

	c.log.Debug("remote request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw), Body: string(raw)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to unmarshal %s response: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

func roomsFromWire(dtos []roomDTO) []model.Room {
	rooms := make([]model.Room, 0, len(dtos))
	for _, d := range dtos {
		rooms = append(rooms, d.toModel())
	}
	return rooms
}
