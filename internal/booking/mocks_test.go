package booking

import (
	"context"
	"sync/atomic"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/remote"
	"meeting-room-client/internal/session"
)

// mockService is a mock implementation of the Service interface.
type mockService struct {
	CreateBookingFunc func(ctx context.Context, draft remote.BookingDraft) (model.Booking, error)
	UpdateBookingFunc func(ctx context.Context, id int64, draft remote.BookingDraft) (model.Booking, error)
	UserBookingsFunc  func(ctx context.Context, userID int64) ([]model.Booking, error)
	DeleteBookingFunc func(ctx context.Context, id, userID int64) error

	calls atomic.Int32
}

func (m *mockService) CreateBooking(ctx context.Context, draft remote.BookingDraft) (model.Booking, error) {
	m.calls.Add(1)
	return m.CreateBookingFunc(ctx, draft)
}

func (m *mockService) UpdateBooking(ctx context.Context, id int64, draft remote.BookingDraft) (model.Booking, error) {
	m.calls.Add(1)
	return m.UpdateBookingFunc(ctx, id, draft)
}

func (m *mockService) UserBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	m.calls.Add(1)
	return m.UserBookingsFunc(ctx, userID)
}

func (m *mockService) DeleteBooking(ctx context.Context, id, userID int64) error {
	m.calls.Add(1)
	return m.DeleteBookingFunc(ctx, id, userID)
}

type roomMap map[int64]model.Room

func (r roomMap) Room(id int64) (model.Room, bool) {
	room, ok := r[id]
	return room, ok
}

type fixedIdentity session.Identity

func (f fixedIdentity) Current() session.Identity {
	return session.Identity(f)
}

var testUser = fixedIdentity{UserID: 9, Name: "Ada", Email: "ada@example.com"}
