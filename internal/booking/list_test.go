package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/remote"
)

func sampleBookings() []model.Booking {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []model.Booking{
		{ID: 41, UserID: 9, RoomID: 1, Title: "A", Attendees: 2, Start: base, End: base.Add(time.Hour)},
		{ID: 42, UserID: 9, RoomID: 1, Title: "B", Attendees: 3, Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour)},
		{ID: 43, UserID: 9, RoomID: 2, Title: "C", Attendees: 6, Start: base.Add(4 * time.Hour), End: base.Add(4*time.Hour + 45*time.Minute)},
	}
}

func TestList_LoadFetchesOncePerUser(t *testing.T) {
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
		assert.Equal(t, int64(9), userID)
		return sampleBookings(), nil
	}}
	l := NewList(svc, nil, zap.NewNop())

	bookings, err := l.Load(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, bookings, 3)

	_, err = l.Load(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int32(1), svc.calls.Load())

	_, err = l.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), svc.calls.Load())
}

func TestList_LoadWithoutUser(t *testing.T) {
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
		return sampleBookings(), nil
	}}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	bookings, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NotNil(t, bookings)
	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestList_LoadFailureKeepsState(t *testing.T) {
	fail := false
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
		if fail {
			return nil, errors.New("connection reset")
		}
		return sampleBookings(), nil
	}}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	fail = true
	bookings, err := l.Reload(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Len(t, bookings, 3)
	assert.Len(t, l.Bookings(), 3)
}

func TestList_UserSwitchFailureDropsPreviousBookings(t *testing.T) {
	svc := &mockService{
		UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
			if userID == 9 {
				return sampleBookings(), nil
			}
			return nil, errors.New("connection reset")
		},
		DeleteBookingFunc: func(ctx context.Context, id, userID int64) error {
			t.Errorf("unexpected delete of booking %d for user %d", id, userID)
			return nil
		},
	}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	bookings, err := l.Load(context.Background(), 10)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Empty(t, bookings)
	assert.Equal(t, int64(10), l.UserID())
	assert.Empty(t, l.Views(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)))

	err = l.CancelBooking(context.Background(), 42, func(model.Booking) bool { return true })
	assert.ErrorIs(t, err, ErrUnknownBooking)
}

func TestList_CancelBookingKeepsOrder(t *testing.T) {
	svc := &mockService{
		UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) { return sampleBookings(), nil },
		DeleteBookingFunc: func(ctx context.Context, id, userID int64) error {
			assert.Equal(t, int64(42), id)
			assert.Equal(t, int64(9), userID)
			return nil
		},
	}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	var asked model.Booking
	err = l.CancelBooking(context.Background(), 42, func(b model.Booking) bool {
		asked = b
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, "B", asked.Title)

	var ids []int64
	for _, b := range l.Bookings() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{41, 43}, ids)
}

func TestList_CancelBookingNotConfirmed(t *testing.T) {
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) { return sampleBookings(), nil }}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	err = l.CancelBooking(context.Background(), 42, func(model.Booking) bool { return false })
	assert.ErrorIs(t, err, ErrNotConfirmed)
	err = l.CancelBooking(context.Background(), 42, nil)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.ErrorIs(t, l.CancelBooking(context.Background(), 7, func(model.Booking) bool { return true }), ErrUnknownBooking)

	assert.Equal(t, int32(1), svc.calls.Load())
	assert.Len(t, l.Bookings(), 3)
}

func TestList_CancelBookingFailure(t *testing.T) {
	testCases := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "server message", err: &remote.APIError{Status: 403, Message: "Not your booking"}, wantMsg: "Not your booking"},
		{name: "no message", err: &remote.APIError{Status: 500}, wantMsg: "Failed to cancel booking."},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{
				UserBookingsFunc:  func(ctx context.Context, userID int64) ([]model.Booking, error) { return sampleBookings(), nil },
				DeleteBookingFunc: func(ctx context.Context, id, userID int64) error { return tc.err },
			}
			l := NewList(svc, nil, zap.NewNop())
			_, err := l.Load(context.Background(), 9)
			require.NoError(t, err)

			err = l.CancelBooking(context.Background(), 42, func(model.Booking) bool { return true })
			assert.ErrorIs(t, err, ErrCancelFailed)
			assert.Equal(t, tc.wantMsg, Message(err))
			assert.Len(t, l.Bookings(), 3)
		})
	}
}

func TestList_BeginEditAndReloadAfterUpdate(t *testing.T) {
	version := 0
	svc := &mockService{
		UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
			bookings := sampleBookings()
			if version > 0 {
				bookings[1].Title = "B (edited)"
			}
			return bookings, nil
		},
		UpdateBookingFunc: func(ctx context.Context, id int64, draft remote.BookingDraft) (model.Booking, error) {
			version++
			return model.Booking{ID: id}, nil
		},
	}

	form := NewForm(svc, roomMap{1: room1}, testUser, time.UTC, zap.NewNop())
	list := NewList(svc, form, zap.NewNop())
	form.OnUpdated(func(ctx context.Context, b model.Booking) {
		_, err := list.Reload(ctx)
		assert.NoError(t, err)
	})

	_, err := list.Load(context.Background(), 9)
	require.NoError(t, err)

	require.NoError(t, list.BeginEdit(42))
	snap := form.Snapshot()
	assert.Equal(t, ModeEdit, snap.Mode)
	assert.Equal(t, "B", snap.Fields.Title)
	assert.Equal(t, "2024-01-01T11:00", snap.Fields.Start)

	require.NoError(t, form.SetField(FieldTitle, "B (edited)"))
	_, err = form.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "B (edited)", list.Bookings()[1].Title)
	assert.ErrorIs(t, list.BeginEdit(999), ErrUnknownBooking)
}

func TestList_ViewsAndOngoing(t *testing.T) {
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) { return sampleBookings(), nil }}
	l := NewList(svc, nil, zap.NewNop())
	_, err := l.Load(context.Background(), 9)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	views := l.Views(now)
	require.Len(t, views, 3)
	assert.False(t, views[0].Ongoing)
	assert.True(t, views[1].Ongoing)
	assert.Equal(t, "1 hr 0 mins", views[1].Duration)
	assert.Equal(t, "45 mins", views[2].Duration)

	ongoing := l.Ongoing(now)
	require.Len(t, ongoing, 1)
	assert.Equal(t, int64(42), ongoing[0].ID)
}

func TestList_StaleLoadDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := &mockService{UserBookingsFunc: func(ctx context.Context, userID int64) ([]model.Booking, error) {
		if userID == 9 {
			close(started)
			<-release
			return sampleBookings(), nil
		}
		return []model.Booking{{ID: 100, UserID: userID}}, nil
	}}
	l := NewList(svc, nil, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := l.Load(context.Background(), 9)
		done <- err
	}()
	<-started

	bookings, err := l.Load(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, bookings, 1)

	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, int64(100), l.Bookings()[0].ID)
	assert.Equal(t, int64(10), l.UserID())
}
