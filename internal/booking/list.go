package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/parse"
)

// Editor opens a booking for editing. *Form implements it.
type Editor interface {
	OpenForEdit(b model.Booking) error
}

// ConfirmFunc asks the user to confirm cancelling b.
type ConfirmFunc func(b model.Booking) bool

// View is a booking as the list shows it.
type View struct {
	model.Booking
	Ongoing  bool   `json:"ongoing"`
	Duration string `json:"duration"`
}

// List holds the bookings of the current user.
type List struct {
	svc    Service
	editor Editor
	log    *zap.Logger

	mu       sync.Mutex
	userID   int64
	loaded   bool
	seq      uint64
	bookings []model.Booking
}

// NewList creates an empty list. BeginEdit hands bookings to editor.
func NewList(svc Service, editor Editor, log *zap.Logger) *List {
	return &List{
		svc:      svc,
		editor:   editor,
		log:      log,
		bookings: []model.Booking{},
	}
}

// Load shows the bookings of userID. Nothing is fetched when userID is already loaded; a zero
// userID empties the list. Switching users drops the previous user's bookings before fetching.
func (l *List) Load(ctx context.Context, userID int64) ([]model.Booking, error) {
	l.mu.Lock()
	if userID == l.userID && l.loaded {
		out := l.snapshotLocked()
		l.mu.Unlock()
		return out, nil
	}
	if userID != l.userID {
		l.bookings = []model.Booking{}
	}
	l.userID = userID
	l.loaded = false
	l.mu.Unlock()

	return l.fetch(ctx, userID)
}

// Reload refetches the bookings of the current user.
func (l *List) Reload(ctx context.Context) ([]model.Booking, error) {
	l.mu.Lock()
	userID := l.userID
	l.mu.Unlock()
	return l.fetch(ctx, userID)
}

func (l *List) fetch(ctx context.Context, userID int64) ([]model.Booking, error) {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	if userID == 0 {
		l.bookings = []model.Booking{}
		l.loaded = true
		l.mu.Unlock()
		return []model.Booking{}, nil
	}
	l.mu.Unlock()

	bookings, err := l.svc.UserBookings(ctx, userID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.log.Warn("error fetching bookings", zap.Int64("user_id", userID), zap.Error(err))
		return l.snapshotLocked(), fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if seq != l.seq || userID != l.userID {
		return l.snapshotLocked(), ErrSuperseded
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	l.bookings = bookings
	l.loaded = true
	return l.snapshotLocked(), nil
}

// UserID is the user whose bookings the list shows.
func (l *List) UserID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userID
}

// Bookings returns a copy of the loaded bookings.
func (l *List) Bookings() []model.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Views decorates the loaded bookings for display at now.
func (l *List) Views(now time.Time) []View {
	bookings := l.Bookings()
	views := make([]View, 0, len(bookings))
	for _, b := range bookings {
		v := View{Booking: b, Ongoing: parse.IsOngoing(b.Start, b.End, now)}
		if span, ok := parse.Duration(b.Start, b.End); ok {
			v.Duration = span.String()
		}
		views = append(views, v)
	}
	return views
}

// Ongoing returns the loaded bookings running at now.
func (l *List) Ongoing(now time.Time) []model.Booking {
	var out []model.Booking
	for _, b := range l.Bookings() {
		if parse.IsOngoing(b.Start, b.End, now) {
			out = append(out, b)
		}
	}
	return out
}

// CancelBooking deletes booking id after confirm agrees. On success the booking leaves the
// list and the other bookings keep their order.
func (l *List) CancelBooking(ctx context.Context, id int64, confirm ConfirmFunc) error {
	l.mu.Lock()
	b, ok := l.findLocked(id)
	userID := l.userID
	l.mu.Unlock()
	if !ok {
		return ErrUnknownBooking
	}
	if confirm == nil || !confirm(b) {
		return ErrNotConfirmed
	}

	if err := l.svc.DeleteBooking(ctx, id, userID); err != nil {
		l.log.Warn("error cancelling booking", zap.Int64("booking_id", id), zap.Error(err))
		return failure(ErrCancelFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]model.Booking, 0, len(l.bookings))
	for _, existing := range l.bookings {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	l.bookings = kept
	l.log.Info("booking cancelled", zap.Int64("booking_id", id))
	return nil
}

// BeginEdit opens booking id in the form.
func (l *List) BeginEdit(id int64) error {
	l.mu.Lock()
	b, ok := l.findLocked(id)
	l.mu.Unlock()
	if !ok {
		return ErrUnknownBooking
	}
	return l.editor.OpenForEdit(b)
}

func (l *List) findLocked(id int64) (model.Booking, bool) {
	for _, b := range l.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return model.Booking{}, false
}

func (l *List) snapshotLocked() []model.Booking {
	out := make([]model.Booking, len(l.bookings))
	copy(out, l.bookings)
	return out
}
