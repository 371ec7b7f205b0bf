package booking

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/parse"
	"meeting-room-client/internal/remote"
	"meeting-room-client/internal/session"
)

// Service is the part of the remote client used by the booking sessions.
type Service interface {
	CreateBooking(ctx context.Context, draft remote.BookingDraft) (model.Booking, error)
	UpdateBooking(ctx context.Context, id int64, draft remote.BookingDraft) (model.Booking, error)
	UserBookings(ctx context.Context, userID int64) ([]model.Booking, error)
	DeleteBooking(ctx context.Context, id, userID int64) error
}

// RoomLookup resolves a room by id from the current room snapshot.
type RoomLookup interface {
	Room(id int64) (model.Room, bool)
}

// IdentitySource reports who is logged in.
type IdentitySource interface {
	Current() session.Identity
}

// State is the lifecycle position of a form.
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

// Mode tells whether an open form creates a booking or edits one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Field names accepted by SetField.
const (
	FieldTitle     = "title"
	FieldAttendees = "attendees"
	FieldStart     = "start"
	FieldEnd       = "end"
)

// Fields are the raw form inputs. Start and End hold local date-time input values.
type Fields struct {
	Title     string   `json:"title"`
	Attendees string   `json:"attendees"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Equipment []string `json:"equipment"`
}

func (f Fields) clone() Fields {
	out := f
	out.Equipment = append([]string{}, f.Equipment...)
	return out
}

// FormSnapshot is what a view needs to render the form.
type FormSnapshot struct {
	State     State       `json:"state"`
	Mode      Mode        `json:"mode,omitempty"`
	Room      *model.Room `json:"room,omitempty"`
	BookingID int64       `json:"booking_id,omitempty"`
	Fields    Fields      `json:"fields"`
	Duration  string      `json:"duration"`
}

// Form is the create/edit session of one booking.
type Form struct {
	svc      Service
	rooms    RoomLookup
	identity IdentitySource
	loc      *time.Location
	log      *zap.Logger

	mu        sync.Mutex
	state     State
	mode      Mode
	room      model.Room
	booking   model.Booking
	fields    Fields
	opened    uint64
	onCreated func(context.Context, model.Booking)
	onUpdated func(context.Context, model.Booking)
}

// NewForm creates a closed form. loc is the zone the date-time inputs are typed in.
func NewForm(svc Service, rooms RoomLookup, identity IdentitySource, loc *time.Location, log *zap.Logger) *Form {
	if loc == nil {
		loc = time.Local
	}
	return &Form{
		svc:      svc,
		rooms:    rooms,
		identity: identity,
		loc:      loc,
		log:      log,
		state:    StateClosed,
		fields:   Fields{Equipment: []string{}},
	}
}

// OnCreated registers the callback run after a successful create.
func (f *Form) OnCreated(fn func(context.Context, model.Booking)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onCreated = fn
}

// OnUpdated registers the callback run after a successful edit.
func (f *Form) OnUpdated(fn func(context.Context, model.Booking)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onUpdated = fn
}

// Open starts creating a booking for room with empty fields.
func (f *Form) Open(room model.Room) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmitting
	}
	f.openLocked(ModeCreate)
	f.room = room
	return nil
}

// OpenForEdit starts editing b with its current values.
func (f *Form) OpenForEdit(b model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrSubmitting
	}
	f.openLocked(ModeEdit)
	f.booking = b
	f.fields = Fields{
		Title:     b.Title,
		Attendees: strconv.Itoa(b.Attendees),
		Start:     parse.ToLocalInputValue(b.Start, f.loc),
		End:       parse.ToLocalInputValue(b.End, f.loc),
		Equipment: append([]string{}, b.Equipment...),
	}
	return nil
}

func (f *Form) openLocked(mode Mode) {
	f.opened++
	f.state = StateOpen
	f.mode = mode
	f.room = model.Room{}
	f.booking = model.Booking{}
	f.fields = Fields{Equipment: []string{}}
}

// SetField stores a raw input value. Nothing is validated until Submit.
func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	switch name {
	case FieldTitle:
		f.fields.Title = value
	case FieldAttendees:
		f.fields.Attendees = value
	case FieldStart:
		f.fields.Start = value
	case FieldEnd:
		f.fields.End = value
	default:
		return ErrUnknownField
	}
	return nil
}

// ToggleEquipment adds tag when absent and removes it when present. Only tags the room offers
// can be added; an edited booking whose room is not in the directory accepts any tag.
func (f *Form) ToggleEquipment(tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editableLocked(); err != nil {
		return err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrUnknownEquipment
	}

	for i, selected := range f.fields.Equipment {
		if selected == tag {
			f.fields.Equipment = append(f.fields.Equipment[:i:i], f.fields.Equipment[i+1:]...)
			return nil
		}
	}
	if room, known := f.roomLocked(); known && !room.Equipment.Contains(tag) {
		return ErrUnknownEquipment
	}
	f.fields.Equipment = append(f.fields.Equipment, tag)
	return nil
}

// Cancel closes the form without side effects. A submission already in flight still completes
// and still fires its callback on success.
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	f.state = StateClosed
	f.mode = ""
	f.room = model.Room{}
	f.booking = model.Booking{}
	f.fields = Fields{Equipment: []string{}}
}

// Snapshot returns the current form for display.
func (f *Form) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := FormSnapshot{
		State:  f.state,
		Mode:   f.mode,
		Fields: f.fields.clone(),
	}
	switch f.mode {
	case ModeCreate:
		room := f.room
		snap.Room = &room
	case ModeEdit:
		snap.BookingID = f.booking.ID
		if room, ok := f.rooms.Room(f.booking.RoomID); ok {
			snap.Room = &room
		}
	}
	if span, ok := parse.InputDuration(f.fields.Start, f.fields.End, f.loc); ok {
		snap.Duration = span.String()
	}
	return snap
}

// Submit validates the form and sends it. Validation failures send nothing and keep the form
// open. On success the form closes and the matching callback runs.
func (f *Form) Submit(ctx context.Context) (model.Booking, error) {
	f.mu.Lock()
	switch f.state {
	case StateClosed:
		f.mu.Unlock()
		return model.Booking{}, ErrFormClosed
	case StateSubmitting:
		f.mu.Unlock()
		return model.Booking{}, ErrSubmitting
	}

	draft, err := f.draftLocked()
	if err != nil {
		f.mu.Unlock()
		return model.Booking{}, err
	}
	mode := f.mode
	bookingID := f.booking.ID
	opened := f.opened
	f.state = StateSubmitting
	f.mu.Unlock()

	var result model.Booking
	if mode == ModeCreate {
		result, err = f.svc.CreateBooking(ctx, draft)
	} else {
		result, err = f.svc.UpdateBooking(ctx, bookingID, draft)
	}

	f.mu.Lock()
	current := f.opened == opened
	if err != nil {
		if current {
			f.state = StateOpen
		}
		f.mu.Unlock()
		f.log.Warn("booking submission failed", zap.String("mode", string(mode)), zap.Int64("room_id", draft.RoomID), zap.Error(err))
		return model.Booking{}, failure(ErrBookingFailed, err)
	}
	if current {
		f.opened++
		f.state = StateClosed
		f.mode = ""
		f.room = model.Room{}
		f.booking = model.Booking{}
		f.fields = Fields{Equipment: []string{}}
	}
	callback := f.onCreated
	if mode == ModeEdit {
		callback = f.onUpdated
	}
	f.mu.Unlock()

	if result.ID == 0 && mode == ModeEdit {
		result.ID = bookingID
	}
	f.log.Info("booking submitted", zap.String("mode", string(mode)), zap.Int64("booking_id", result.ID), zap.Int64("room_id", draft.RoomID))
	if callback != nil {
		callback(ctx, result)
	}
	return result, nil
}

// draftLocked applies the validation order: completeness, capacity, then time parsing.
func (f *Form) draftLocked() (remote.BookingDraft, error) {
	fields := f.fields
	title := strings.TrimSpace(fields.Title)
	if title == "" || strings.TrimSpace(fields.Attendees) == "" ||
		strings.TrimSpace(fields.Start) == "" || strings.TrimSpace(fields.End) == "" {
		return remote.BookingDraft{}, ErrIncompleteForm
	}
	if f.mode == ModeCreate && f.room.ID == 0 {
		return remote.BookingDraft{}, ErrIncompleteForm
	}
	attendees, err := strconv.Atoi(strings.TrimSpace(fields.Attendees))
	if err != nil || attendees <= 0 {
		return remote.BookingDraft{}, ErrIncompleteForm
	}

	roomID := f.room.ID
	if f.mode == ModeEdit {
		roomID = f.booking.RoomID
	}
	if room, known := f.roomLocked(); known && attendees > room.Capacity {
		return remote.BookingDraft{}, ErrCapacityExceeded
	}

	start, err := parse.ParseInputValue(fields.Start, f.loc)
	if err != nil {
		return remote.BookingDraft{}, err
	}
	end, err := parse.ParseInputValue(fields.End, f.loc)
	if err != nil {
		return remote.BookingDraft{}, err
	}

	user := f.identity.Current()
	if !user.LoggedIn() {
		return remote.BookingDraft{}, ErrNotLoggedIn
	}

	return remote.BookingDraft{
		RoomID:    roomID,
		UserID:    user.UserID,
		Title:     fields.Title,
		Attendees: attendees,
		Start:     start,
		End:       end,
		Equipment: append([]string{}, fields.Equipment...),
	}, nil
}

// roomLocked resolves the room the form books: the opened room in Create mode, the
// booking's room from the directory in Edit mode.
func (f *Form) roomLocked() (model.Room, bool) {
	if f.mode == ModeEdit {
		return f.rooms.Room(f.booking.RoomID)
	}
	return f.room, true
}

func (f *Form) editableLocked() error {
	switch f.state {
	case StateClosed:
		return ErrFormClosed
	case StateSubmitting:
		return ErrSubmitting
	}
	return nil
}
