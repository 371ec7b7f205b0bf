package directory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"meeting-room-client/internal/model"
)

// RoomSource is the part of the remote client the directory reads from.
type RoomSource interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
	AvailableRooms(ctx context.Context, start, end time.Time) ([]model.Room, error)
	TodaySchedule(ctx context.Context, roomID int64) ([]model.ScheduleSlot, error)
}

// ScheduleView is the visible state of one room's daily schedule.
type ScheduleView struct {
	RoomID  int64                `json:"room_id"`
	Visible bool                 `json:"visible"`
	Loaded  bool                 `json:"loaded"`
	Slots   []model.ScheduleSlot `json:"slots"`
}

// Directory holds the room snapshot shown to the user, the per-room schedule panels and the
// availability filter. Every method is safe for concurrent use; no lock is held while a request
// is in flight.
type Directory struct {
	source RoomSource
	loc    *time.Location
	log    *zap.Logger

	// schedules caches fetched slots by room id until the next snapshot replacement.
	schedules *cache.Cache

	mu         sync.Mutex
	rooms      []model.Room
	issued     uint64
	visible    map[int64]bool
	generation map[int64]uint64
	lastGen    uint64
	rangeStart string
	rangeEnd   string
}

// New creates an empty directory. loc is used to read the filter inputs.
func New(source RoomSource, loc *time.Location, log *zap.Logger) *Directory {
	if loc == nil {
		loc = time.Local
	}
	return &Directory{
		source:     source,
		loc:        loc,
		log:        log,
		schedules:  cache.New(cache.NoExpiration, 0),
		rooms:      []model.Room{},
		visible:    make(map[int64]bool),
		generation: make(map[int64]uint64),
	}
}

// LoadAll replaces the snapshot with every room and clears the filter range. On failure the
// previous snapshot and range stay.
func (d *Directory) LoadAll(ctx context.Context) ([]model.Room, error) {
	seq := d.issue()

	rooms, err := d.source.ListRooms(ctx)
	if err != nil {
		d.log.Warn("error fetching rooms", zap.Error(err))
		return d.Rooms(), fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return d.apply(seq, rooms, "", "")
}

// Rooms returns a copy of the current snapshot.
func (d *Directory) Rooms() []model.Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Room looks a room up in the current snapshot.
func (d *Directory) Room(id int64) (model.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, r := range d.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return model.Room{}, false
}

// ToggleSchedule flips the visibility of a room's schedule. Showing it fetches today's
// bookings the first time only; later shows reuse the fetched slots.
func (d *Directory) ToggleSchedule(ctx context.Context, roomID int64) (ScheduleView, error) {
	key := scheduleKey(roomID)

	d.mu.Lock()
	d.lastGen++
	gen := d.lastGen
	d.generation[roomID] = gen
	visible := !d.visible[roomID]
	d.visible[roomID] = visible
	if !visible {
		d.mu.Unlock()
		return ScheduleView{RoomID: roomID, Slots: []model.ScheduleSlot{}}, nil
	}
	if cached, ok := d.schedules.Get(key); ok {
		d.mu.Unlock()
		return ScheduleView{RoomID: roomID, Visible: true, Loaded: true, Slots: copySlots(cached.([]model.ScheduleSlot))}, nil
	}
	d.mu.Unlock()

	slots, err := d.source.TodaySchedule(ctx, roomID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.log.Warn("failed to fetch schedule", zap.Int64("room_id", roomID), zap.Error(err))
		return ScheduleView{RoomID: roomID, Visible: d.visible[roomID], Slots: []model.ScheduleSlot{}}, fmt.Errorf("%w: %w: %w", ErrScheduleFailed, ErrFetchFailed, err)
	}
	if d.generation[roomID] != gen {
		return d.scheduleLocked(roomID), ErrSuperseded
	}
	d.schedules.Set(key, slots, cache.NoExpiration)
	return ScheduleView{RoomID: roomID, Visible: true, Loaded: true, Slots: copySlots(slots)}, nil
}

// Schedule returns the current state of a room's schedule panel without fetching.
func (d *Directory) Schedule(roomID int64) ScheduleView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scheduleLocked(roomID)
}

func (d *Directory) scheduleLocked(roomID int64) ScheduleView {
	view := ScheduleView{RoomID: roomID, Visible: d.visible[roomID], Slots: []model.ScheduleSlot{}}
	if !view.Visible {
		return view
	}
	if cached, ok := d.schedules.Get(scheduleKey(roomID)); ok {
		view.Loaded = true
		view.Slots = copySlots(cached.([]model.ScheduleSlot))
	}
	return view
}

// issue hands out the sequence token of a new snapshot request.
func (d *Directory) issue() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.issued++
	return d.issued
}

// apply installs rooms and the range they were filtered by if seq is still the newest issued
// request. A blank range marks the unfiltered list.
func (d *Directory) apply(seq uint64, rooms []model.Room, start, end string) ([]model.Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.issued {
		d.log.Debug("dropping superseded room snapshot", zap.Uint64("seq", seq), zap.Uint64("newest", d.issued))
		return d.snapshotLocked(), ErrSuperseded
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	d.rooms = rooms
	d.rangeStart, d.rangeEnd = start, end
	d.resetSchedulesLocked()
	return d.snapshotLocked(), nil
}

// resetSchedulesLocked hides every schedule and forgets fetched slots. Pending fetches are
// dropped because their generation no longer matches.
func (d *Directory) resetSchedulesLocked() {
	d.schedules.Flush()
	d.visible = make(map[int64]bool)
	d.generation = make(map[int64]uint64)
}

func (d *Directory) snapshotLocked() []model.Room {
	out := make([]model.Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

func scheduleKey(roomID int64) string {
	return strconv.FormatInt(roomID, 10)
}

func copySlots(slots []model.ScheduleSlot) []model.ScheduleSlot {
	out := make([]model.ScheduleSlot, len(slots))
	copy(out, slots)
	return out
}
