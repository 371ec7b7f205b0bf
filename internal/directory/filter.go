package directory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/parse"
)

// FilterByRange replaces the snapshot with the rooms free in [start, end]. Both values are
// local date-time inputs; a blank one sends nothing and leaves the directory unchanged.
func (d *Directory) FilterByRange(ctx context.Context, start, end string) ([]model.Room, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil, ErrIncompleteRange
	}
	startAt, err := parse.ParseInputValue(start, d.loc)
	if err != nil {
		return nil, err
	}
	endAt, err := parse.ParseInputValue(end, d.loc)
	if err != nil {
		return nil, err
	}

	seq := d.issue()

	rooms, err := d.source.AvailableRooms(ctx, startAt, endAt)
	if err != nil {
		d.log.Warn("filter error", zap.String("start", start), zap.String("end", end), zap.Error(err))
		return d.Rooms(), fmt.Errorf("%w: %w: %w", ErrFilterFailed, ErrFetchFailed, err)
	}
	return d.apply(seq, rooms, start, end)
}

// ResetFilter reloads every room, which clears the range once the reload lands.
func (d *Directory) ResetFilter(ctx context.Context) ([]model.Room, error) {
	return d.LoadAll(ctx)
}

// Range returns the range of the current snapshot, blank when unfiltered.
func (d *Directory) Range() (start, end string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rangeStart, d.rangeEnd
}
