package model

import "time"

// EquipmentTags is an ordered list of free-text equipment tags. Order and duplicates are kept as given.
type EquipmentTags []string

// Contains reports whether tag is one of the tags.
func (t EquipmentTags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Room is a read-only snapshot of a bookable meeting room.
type Room struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Capacity  int           `json:"capacity"`
	Equipment EquipmentTags `json:"equipment"`
}

// ScheduleSlot is one booked interval of a room's day.
type ScheduleSlot struct {
	RoomID int64     `json:"room_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Title  string    `json:"title"`
}
