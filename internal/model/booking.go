package model

import "time"

// Booking is a reservation owned by a user. IDs are assigned by the remote service.
type Booking struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	RoomID    int64         `json:"room_id"`
	RoomName  string        `json:"room_name,omitempty"`
	Title     string        `json:"title"`
	Attendees int           `json:"attendees"`
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Equipment EquipmentTags `json:"equipment"`
}

