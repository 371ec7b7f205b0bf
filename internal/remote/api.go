package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"meeting-room-client/internal/model"
	"meeting-room-client/internal/parse"
)

// flexInt accepts both JSON numbers and numeric strings; the service is not consistent about it.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

type roomDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Capacity  flexInt `json:"capacity"`
	Equipment *string `json:"equipment"`
}

type slotDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Title     string `json:"title"`
}

type bookingDTO struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	RoomID         int64   `json:"room_id"`
	RoomName       string  `json:"room_name"`
	Title          string  `json:"title"`
	AttendeesCount flexInt `json:"attendees_count"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Equipment      *string `json:"equipment"`
}

type userDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type createBookingPayload struct {
	RoomID         int64  `json:"room_id"`
	UserID         int64  `json:"user_id"`
	Title          string `json:"title"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	AttendeesCount int    `json:"attendees_count"`
	Equipment      string `json:"equipment"`
}

type updateBookingPayload struct {
	Title          string `json:"title"`
	AttendeesCount int    `json:"attendees_count"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Equipment      string `json:"equipment"`
	UserID         int64  `json:"user_id"`
}

type credentialsPayload struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// errorBody is the failure shape of the service: {"error": "..."}.
type errorBody struct {
	Error json.RawMessage `json:"error"`
}

// BookingDraft is what the client submits when creating or updating a booking.
type BookingDraft struct {
	RoomID    int64
	UserID    int64
	Title     string
	Attendees int
	Start     time.Time
	End       time.Time
	Equipment []string
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseInstant reads a service timestamp. Values without an offset are UTC.
func parseInstant(s string) (time.Time, error) {
	return parse.ParseInputValue(s, time.UTC)
}

func equipmentFromWire(raw *string) model.EquipmentTags {
	if raw == nil {
		return model.EquipmentTags{}
	}
	return model.EquipmentTags(parse.EquipmentTags(*raw))
}

func (d roomDTO) toModel() model.Room {
	return model.Room{
		ID:        d.ID,
		Name:      d.Name,
		Capacity:  int(d.Capacity),
		Equipment: equipmentFromWire(d.Equipment),
	}
}

func (d slotDTO) toModel(roomID int64) (model.ScheduleSlot, error) {
	start, err := parseInstant(d.StartTime)
	if err != nil {
		return model.ScheduleSlot{}, err
	}
	end, err := parseInstant(d.EndTime)
	if err != nil {
		return model.ScheduleSlot{}, err
	}
	return model.ScheduleSlot{RoomID: roomID, Start: start, End: end, Title: d.Title}, nil
}

func (d bookingDTO) toModel() (model.Booking, error) {
	start, err := parseInstant(d.StartTime)
	if err != nil {
		return model.Booking{}, fmt.Errorf("booking %d start_time: %w", d.ID, err)
	}
	end, err := parseInstant(d.EndTime)
	if err != nil {
		return model.Booking{}, fmt.Errorf("booking %d end_time: %w", d.ID, err)
	}
	return model.Booking{
		ID:        d.ID,
		UserID:    d.UserID,
		RoomID:    d.RoomID,
		RoomName:  d.RoomName,
		Title:     d.Title,
		Attendees: int(d.AttendeesCount),
		Start:     start,
		End:       end,
		Equipment: equipmentFromWire(d.Equipment),
	}, nil
}

func (d userDTO) toModel() model.User {
	return model.User{ID: d.ID, Name: d.Name, Email: d.Email}
}

// errorMessage returns the "error" field of a failure body. A non-string field is
// returned as its JSON text.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	raw := bytes.TrimSpace(eb.Error)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
