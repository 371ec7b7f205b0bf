package booking

import (
	"errors"
	"fmt"

	"meeting-room-client/internal/parse"
	"meeting-room-client/internal/remote"
)

var (
	ErrIncompleteForm   = errors.New("Please fill in all fields.")
	ErrCapacityExceeded = errors.New("Attendees exceed room capacity.")
	ErrBookingFailed    = errors.New("Booking failed.")
	ErrCancelFailed     = errors.New("Failed to cancel booking.")
	ErrFetchFailed      = errors.New("Failed to fetch bookings.")
	ErrNotConfirmed     = errors.New("Cancellation was not confirmed.")
	ErrUnknownEquipment = errors.New("Equipment is not available in this room.")
	ErrUnknownField     = errors.New("Unknown form field.")
	ErrUnknownBooking   = errors.New("Booking not found.")
	ErrNotLoggedIn      = errors.New("Please log in first.")
	ErrFormClosed       = errors.New("No booking form is open.")
	ErrSubmitting       = errors.New("The booking is being submitted.")
	// ErrSuperseded is returned when a newer load replaced the result of this one.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// networkMessage is shown for write failures that never reached the service.
const networkMessage = "Network error."

// ServerError carries the booking service's own explanation of a rejected request.
type ServerError struct {
	// Kind is ErrBookingFailed or ErrCancelFailed.
	Kind    error
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return e.Kind
}

// failure classifies a remote error as kind, keeping the service's message when it sent one.
func failure(kind, err error) error {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &ServerError{Kind: kind, Status: apiErr.Status, Message: apiErr.Message}
	}
	return fmt.Errorf("%w: %w", kind, err)
}

var userFacing = []error{
	ErrIncompleteForm,
	ErrCapacityExceeded,
	ErrNotConfirmed,
	ErrUnknownEquipment,
	ErrUnknownField,
	ErrUnknownBooking,
	ErrNotLoggedIn,
	ErrFormClosed,
	ErrSubmitting,
	ErrSuperseded,
	ErrBookingFailed,
	ErrCancelFailed,
	ErrFetchFailed,
}

// Message renders err as the text shown to the user: the service's message when present,
// a network notice for transport failures, otherwise the matching sentinel's text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	if errors.Is(err, remote.ErrTransport) {
		return networkMessage
	}
	if errors.Is(err, parse.ErrInvalidTimeFormat) {
		return "Please enter valid start and end times."
	}
	for _, sentinel := range userFacing {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
