package directory

import "errors"

var (
	ErrIncompleteRange = errors.New("Please select both times.")
	// ErrFetchFailed matches every failed read of the booking service.
	ErrFetchFailed    = errors.New("Failed to fetch rooms.")
	ErrFilterFailed   = errors.New("Failed to fetch available rooms.")
	ErrScheduleFailed = errors.New("Failed to fetch room schedule.")
	// ErrSuperseded is returned when a newer request replaced the result of this one.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Message renders err as the text shown to the user, preferring the most specific failure.
func Message(err error) string {
	for _, sentinel := range []error{ErrIncompleteRange, ErrFilterFailed, ErrScheduleFailed, ErrFetchFailed, ErrSuperseded} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
