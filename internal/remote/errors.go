package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the request could not be sent or its body could not be read.
	ErrTransport = errors.New("remote: transport failure")

	// ErrInvalidRequest is returned when a request payload cannot be encoded.
	ErrInvalidRequest = errors.New("remote: invalid request")

	// ErrInvalidResponse is returned when a successful response cannot be decoded.
	ErrInvalidResponse = errors.New("remote: invalid response")
)

// APIError is a non-2xx answer of the booking service.
type APIError struct {
	Status int
	// Message is the service's "error" field, empty when the body carried none.
	Message string
	// Body is the raw response body.
	Body string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("remote: unexpected status code %d", e.Status)
}

// ServerMessage extracts the service-provided error text from err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}
