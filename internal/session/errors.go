package session

import (
	"errors"
	"strings"

	"meeting-room-client/internal/remote"
)

var (
	ErrMissingCredentials = errors.New("Please fill in all fields.")
	ErrLoginFailed        = errors.New("Login failed.")
	ErrSignupFailed       = errors.New("Signup failed.")
)

// networkMessage is shown when the booking service could not be reached.
const networkMessage = "Network error"

// Message renders a Login or Signup failure for the user. The service's error string wins;
// an error body without one is shown as sent.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if body := strings.TrimSpace(apiErr.Body); body != "" {
			return body
		}
	}
	if errors.Is(err, remote.ErrTransport) {
		return networkMessage
	}
	for _, sentinel := range []error{ErrMissingCredentials, ErrSignupFailed, ErrLoginFailed} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
