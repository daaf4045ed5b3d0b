package shared

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMovieNotFound      = fmt.Errorf("movie not found")
	ErrSessionNotFound    = fmt.Errorf("session not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// APIError is returned for every failed call to the movie API.
//
// Status is zero when the request never produced an HTTP response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("%v: %s", ErrAPIRequest, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%v: status %d (%s)", ErrAPIRequest, e.Status, http.StatusText(e.Status))
	default:
		return fmt.Sprintf("%v: status %d: %s", ErrAPIRequest, e.Status, e.Message)
	}
}

// Is reports a match against [ErrAPIRequest] so callers can test the category without a type assertion.
func (e *APIError) Is(target error) bool {
	return target == ErrAPIRequest
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an [APIError].
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is an [APIError] with status 401.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
