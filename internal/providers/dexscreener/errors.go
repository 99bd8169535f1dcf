package dexscreener

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus matches any *StatusError.
var ErrUpstreamStatus = errors.New("dexscreener returned non-2xx status")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Endpoint   Endpoint
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dexscreener %s: HTTP %d", e.Endpoint, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// StatusCode extracts the upstream HTTP status from err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
