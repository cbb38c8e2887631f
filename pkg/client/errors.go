package client

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a network or non-2xx failure of a remote call
type TransportError struct {
	Method     string
	Path       string
	StatusCode int    // 0 when no response was received
	Body       string // response body, possibly truncated
	Err        error  // underlying network error, nil for HTTP failures
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err is a TransportError with the given status code
func IsStatus(err error, code int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == code
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
