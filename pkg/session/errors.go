package session

import "errors"

// Reason classifies a SessionError
type Reason string

const (
	ReasonNoRefreshToken Reason = "no refresh token"
	ReasonSessionChanged Reason = "session changed during refresh"
)

// ErrNoRefreshToken is matched by errors.Is for refresh attempts made
// without a held refresh token
var ErrNoRefreshToken = &SessionError{Reason: ReasonNoRefreshToken}

// ErrSessionChanged is returned when a login or logout replaced the session
// while a refresh was in flight. The refresh response is discarded.
var ErrSessionChanged = &SessionError{Reason: ReasonSessionChanged}

// SessionError is raised locally by the session manager and never reaches the network
type SessionError struct {
	Reason Reason
}

func (e *SessionError) Error() string {
	return "session: " + string(e.Reason)
}

// Is matches any SessionError with the same reason
func (e *SessionError) Is(target error) bool {
	var other *SessionError
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}
