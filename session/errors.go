package session

import "errors"

var (
	// ErrAuthenticationFailed indicates a rejected or malformed handshake.
	// Fatal to the session; no commands are accepted afterwards.
	ErrAuthenticationFailed = errors.New("session: authentication failed")

	// ErrProtocolViolation indicates a line that does not fit the current
	// protocol state. It aborts the command, not the session.
	ErrProtocolViolation = errors.New("session: unexpected line for current state")

	// ErrNotAuthenticated indicates a command attempted before the handshake
	// completed.
	ErrNotAuthenticated = errors.New("session: not authenticated")
)

// RemoteError is a failure the peer reported for one command. The session
// remains usable after it.
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string {
	return "session: remote failure: " + e.Reason
}
