package conversation

import "errors"

var (
	ErrNoProduct     = errors.New("a product must be selected to start a conversation")
	ErrBlankMessage  = errors.New("message must not be blank")
	ErrBusy          = errors.New("a response is already pending")
	ErrSessionClosed = errors.New("conversation closed")
)

// SessionError carries the cause of a failed round trip. The cause never enters history.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return "ask failed: " + e.Err.Error()
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
