package services

import "errors"

// ErrEmptyMessage is returned when a chat request carries no message. It is
// user input validation, not a failure, and maps to a 400 at the boundary.
var ErrEmptyMessage = errors.New("empty message")

// ErrServiceUnavailable is returned when required provider credentials were
// missing at startup. The chat route stays up but answers 503 without making
// any network call.
var ErrServiceUnavailable = errors.New("chat service unavailable")
