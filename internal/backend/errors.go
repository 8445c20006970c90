package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfigured means no remote endpoint was configured.
var ErrNotConfigured = errors.New("backend: remote url not configured")

// TransportError covers failures below the application protocol: network
// errors, 5xx responses and bodies that are not a JSON envelope. These are
// retried.
type TransportError struct {
	Action string
	Status int
	// Malformed is set when the server answered with something other than
	// an envelope, typically an HTML error page.
	Malformed bool
	Err       error
}

func (e *TransportError) Error() string {
	switch {
	case e.Malformed:
		return fmt.Sprintf("%s: malformed response (status %d): %v", e.Action, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: http status %d: %v", e.Action, e.Status, e.Err)
	default:
		return fmt.Sprintf("%s: transport: %v", e.Action, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// AppError is a well-formed error envelope returned by the server. It is
// never retried.
type AppError struct {
	Action  string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsApplication(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// IsMalformed reports a transport error caused by a non-envelope body.
func IsMalformed(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Malformed
}
