package domain

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("misconfigured")
	ErrUpstream      = errors.New("upstream failure")

	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrReceiptFileNotFound = errors.New("receipt file not found")
)

// Error is the typed result of a failed operation. Kind is one of the
// sentinel errors above and decides the transport status at the boundary.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func NewValidation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func NewNotFound(message string, err error) error {
	return &Error{Kind: ErrNotFound, Message: message, Err: err}
}

func NewUnauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func NewMisconfigured(message string) error {
	return &Error{Kind: ErrMisconfigured, Message: message}
}

func NewUpstream(message string, err error) error {
	return &Error{Kind: ErrUpstream, Message: message, Err: err}
}
