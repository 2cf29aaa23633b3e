package services

import "errors"

// Kind classifies a service error so the HTTP layer can map it to a status.
type Kind string

const (
	KindValidation        Kind = "validation_failed"
	KindInvalidTransition Kind = "invalid_state_transition"
	KindMissingClient     Kind = "missing_client"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
)

// Error is the structured error surfaced to the API boundary: a kind, a
// message, and optionally the field the error relates to. Nothing in the
// service layer returns a bare error string.
type Error struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return string(e.Kind) + ": " + e.Field + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func InvalidTransition(message string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: message}
}

func MissingClient(message string) *Error {
	return &Error{Kind: KindMissingClient, Field: "client_id", Message: message}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Conflict(field, message string) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: message}
}

// KindOf extracts the Kind from err, or "" if err is not a service Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
