package apierr

// Kind classifies an operation outcome for the transport layer. The HTTP
// status code is derived from it at the request boundary.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Error is the structured failure outcome of an inventory operation. Field is
// set for validation failures only; Details carries extra key/value context
// (e.g. required vs. actual role on a forbidden outcome).
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Validation is a bad-request outcome attributed to a single offending field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message, Field: field}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string, details map[string]any) *Error {
	return &Error{Kind: KindForbidden, Message: message, Details: details}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}
