// Package apperr defines the error kinds shared by the service core. These
// structured values let higher layers such as handlers distinguish between
// failure scenarios without the core knowing anything about HTTP. For
// example, KindNotFound covers both a missing entity and a missing
// foreign-key target, while KindConflict signals that a delete cannot
// proceed because other records still reference the row.
package apperr

import "errors"

// Kind classifies an error for boundary translation. The core returns
// kinds; only the transport layer maps them to status codes.
type Kind int

const (
	KindInternal Kind = iota // unexpected failure, never detailed to clients
	KindValidation
	KindDuplicateCredential
	KindInvalidCredential
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Error carries a kind, an optional entity label (for not-found and
// conflict cases) and a client-safe message.
type Error struct {
	Kind    Kind
	Entity  string
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf extracts the kind from err, or KindInternal when err is not an
// *Error. A nil err has no kind; callers check for nil first.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Validation reports malformed or missing input.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// DuplicateCredential reports that an email or username is already taken.
func DuplicateCredential(msg string) *Error {
	return &Error{Kind: KindDuplicateCredential, Message: msg}
}

// InvalidCredential reports a failed login. The same value is used for an
// unknown username and a wrong password so responses cannot be used to
// enumerate accounts.
func InvalidCredential(msg string) *Error {
	return &Error{Kind: KindInvalidCredential, Message: msg}
}

// Unauthenticated reports a missing, malformed, expired or otherwise
// unverifiable bearer token, or a token whose subject no longer exists.
func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Forbidden reports an authenticated but inactive principal.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports that the entity named by label does not exist. The
// label is a human label such as "Patient", so the message matches the
// public contract ("Patient not found").
func NotFound(label string) *Error {
	return &Error{Kind: KindNotFound, Entity: label, Message: label + " not found"}
}

// Conflict reports a state conflict, such as deleting a row that other
// records still reference.
func Conflict(label, msg string) *Error {
	return &Error{Kind: KindConflict, Entity: label, Message: msg}
}
