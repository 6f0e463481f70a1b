package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// All of these are recoverable and user-facing; handlers map them to a
// notice plus a redirect back to the originating form. Only storage
// unavailability propagates as a plain error.
var (
	// ErrNotFound covers both "no such record" and "record not owned by
	// the caller" so responses never leak whether a resource exists.
	ErrNotFound = errors.New("not found")

	ErrInvalidDateFormat = errors.New("dates must be in YYYY-MM-DD format")
	ErrInvalidDateRange  = errors.New("check-out must be after check-in")
	ErrDateRangeConflict = errors.New("room is already booked for the selected dates")

	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrDuplicateHotelName = errors.New("a hotel with this name already exists")
	ErrDuplicateRoomNum   = errors.New("a room with this number already exists")

	// ErrAuthenticationFailed is deliberately generic: unknown email and
	// wrong password produce the identical message.
	ErrAuthenticationFailed = errors.New("invalid email or password")

	ErrAuthenticationRequired = errors.New("login required")
	ErrAuthorizationDenied    = errors.New("insufficient permissions")
)

// ValidationError carries per-field messages for missing or malformed
// form input.
type ValidationError struct {
	fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) Empty() bool { return len(e.fields) == 0 }

func (e *ValidationError) Fields() map[string][]string { return e.fields }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], "; ")))
	}
	return strings.Join(parts, ", ")
}

func IsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
