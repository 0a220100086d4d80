// Package apperr defines the error kinds surfaced at the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
	KindProvider
	KindProviderTimeout
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel comparisons survive wrapping and copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// HTTPStatus returns the response status for the error kind.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindTooManyRequests:
		return fiber.StatusTooManyRequests
	case KindProvider:
		return fiber.StatusBadGateway
	case KindProviderTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// With returns a copy of e carrying a different message.
func (e *Error) With(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

func newErr(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: "validation_error", Message: message, Fields: fields}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "forbidden", Message: message}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "Internal server error", Err: cause}
}

func Internalf(format string, args ...any) *Error {
	return Internal(fmt.Errorf(format, args...))
}

// Domain sentinels.
var (
	ErrEventNotFound     = newErr(KindNotFound, "event_not_found", "Event not found")
	ErrBookingNotFound   = newErr(KindNotFound, "booking_not_found", "Booking not found")
	ErrUserNotFound      = newErr(KindNotFound, "user_not_found", "User not found")
	ErrAlreadyApplied    = newErr(KindConflict, "already_applied", "You have already applied to this event")
	ErrNoAvailableSlots  = newErr(KindValidation, "no_available_slots", "No available slots for this event")
	ErrServiceMismatch   = newErr(KindValidation, "service_mismatch", "Your services do not match the event requirements")
	ErrInvalidStatus     = newErr(KindValidation, "invalid_status", "Invalid status")
	ErrInvalidTransition = newErr(KindValidation, "invalid_transition", "Status transition is not allowed")
	ErrPhoneTaken        = newErr(KindConflict, "phone_taken", "Phone number already registered")
	ErrEmailTaken        = newErr(KindConflict, "email_taken", "Email already registered")
	ErrInvalidCredential = newErr(KindValidation, "invalid_credentials", "Invalid credentials")
	ErrAccountInactive   = newErr(KindValidation, "account_inactive", "Account is deactivated. Please contact support.")

	ErrSessionNotFound = newErr(KindNotFound, "session_not_found", "OTP session not found")
	ErrSessionExpired  = newErr(KindValidation, "session_expired", "OTP has expired. Please request a new one.")
	ErrInvalidCode     = &Error{Kind: KindProvider, Code: "invalid_code", Message: "Invalid OTP", Status: fiber.StatusBadRequest}
	ErrTooManyAttempts = newErr(KindTooManyRequests, "too_many_attempts", "Too many attempts. Please try again later.")
	ErrProvider        = newErr(KindProvider, "provider_error", "Failed to deliver OTP")
	ErrProviderTimeout = newErr(KindProviderTimeout, "provider_timeout", "OTP provider timed out")
)

// As extracts an *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
