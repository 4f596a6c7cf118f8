package apierr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a failure by cause. The client maps HTTP statuses and
// transport failures onto kinds so callers can branch without string matching.
type Kind int

// Failure kinds, from credential problems to transport-level faults.
const (
	KindUnknown Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindRateLimited
	KindServerFault
	KindNetwork
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindServerFault:
		return "server_fault"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. Use errors.Is against these to branch on
// failure cause; the concrete *Error matches the sentinel of its Kind.
var (
	ErrAuthentication = errors.New("langprompt: authentication failed")
	ErrAuthorization  = errors.New("langprompt: permission denied")
	ErrNotFound       = errors.New("langprompt: resource not found")
	ErrValidation     = errors.New("langprompt: validation failed")
	ErrRateLimited    = errors.New("langprompt: rate limit exceeded")
	ErrServerFault    = errors.New("langprompt: server error")
	ErrNetwork        = errors.New("langprompt: network error")
)

// Error is the single error type surfaced by the client. It carries a stable
// Kind, the machine-readable code and message from the server's error
// envelope, optional structured details, and the HTTP status when one was
// observed.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	Details    map[string]any
	Status     int
	RetryAfter time.Duration // server-provided minimum delay on 429, 0 if absent
	Err        error         // wrapped cause for transport-level failures
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code: %s)", msg, e.Code)
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s [HTTP %d]", msg, e.Status)
	}
	return "langprompt: " + msg
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel error corresponding to e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrAuthorization:
		return e.Kind == KindAuthorization
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrRateLimited:
		return e.Kind == KindRateLimited
	case ErrServerFault:
		return e.Kind == KindServerFault
	case ErrNetwork:
		return e.Kind == KindNetwork
	}
	return false
}

// Compile-time check that Error implements error.
var _ error = (*Error)(nil)

// New creates a client-side Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a client-side Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation Error with structured details.
func Validation(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// FromStatus maps an HTTP status and decoded error envelope onto an Error.
func FromStatus(status int, code, message string, details map[string]any) *Error {
	e := &Error{Code: code, Message: message, Details: details, Status: status}
	switch {
	case status == 401:
		e.Kind = KindAuthentication
	case status == 403:
		e.Kind = KindAuthorization
	case status == 404:
		e.Kind = KindNotFound
	case status == 400 || status == 422:
		e.Kind = KindValidation
	case status == 429:
		e.Kind = KindRateLimited
	case status >= 500:
		e.Kind = KindServerFault
	default:
		e.Kind = KindUnknown
	}
	return e
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether the transport may retry after err.
// Only network faults, server faults and rate-limit signals qualify;
// everything else surfaces immediately.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindServerFault, KindRateLimited:
		return true
	}
	return false
}

// IsNotFound reports whether err represents an absent resource.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsValidation reports whether err represents a malformed or ambiguous request.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
