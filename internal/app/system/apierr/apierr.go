// Package apierr defines the API error taxonomy and writes errors as JSON.
//
// Handlers return or construct *Error values; anything else reaching Writer
// is treated as internal. Response bodies look like:
//
//	{"error":"validation","message":"…","fields":{"title":"…"},"request_id":"…"}
//
// The "details" member carries the wrapped error text and is only emitted
// when the Writer was built with showDetails (non-production).
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/roadmaphub/internal/app/system/requestid"
	"go.uber.org/zap"
)

// Kind is the machine-stable error category sent to clients.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindParseFailed    Kind = "parse_failed"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
	KindUnavailable    Kind = "unavailable"
)

// Status maps a kind to its HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindParseFailed:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified API error.
type Error struct {
	Kind    Kind
	Message string
	// Fields maps a field path (e.g. "steps[2].title") to a message.
	Fields map[string]string
	// Extra members merged into the response body.
	Extra map[string]any
	// RetryAfter, when set, is sent as the Retry-After header.
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func BadID(field string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid " + field, Fields: map[string]string{field: "must be a 24-character hex id"}}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

func Unavailable(msg string) *Error {
	return &Error{Kind: KindUnavailable, Message: msg}
}

func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: "too many requests", RetryAfter: retryAfter}
}

// Writer renders errors and logs the ones that are the server's fault.
type Writer struct {
	log         *zap.Logger
	showDetails bool
}

// NewWriter returns a Writer. showDetails should be false in production.
func NewWriter(logger *zap.Logger, showDetails bool) *Writer {
	return &Writer{log: logger, showDetails: showDetails}
}

// Error writes err as a JSON error response.
func (ew *Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = Internal("internal server error", err)
	}

	rid := requestid.FromContext(r.Context())
	status := Status(ae.Kind)

	if status >= http.StatusInternalServerError && ae.Kind != KindUnavailable {
		ew.log.Error("request failed",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(ae.Kind)),
			zap.String("message", ae.Message),
			zap.Error(ae.Err))
	} else {
		ew.log.Debug("request rejected",
			zap.String("request_id", rid),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(ae.Kind)),
			zap.String("message", ae.Message))
	}

	body := map[string]any{
		"error":   ae.Kind,
		"message": ae.Message,
	}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	for k, v := range ae.Extra {
		body[k] = v
	}
	if rid != "" {
		body["request_id"] = rid
	}
	if ew.showDetails && ae.Err != nil {
		body["details"] = ae.Err.Error()
	}
	if ae.RetryAfter > 0 {
		secs := int(ae.RetryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	WriteJSON(w, status, body)
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
