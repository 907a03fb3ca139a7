package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a failed call for branching by callers.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means the server could not be reached.
	KindNetwork
	// KindTimeout means the client-side timeout tripped.
	KindTimeout
	// KindUnauthorized is HTTP 401; the stored credential has been cleared.
	KindUnauthorized
	// KindForbidden is HTTP 403, usually an account awaiting approval.
	KindForbidden
	// KindNotFound is HTTP 404.
	KindNotFound
	// KindValidation is HTTP 400, 409 or 422.
	KindValidation
	// KindServer is any 5xx.
	KindServer
	// KindRefused is a 2xx response whose ok flag is false.
	KindRefused
	// KindDecode is a response body that does not match the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindRefused:
		return "refused"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// KindForStatus maps an HTTP status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	}
	return KindUnknown
}

// APIError is returned by the transport and resource layers for every failed call.
type APIError struct {
	Kind Kind
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Message is the server-supplied message, if any.
	Message string
	// Op names the failed operation, e.g. "GET /home/feed".
	Op string
	// Fallback is used by Error when the server supplied no message.
	Fallback string
	// Err is the underlying cause for network, timeout and decode failures.
	Err error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Fallback != "":
		return e.Fallback
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *APIError) Unwrap() error { return e.Err }

// WithFallback sets the fallback message on an *APIError that has none and
// returns err. Other errors are returned untouched.
func WithFallback(err error, fallback string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Fallback == "" {
		apiErr.Fallback = fallback
	}
	return err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the server-supplied message carried by err, or "".
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// GenericMessage is shown when nothing more specific is known about a failure.
const GenericMessage = "Something went wrong. Please try again."

// UserMessage turns err into copy suitable for showing to a person.
// A server-supplied message always wins.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return GenericMessage
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	switch apiErr.Status {
	case http.StatusBadRequest:
		return "Invalid request. Please check your details."
	case http.StatusConflict:
		return "An account with this email or mobile already exists."
	case http.StatusInternalServerError:
		return "Server error. Please try again in a moment."
	case http.StatusServiceUnavailable:
		return "Server is starting up. Please try again in a few seconds."
	}
	switch apiErr.Kind {
	case KindTimeout:
		return "Request timed out. Please check your connection and try again."
	case KindNetwork:
		return "Cannot reach server. Check your internet connection and try again."
	}
	if apiErr.Fallback != "" {
		return apiErr.Fallback
	}
	return GenericMessage
}

// classify wraps a failure of http.Client.Do.
func classify(op string, err error) *APIError {
	kind := KindNetwork
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &APIError{Kind: kind, Op: op, Err: err}
}

// serverMessage extracts {"message": "..."} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(firstNonEmpty(payload.Message, payload.Error))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
