package adminapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error type labels carried by APIError and the errors_total metric.
const (
	ErrorTypeNetwork      = "Network"
	ErrorTypeServer       = "Server"
	ErrorTypeClient       = "Client"
	ErrorTypeUnauthorized = "Unauthorized"
	ErrorTypeApplication  = "Application"
	ErrorTypeMiddleware   = "Middleware"
	ErrorTypeEncoding     = "Encoding"
	ErrorTypeCanceled     = "Canceled"
	ErrorTypeValidation   = "Validation"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrNilResponse is returned by Decode when given a nil envelope.
	ErrNilResponse = errors.New("adminapi: nil response")
)

// APIError is the structured failure produced by the client pipeline. It is
// folded into the envelope's Err field; callers normally see it only through
// Decode.
type APIError struct {
	Type       string
	Message    string
	Cause      error
	RequestID  string
	Method     string
	Path       string
	StatusCode int
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
}

// Error implements error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxRetries)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*APIError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsTransient reports whether an error represents a failure that might
// succeed on retry: network failures and 5xx server responses. Client errors
// are deterministic and never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Type {
		case ErrorTypeNetwork, ErrorTypeServer:
			return true
		}
	}
	return false
}

// typeForStatus maps a transport status to the error taxonomy. Statuses
// outside the error ranges (including 0) classify as network failures.
func typeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case status >= 500:
		return ErrorTypeServer
	case status >= 400:
		return ErrorTypeClient
	default:
		return ErrorTypeNetwork
	}
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *APIError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.Path != "" {
		info += fmt.Sprintf("Path: %s\n", e.Path)
	}
	if e.StatusCode > 0 {
		info += fmt.Sprintf("Status Code: %d\n", e.StatusCode)
	}
	if e.Attempt > 0 {
		info += fmt.Sprintf("Attempt: %d/%d\n", e.Attempt, e.MaxRetries)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
