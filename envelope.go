package adminapi

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Metadata accompanies every envelope regardless of outcome.
type Metadata struct {
	Timestamp int64  `json:"timestamp"`
	RequestID string `json:"requestId"`
}

// Response is the uniform envelope returned from every call. Exactly one of
// Data / Err carries the outcome; Status is the transport status (200 for
// cache hits, 500 for network failures with no response).
type Response struct {
	Data   json.RawMessage `json:"data"`
	Err    string          `json:"error,omitempty"`
	Status int             `json:"status"`
	Meta   Metadata        `json:"metadata"`
}

// OK reports whether the call succeeded.
func (r *Response) OK() bool {
	return r != nil && r.Err == ""
}

// Decode unmarshals the envelope payload into T. A failed envelope decodes
// into an *APIError reconstructed from the envelope fields, so callers that
// prefer Go error handling get it back here.
func Decode[T any](r *Response) (T, error) {
	var v T
	if r == nil {
		return v, ErrNilResponse
	}
	if r.Err != "" {
		return v, &APIError{
			Type:       typeForStatus(r.Status),
			Message:    r.Err,
			StatusCode: r.Status,
			RequestID:  r.Meta.RequestID,
		}
	}
	if len(r.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(r.Data, &v); err != nil {
		return v, err
	}
	return v, nil
}

func newMetadata() Metadata {
	return Metadata{
		Timestamp: time.Now().UnixMilli(),
		RequestID: uuid.NewString(),
	}
}

func successResponse(data json.RawMessage, status int, meta Metadata) *Response {
	return &Response{Data: data, Status: status, Meta: meta}
}

func failureResponse(err *APIError, meta Metadata) *Response {
	msg := err.Message
	if msg == "" {
		msg = err.Error()
	}
	return &Response{Err: msg, Status: err.StatusCode, Meta: meta}
}

// wireEnvelope is the backend body contract: {success, message, data}.
// Success is a pointer so bodies without the field pass through as raw data.
type wireEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeWire interprets a backend body. ok=false means the body declared
// success:false, which is an application-level error even on a 2xx status.
// Bodies that are not the wire shape pass through unchanged as payload.
func decodeWire(body []byte) (data json.RawMessage, errMsg string, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, "", true
	}
	var w wireEnvelope
	if err := json.Unmarshal(trimmed, &w); err != nil || w.Success == nil {
		return json.RawMessage(trimmed), "", true
	}
	if !*w.Success {
		msg := w.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, msg, false
	}
	return w.Data, "", true
}

// wireMessage extracts the backend message from an error body, falling back
// when the body is empty or not the wire shape.
func wireMessage(body []byte, fallback string) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}
	var w wireEnvelope
	if err := json.Unmarshal(trimmed, &w); err == nil && w.Message != "" {
		return w.Message
	}
	return fallback
}
