package transmission

import (
	"encoding/json"
	"fmt"
)

// RemoteError is a failed control-API call. Message carries the backend's
// human-readable message verbatim when the error body provided one; it is
// surfaced to the operator unchanged.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transmission API error (status %d)", e.StatusCode)
}

// errorBody mirrors the backend's error envelope.
type errorBody struct {
	Message string `json:"message"`
}

func parseRemoteError(status int, body []byte) *RemoteError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		return &RemoteError{StatusCode: status, Message: eb.Message}
	}
	return &RemoteError{StatusCode: status}
}
