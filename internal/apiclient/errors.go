package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lms-client/internal/model"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Body    string
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes the domain error a status maps to, so callers can use
// errors.Is(err, model.ErrUnauthorised) and friends.
func (e *APIError) Unwrap() error {
	return e.cause
}

// IsClientError reports a 4xx status. Client errors are never retried.
func (e *APIError) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: messageFromBody(status, body),
		Body:    string(body),
	}
	switch status {
	case http.StatusUnauthorized:
		apiErr.cause = model.ErrUnauthorised
	case http.StatusNotFound:
		apiErr.cause = model.ErrNotFound
	}
	return apiErr
}

// messageFromBody prefers the backend's message or error field and falls
// back to the status text.
func messageFromBody(status int, body []byte) string {
	var resp model.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if text := strings.TrimSpace(resp.Text()); text != "" {
			return text
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}
