package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned when no credential is configured or the
// backend rejects it.
var ErrUnauthenticated = errors.New("not signed in")

// NetworkError covers transport failures and 5xx responses. Callers treat
// it as transient.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: server error (%d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func decodeAPIError(op string, resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	case resp.StatusCode >= 500:
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}
	type errorPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var payload errorPayload
	_ = json.Unmarshal(body, &payload)
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}
