package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Error kinds. Every *APIError unwraps to exactly one of the status kinds.
var (
	// ErrUnauthorized indicates the server rejected the credentials (401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRequestDenied indicates the request was understood but refused (403)
	ErrRequestDenied = errors.New("request denied")
	// ErrResourceNotFound indicates the addressed resource does not exist (404)
	ErrResourceNotFound = errors.New("resource not found")
	// ErrValidation indicates a conflict (409) or an invalid attribute (422)
	ErrValidation = errors.New("validation failed")
	// ErrClientError indicates a malformed request (400)
	ErrClientError = errors.New("client error")
	// ErrServerError indicates an internal server failure (500)
	ErrServerError = errors.New("server error")
	// ErrServiceUnavailable indicates the service is temporarily down (503)
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrMalformedResponse indicates a body that is not a valid envelope
	ErrMalformedResponse = errors.New("malformed response")
	// ErrResourceAccess indicates a transport fault before any HTTP status was received
	ErrResourceAccess = errors.New("resource access failed")
	// ErrUnexpectedStatus is returned in strict mode for error statuses without a typed mapping
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrLinkNotFound indicates the server did not advertise the requested link
	ErrLinkNotFound = errors.New("link not found")
	// ErrMissingParam indicates a required link parameter was not supplied
	ErrMissingParam = errors.New("missing required parameter")
)

// APIError is a typed failure reported by the server
type APIError struct {
	Kind       error
	StatusCode int
	Message    string
	// Attribute names the offending field; only set for 422 responses
	Attribute string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("%v: status %d: %s (attribute %s)", e.Kind, e.StatusCode, e.Message, e.Attribute)
	}
	return fmt.Sprintf("%v: status %d: %s", e.Kind, e.StatusCode, e.Message)
}

// Unwrap returns the error kind so callers can use errors.Is
func (e *APIError) Unwrap() error {
	return e.Kind
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.Kind == ErrUnauthorized
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.Kind == ErrResourceNotFound
}

// UnexpectedStatusError reports an error status that carried no ERROR message.
// It is only produced when the client runs in strict mode.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) without error message", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *UnexpectedStatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// statusKinds maps the statuses that carry message-driven detail to their kind
var statusKinds = map[int]error{
	http.StatusBadRequest:          ErrClientError,
	http.StatusForbidden:           ErrRequestDenied,
	http.StatusNotFound:            ErrResourceNotFound,
	http.StatusConflict:            ErrValidation,
	http.StatusUnprocessableEntity: ErrValidation,
	http.StatusInternalServerError: ErrServerError,
	http.StatusServiceUnavailable:  ErrServiceUnavailable,
}

// MapError translates an HTTP error status and its body into a typed error.
//
// The kind depends only on the status. Except for 401, the message comes from the
// first message whose severity is ERROR; when there is none, or the status has no
// mapping, MapError returns nil.
func MapError(status int, body []byte, logger zerolog.Logger) error {
	messages := errorMessages(body, logger)

	if status == http.StatusUnauthorized {
		return &APIError{Kind: ErrUnauthorized, StatusCode: status, Message: "Not authenticated"}
	}

	kind, ok := statusKinds[status]
	if !ok {
		return nil
	}

	for _, msg := range messages {
		if !msg.IsError() {
			continue
		}
		apiErr := &APIError{Kind: kind, StatusCode: status, Message: msg.Text}
		if status == http.StatusUnprocessableEntity {
			apiErr.Attribute = msg.Attribute
		}
		return apiErr
	}

	return nil
}

// errorMessages extracts the messages list from an error body.
// Any decode failure degrades to an empty list.
func errorMessages(body []byte, logger zerolog.Logger) []Message {
	var result struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		logger.Debug().Err(err).Msg("Response did not include a message from server")
		return nil
	}
	return result.Messages
}
