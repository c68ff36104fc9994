package rest

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Result is the outcome of a successful dispatch
type Result struct {
	StatusCode int
	// Type is the envelope type; empty for NoContent and unmapped error statuses
	Type string
	// Value holds the hydrated payload (see Hydrate)
	Value any
	// NoContent is set for 204 responses, which are never parsed
	NoContent bool
}

// Dispatcher turns a single transport call into a hydrated value or a typed error
type Dispatcher struct {
	session *Session
	logger  zerolog.Logger
	strict  bool
}

// NewDispatcher creates a dispatcher that records tokens into session.
// In strict mode an error status without an ERROR message fails with *UnexpectedStatusError;
// otherwise the dispatch returns an empty Result and no error.
func NewDispatcher(session *Session, logger zerolog.Logger, strict bool) *Dispatcher {
	return &Dispatcher{
		session: session,
		logger:  logger,
		strict:  strict,
	}
}

// Dispatch executes the request once and interprets the response
func (d *Dispatcher) Dispatch(execute ExecuteFunc) (*Result, error) {
	resp, err := execute()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to access resource: %w", ErrResourceAccess, err)
	}

	d.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Msg("Received response")

	if resp.StatusCode >= http.StatusBadRequest {
		if err := MapError(resp.StatusCode, resp.Body, d.logger); err != nil {
			return nil, err
		}
		if d.strict {
			return nil, &UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
		}
		d.logger.Debug().Int("status", resp.StatusCode).Msg("Error status without error message")
		return &Result{StatusCode: resp.StatusCode}, nil
	}

	d.session.Observe(resp.Cookies)

	if resp.StatusCode == http.StatusNoContent {
		return &Result{StatusCode: resp.StatusCode, NoContent: true}, nil
	}

	env, err := ParseEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	value, err := Hydrate(env.Type, env.Data)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().Str("type", env.Type).Msg("Hydrated response")

	return &Result{
		StatusCode: resp.StatusCode,
		Type:       env.Type,
		Value:      value,
	}, nil
}

// As extracts a typed value from a result.
// An error status that dispatched without a typed error yields *UnexpectedStatusError.
func As[T any](res *Result) (T, error) {
	var zero T
	if res != nil && res.Value == nil && res.StatusCode >= http.StatusBadRequest {
		return zero, &UnexpectedStatusError{StatusCode: res.StatusCode}
	}
	if res == nil || res.Value == nil {
		return zero, fmt.Errorf("%w: response carried no value", ErrMalformedResponse)
	}
	v, ok := res.Value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected response type %q", ErrMalformedResponse, res.Type)
	}
	return v, nil
}
