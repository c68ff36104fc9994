package rest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// severityError is the only severity that produces a typed error
const severityError = "ERROR"

// Envelope is the uniform wrapper around every API response body
type Envelope struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	Messages []Message       `json:"messages,omitempty"`
}

// Message is a server-supplied notice attached to a response
type Message struct {
	Severity  string `json:"severity"`
	Text      string `json:"text"`
	Attribute string `json:"attribute,omitempty"`
}

// IsError reports whether the message has ERROR severity, ignoring case
func (m Message) IsError() bool {
	return strings.EqualFold(m.Severity, severityError)
}

// ParseEnvelope decodes a raw response body into an Envelope.
// The body must be a JSON object with both a type and a data key.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	rawType, ok := raw["type"]
	if !ok {
		return nil, fmt.Errorf("%w: missing type key", ErrMalformedResponse)
	}
	data, ok := raw["data"]
	if !ok {
		return nil, fmt.Errorf("%w: missing data key", ErrMalformedResponse)
	}

	env := &Envelope{Data: data}
	if err := json.Unmarshal(rawType, &env.Type); err != nil {
		return nil, fmt.Errorf("%w: type is not a string: %w", ErrMalformedResponse, err)
	}
	if msgs, ok := raw["messages"]; ok {
		if err := json.Unmarshal(msgs, &env.Messages); err != nil {
			return nil, fmt.Errorf("%w: messages: %w", ErrMalformedResponse, err)
		}
	}

	return env, nil
}
