package rest

import (
	"encoding/json"
	"fmt"
	"time"
)

// Domain is a namespace that owns applications
type Domain struct {
	ID    string `json:"id"`
	Links Links  `json:"links,omitempty"`
}

// Application is a deployed application inside a domain
type Application struct {
	DomainID       string   `json:"domain_id"`
	Name           string   `json:"name"`
	CreationTime   string   `json:"creation_time,omitempty"`
	UUID           string   `json:"uuid,omitempty"`
	Aliases        []string `json:"aliases,omitempty"`
	ServerIdentity string   `json:"server_identity,omitempty"`
	Framework      string   `json:"framework,omitempty"`
	Links          Links    `json:"links,omitempty"`
}

// Created parses CreationTime; the zero time is returned when it is absent or unparseable
func (a *Application) Created() time.Time {
	t, err := time.Parse(time.RFC3339, a.CreationTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Cartridge is a runtime or service component that can be embedded in an application
type Cartridge struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Links Links  `json:"links,omitempty"`
}

// IsEmbedded checks if the cartridge is an add-on rather than a framework
func (c *Cartridge) IsEmbedded() bool {
	return c.Type == "embedded"
}

// User is the authenticated account
type User struct {
	Login string `json:"login"`
	Links Links  `json:"links,omitempty"`
}

// Key is an SSH public key registered for the user
type Key struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
	Links   Links  `json:"links,omitempty"`
}

func newDomain(data json.RawMessage) (*Domain, error) {
	return decodeObject(data, "domain", func(d *Domain) bool { return d.ID != "" })
}

func newApplication(data json.RawMessage) (*Application, error) {
	return decodeObject(data, "application", func(a *Application) bool { return a.Name != "" })
}

func newCartridge(data json.RawMessage) (*Cartridge, error) {
	return decodeObject(data, "cartridge", func(c *Cartridge) bool { return c.Name != "" })
}

func newUser(data json.RawMessage) (*User, error) {
	return decodeObject(data, "user", func(u *User) bool { return u.Login != "" })
}

func newKey(data json.RawMessage) (*Key, error) {
	return decodeObject(data, "key", func(k *Key) bool { return k.Name != "" })
}

// decodeObject builds one domain object and checks its required fields
func decodeObject[T any](data json.RawMessage, kind string, valid func(*T) bool) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, kind, err)
	}
	if !valid(&v) {
		return nil, fmt.Errorf("%w: %s: missing required field", ErrMalformedResponse, kind)
	}
	return &v, nil
}

// decodeList builds one domain object per array element, preserving order
func decodeList[T any](data json.RawMessage, build func(json.RawMessage) (*T, error)) ([]*T, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: expected array: %w", ErrMalformedResponse, err)
	}

	items := make([]*T, 0, len(elems))
	for i, elem := range elems {
		item, err := build(elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
