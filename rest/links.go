package rest

import (
	"encoding/json"
	"fmt"
)

// Link relation names advertised by the API root and by domain objects
const (
	LinkGetUser          = "GET_USER"
	LinkListDomains      = "LIST_DOMAINS"
	LinkAddDomain        = "ADD_DOMAIN"
	LinkListCartridges   = "LIST_CARTRIDGES"
	LinkListKeys         = "LIST_KEYS"
	LinkAddKey           = "ADD_KEY"
	LinkGet              = "GET"
	LinkUpdate           = "UPDATE"
	LinkDelete           = "DELETE"
	LinkListApplications = "LIST_APPLICATIONS"
	LinkAddApplication   = "ADD_APPLICATION"
	LinkAddCartridge     = "ADD_CARTRIDGE"
	LinkStart            = "START"
	LinkStop             = "STOP"
	LinkForceStop        = "FORCE_STOP"
	LinkRestart          = "RESTART"
	LinkReload           = "RELOAD"
)

// Param describes a parameter accepted by a link
type Param struct {
	Name         string   `json:"name"`
	Type         string   `json:"type,omitempty"`
	Description  string   `json:"description,omitempty"`
	ValidOptions []string `json:"valid_options,omitempty"`
	DefaultValue any      `json:"default_value,omitempty"`
}

// Link is a server-advertised action on a resource
type Link struct {
	Rel            string  `json:"rel,omitempty"`
	Method         string  `json:"method"`
	Href           string  `json:"href"`
	RequiredParams []Param `json:"required_params,omitempty"`
	OptionalParams []Param `json:"optional_params,omitempty"`
}

// Links maps relation names to links
type Links map[string]Link

// Get returns the named link
func (l Links) Get(name string) (Link, error) {
	link, ok := l[name]
	if !ok || link.Href == "" {
		return Link{}, fmt.Errorf("%w: %s", ErrLinkNotFound, name)
	}
	return link, nil
}

// checkParams verifies every required parameter of the link is present
func (l Link) checkParams(params map[string]string) error {
	for _, p := range l.RequiredParams {
		if _, ok := params[p.Name]; !ok {
			return fmt.Errorf("%w: %s for %s %s", ErrMissingParam, p.Name, l.Method, l.Href)
		}
	}
	return nil
}

// parseLinks decodes the data of a "links" envelope, which the hydrator passes through raw
func parseLinks(data json.RawMessage) (Links, error) {
	var links Links
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("%w: links: %w", ErrMalformedResponse, err)
	}
	return links, nil
}
