package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Client talks to the platform REST API.
//
// A Client holds one authenticated session and is not safe for concurrent use.
type Client struct {
	baseURL    string
	login      string
	password   string
	apiVersion string
	transport  *HTTPTransport
	session    *Session
	dispatcher *Dispatcher
	links      Links
	logger     zerolog.Logger
}

// NewClient creates a new client and loads the API root links
func NewClient(baseURL, login, password string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	transport := NewHTTPTransport(options.timeout)
	if options.httpClient != nil {
		transport = &HTTPTransport{client: options.httpClient}
	}

	session := &Session{}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		login:      login,
		password:   password,
		apiVersion: options.apiVersion,
		transport:  transport,
		session:    session,
		dispatcher: NewDispatcher(session, logger, options.strict),
		logger:     logger,
	}

	if options.skipPing {
		return client, nil
	}

	if err := client.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", client.baseURL, err)
	}

	return client, nil
}

// Connect fetches the API root and stores the links it advertises
func (c *Client) Connect(ctx context.Context) error {
	res, err := c.send(ctx, Link{Method: http.MethodGet, Href: c.baseURL + "/api"}, nil)
	if err != nil {
		return err
	}

	raw, err := As[json.RawMessage](res)
	if err != nil {
		return err
	}

	links, err := parseLinks(raw)
	if err != nil {
		return err
	}

	c.links = links
	c.logger.Debug().Int("links", len(links)).Msg("Loaded API links")
	return nil
}

// Session returns the session shared by every request of this client
func (c *Client) Session() *Session {
	return c.session
}

// newRequest builds the HTTP request for a link.
// GET and DELETE parameters go into the query string, others into a form body.
func (c *Client) newRequest(ctx context.Context, link Link, params map[string]string) (*http.Request, error) {
	method := strings.ToUpper(link.Method)
	if method == "" {
		method = http.MethodGet
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	target := link.Href
	var body io.Reader
	if method == http.MethodGet || method == http.MethodDelete {
		if len(values) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + values.Encode()
		}
	} else {
		body = strings.NewReader(values.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json; version="+c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.login != "" {
		req.SetBasicAuth(c.login, c.password)
	}
	if cookie, ok := c.session.CookieHeader(); ok {
		req.Header.Set("Cookie", cookie)
	}

	return req, nil
}

// send checks the link parameters, builds the request and dispatches it
func (c *Client) send(ctx context.Context, link Link, params map[string]string) (*Result, error) {
	if err := link.checkParams(params); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, link, params)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Making API request")

	return c.dispatcher.Dispatch(c.transport.Execute(req))
}

// call resolves a named link and sends it
func (c *Client) call(ctx context.Context, links Links, rel string, params map[string]string) (*Result, error) {
	link, err := links.Get(rel)
	if err != nil {
		return nil, err
	}
	return c.send(ctx, link, params)
}

// fetch calls a link and extracts a typed value from the response
func fetch[T any](ctx context.Context, c *Client, links Links, rel string, params map[string]string) (T, error) {
	res, err := c.call(ctx, links, rel, params)
	if err != nil {
		var zero T
		return zero, err
	}
	return As[T](res)
}
