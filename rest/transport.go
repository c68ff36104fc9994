package rest

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// Response is what the transport hands back for one request
type Response struct {
	StatusCode int
	Body       []byte
	Cookies    map[string]string
}

// ExecuteFunc performs one prepared request.
// It returns an error only for transport faults; HTTP error statuses are a Response.
type ExecuteFunc func() (*Response, error)

// Doer is the subset of *http.Client used by HTTPTransport
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxRedirects matches the net/http default policy
const maxRedirects = 10

// HTTPTransport executes requests over net/http.
// Like Client, it handles one request at a time.
type HTTPTransport struct {
	client Doer
	// hopCookies collects cookies set on redirect responses of the current request
	hopCookies map[string]string
}

// NewHTTPTransport creates a transport backed by a non-shared cleanhttp client.
// Cookies set on redirect hops are reported along with the final response's cookies.
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	t := &HTTPTransport{}
	client := cleanhttp.DefaultClient()
	client.Timeout = timeout
	client.CheckRedirect = t.checkRedirect
	t.client = client
	return t
}

// checkRedirect records the cookies of the redirect response that led to req
func (t *HTTPTransport) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.Response != nil && t.hopCookies != nil {
		for _, c := range req.Response.Cookies() {
			t.hopCookies[c.Name] = c.Value
		}
	}
	return nil
}

// Do sends the request and reads the full response
func (t *HTTPTransport) Do(req *http.Request) (*Response, error) {
	t.hopCookies = make(map[string]string)
	defer func() { t.hopCookies = nil }()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// the final response wins over earlier hops
	cookies := make(map[string]string, len(t.hopCookies))
	for name, value := range t.hopCookies {
		cookies[name] = value
	}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Cookies:    cookies,
	}, nil
}

// Execute binds a request to the transport
func (t *HTTPTransport) Execute(req *http.Request) ExecuteFunc {
	return func() (*Response, error) {
		return t.Do(req)
	}
}

