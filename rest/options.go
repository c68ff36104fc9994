package rest

import "time"

const (
	// DefaultAPIVersion is sent in the Accept header unless overridden
	DefaultAPIVersion = "1.0"
	// DefaultTimeout bounds each request made by the default transport
	DefaultTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	apiVersion string
	strict     bool
	httpClient Doer
	skipPing   bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		timeout:    DefaultTimeout,
		apiVersion: DefaultAPIVersion,
	}
}

// WithTimeout sets the HTTP client timeout.
// It has no effect when WithHTTPClient is also used.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithAPIVersion sets the API version requested in the Accept header.
func WithAPIVersion(version string) Option {
	return func(o *clientOptions) {
		if version != "" {
			o.apiVersion = version
		}
	}
}

// WithStrictErrors makes error statuses without an ERROR message fail with
// *UnexpectedStatusError instead of returning an empty result.
func WithStrictErrors() Option {
	return func(o *clientOptions) {
		o.strict = true
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithoutConnect skips fetching the API root during NewClient.
// Call Connect before using any operation.
func WithoutConnect() Option {
	return func(o *clientOptions) {
		o.skipPing = true
	}
}
