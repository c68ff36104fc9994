// Package rest provides a client for the platform-management REST API.
//
// Every response body is a uniform envelope:
//
//	{"type": "application", "data": {...}, "messages": [...]}
//
// The envelope type decides how data is hydrated into Domain, Application,
// Cartridge, User or Key values. Unknown types pass through as json.RawMessage.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := rest.NewClient(
//		"https://openshift.example.com/broker/rest",
//		"user@example.com",
//		"secret",
//		logger,
//		rest.WithTimeout(30*time.Second),
//		rest.WithStrictErrors(),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	domains, err := client.Domains(ctx)
//
// # Sessions
//
// The server may issue an rh_sso cookie on any successful response. The client
// keeps the latest token and sends it on every later request. Each Client owns
// its own session, and a Client must not be used from several goroutines at once.
// Cookies set on redirect responses count as well: a token issued by a login
// hop that redirects to the final resource is kept.
//
// # Error Handling
//
// HTTP error statuses map to typed errors:
//
//   - 401: ErrUnauthorized
//   - 403: ErrRequestDenied
//   - 404: ErrResourceNotFound
//   - 409, 422: ErrValidation (422 also carries the offending attribute)
//   - 400: ErrClientError
//   - 500: ErrServerError
//   - 503: ErrServiceUnavailable
//
// Except for 401, the error text is the first ERROR message the server sent.
// Without such a message no typed error is produced; the dispatch then returns an
// empty Result, or *UnexpectedStatusError when WithStrictErrors is set.
//
// Operations that return a value (User, Domains, FindApplication, ...) cannot
// hand back an empty Result, so they always report such a status as
// *UnexpectedStatusError. Event-style operations (StartApplication,
// StopCartridge, DeleteDomain, ...) have nothing to return and yield nil for it
// unless WithStrictErrors is set.
//
//	var apiErr *rest.APIError
//	if errors.As(err, &apiErr) && errors.Is(err, rest.ErrValidation) {
//		fmt.Println(apiErr.Attribute, apiErr.Message)
//	}
//
// Transport faults wrap ErrResourceAccess and undecodable bodies wrap
// ErrMalformedResponse.
package rest
