package rest

// SessionCookie is the cookie carrying the session token
const SessionCookie = "rh_sso"

// Session holds the session token issued by the server.
//
// A Session belongs to one Client. Once a token is observed it is replayed on every
// later request until another token replaces it; it is never cleared.
type Session struct {
	token string
}

// Observe records the session token from a successful response's cookies.
// A missing or empty cookie leaves the current token untouched.
func (s *Session) Observe(cookies map[string]string) {
	if token := cookies[SessionCookie]; token != "" {
		s.token = token
	}
}

// CookieHeader returns the Cookie header value to attach to the next request
func (s *Session) CookieHeader() (string, bool) {
	if s.token == "" {
		return "", false
	}
	return SessionCookie + "=" + s.token, true
}

// Token returns the stored token, or an empty string
func (s *Session) Token() string {
	return s.token
}
