package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/insightequity/alpha-api/internal/config"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "auth_token"

// Sessions resolves principals from request cookies and constructs the auth
// cookie. The signing secret is injected once at startup; there is no
// server-side session state.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions builds a session resolver from the process configuration.
func NewSessions(cfg *config.Config) *Sessions {
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Printf("WARNING: JWT_SECRET is unset; using the insecure default signing secret")
	}
	return &Sessions{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.SessionTTL,
		secure: cfg.IsProduction(),
	}
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for the principal.
func (s *Sessions) Issue(p Principal) (string, error) {
	return IssueToken(p, s.secret, s.ttl)
}

// CurrentPrincipal resolves the principal from the request's auth cookie.
// A missing cookie and an invalid token are indistinguishable to callers;
// both yield ok=false. The verification failure cause is logged internally.
func (s *Sessions) CurrentPrincipal(r *http.Request) (Principal, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return Principal{}, false
	}

	principal, err := VerifyToken(cookie.Value, s.secret)
	if err != nil {
		log.Printf("session: rejecting token: %v", err)
		return Principal{}, false
	}
	return principal, true
}

// IsAuthenticated reports whether the request carries a valid session.
func (s *Sessions) IsAuthenticated(r *http.Request) bool {
	_, ok := s.CurrentPrincipal(r)
	return ok
}

// NewCookie wraps a session token in the recognized cookie attributes:
// HTTP-only always, Secure only in production, SameSite Lax, site-wide path,
// Max-Age matching the token TTL.
func (s *Sessions) NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns the logout cookie: an empty value expiring
// immediately. The server tracks no sessions, so this is the whole logout.
func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialized as Max-Age=0
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
