package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

// Paths reachable without a session. Prefix match, so /login and
// /login/reset both pass.
var publicPathPrefixes = []string{
	"/login",
	"/register",
}

// Page paths restricted to ADMIN.
var adminPathPrefixes = []string{
	"/admin",
	"/dashboard/admin",
}

// Static asset suffixes the gate never inspects.
var assetSuffixes = []string{
	".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".css", ".js",
}

// shouldSkipGate reports whether the gate ignores this path entirely.
// API routes authenticate per handler; assets are public by definition.
func shouldSkipGate(path string) bool {
	if strings.HasPrefix(path, "/api") || strings.HasPrefix(path, "/static/") {
		return true
	}
	if path == "/favicon.ico" || path == "/health" {
		return true
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

func isPublicPath(path string) bool {
	for _, prefix := range publicPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isAdminPath(path string) bool {
	for _, prefix := range adminPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NewPageGate creates the middleware guarding browser page routes.
//
// Decision order for non-exempt paths:
//  1. Public prefixes (/login, /register) pass through untouched, even with
//     a valid session attached.
//  2. No auth cookie: redirect to /login?redirect=<original path> so the
//     login flow can return the user where they were headed.
//  3. Cookie present but token invalid or expired: redirect to plain /login.
//     The token's claims are untrusted at that point, including any path we
//     might have echoed back.
//  4. Admin prefixes (/admin, /dashboard/admin) with a non-ADMIN principal:
//     redirect to /home. ADMIN is checked by role, not permission.
//  5. Otherwise the principal is stored in the request context and the
//     request proceeds.
func NewPageGate(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if shouldSkipGate(path) {
				next.ServeHTTP(w, r)
				return
			}

			if isPublicPath(path) {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(auth.SessionCookieName)
			if err != nil || cookie.Value == "" {
				q := url.Values{}
				q.Set("redirect", path)
				http.Redirect(w, r, "/login?"+q.Encode(), http.StatusFound)
				return
			}

			principal, ok := sessions.CurrentPrincipal(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			if isAdminPath(path) && principal.Role != auth.RoleAdmin {
				http.Redirect(w, r, "/home", http.StatusFound)
				return
			}

			ctx := auth.SetPrincipalContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyHeader carries an API key secret on programmatic requests.
const APIKeyHeader = "X-API-Key"

// APIKeyResolver looks up key records by their stored hash. Disabled keys
// must not resolve.
type APIKeyResolver interface {
	GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// UserResolver loads the account a resolved key acts as.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// APIAuthnDependencies carries what the API authn middleware needs. Sessions
// is required; APIKeys and Users may be nil, which disables header
// authentication.
type APIAuthnDependencies struct {
	Sessions *auth.Sessions
	APIKeys  APIKeyResolver
	Users    UserResolver
}

// NewAPIAuthn creates the middleware resolving principals for API routes.
// A session cookie wins; without one, an X-API-Key header is hashed and
// matched against stored keys, acting as the key's creator. Unlike the page
// gate this never redirects: unauthenticated requests get 401 JSON. Handlers
// that allow anonymous access (login, register) are mounted outside this
// middleware.
func NewAPIAuthn(deps APIAuthnDependencies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := deps.Sessions.CurrentPrincipal(r)
			if !ok {
				principal, ok = deps.resolveAPIKey(r)
			}
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"authentication required"}`))
				return
			}
			ctx := auth.SetPrincipalContext(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (d APIAuthnDependencies) resolveAPIKey(r *http.Request) (auth.Principal, bool) {
	secret := r.Header.Get(APIKeyHeader)
	if secret == "" || d.APIKeys == nil || d.Users == nil {
		return auth.Principal{}, false
	}

	key, err := d.APIKeys.GetByHash(r.Context(), auth.HashAPIKey(secret))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("api key authn: lookup: %v", err)
		}
		return auth.Principal{}, false
	}

	user, err := d.Users.GetByID(r.Context(), key.CreatedBy)
	if err != nil {
		log.Printf("api key authn: load user for key %s: %v", key.ID, err)
		return auth.Principal{}, false
	}
	role, valid := auth.ParseRole(user.Role)
	if !valid {
		log.Printf("api key authn: user %s has unknown role %q", user.ID, user.Role)
		return auth.Principal{}, false
	}

	// Best effort; a failed timestamp update never blocks the request.
	if err := d.APIKeys.TouchLastUsed(r.Context(), key.ID); err != nil {
		log.Printf("api key authn: touch last used for key %s: %v", key.ID, err)
	}

	return auth.Principal{UserID: user.ID, Email: user.Email, Role: role}, true
}
