package server

import (
	"errors"
	"log"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

// bcryptCost for locally stored credentials.
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// userResponse is the public shape of a user account. The password hash
// never leaves the server.
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if u.LastLoginAt != nil {
		resp.LastLoginAt = u.LastLoginAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// HandleRegister creates a new account with the VIEWER role and establishes
// a session for it.
func HandleRegister(users repository.UserRepository, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "Email, password, and name are required")
			return
		}
		if !emailPattern.MatchString(req.Email) {
			writeError(w, http.StatusBadRequest, "Invalid email format")
			return
		}
		if len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
			return
		}

		if _, err := users.GetByEmail(r.Context(), req.Email); err == nil {
			writeError(w, http.StatusConflict, "User with this email already exists")
			return
		} else if !errors.Is(err, repository.ErrNotFound) {
			writeRepoError(w, err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			log.Printf("register: hash password: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during registration")
			return
		}
		hashStr := string(hash)

		user := &models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: &hashStr,
			Role:         string(auth.RoleViewer),
		}
		if err := users.Create(r.Context(), user); err != nil {
			log.Printf("register: create user: %v", err)
			writeError(w, http.StatusInternalServerError, "An error occurred during registration")
			return
		}

		if !issueSession(w, sessions, user) {
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": toUserResponse(user)})
	}
}

// HandleLogin verifies local credentials and establishes a session. Unknown
// email and wrong password are indistinguishable to the client.
func HandleLogin(users repository.UserRepository, sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		user, err := users.GetByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			writeRepoError(w, err)
			return
		}
		if user.PasswordHash == nil {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		if err := users.UpdateLastLogin(r.Context(), user.ID); err != nil {
			// Login still succeeds; the timestamp is best-effort.
			log.Printf("login: update last login for %s: %v", user.ID, err)
		}

		if !issueSession(w, sessions, user) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(user)})
	}
}

// HandleLogout clears the auth cookie. The response always carries the
// expiring cookie, session or not, because there is no server-side state to
// consult.
func HandleLogout(sessions *auth.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, sessions.ClearCookie())
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// HandleMe returns the authenticated principal with the permission set its
// role grants.
func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"userId":      principal.UserID,
			"email":       principal.Email,
			"role":        principal.Role,
			"permissions": auth.PermissionsFor(principal.Role),
		})
	}
}

// issueSession signs a token for the user and sets the auth cookie.
// Returns false after writing a 500 if signing fails.
func issueSession(w http.ResponseWriter, sessions *auth.Sessions, user *models.User) bool {
	role, valid := auth.ParseRole(user.Role)
	if !valid {
		log.Printf("session: user %s has unrecognized role %q", user.ID, user.Role)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	token, err := sessions.Issue(auth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	})
	if err != nil {
		log.Printf("session: sign token for %s: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	http.SetCookie(w, sessions.NewCookie(token))
	return true
}
