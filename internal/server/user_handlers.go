package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

// HandleListUsers returns every account. Requires manage_users.
func HandleListUsers(users repository.UserRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageUsers); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		list, err := users.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		resp := make([]userResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toUserResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateUser provisions an account with an explicit role, unlike
// self-service registration which always yields VIEWER. Requires
// manage_users.
func HandleCreateUser(users repository.UserRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageUsers); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Email == "" || req.Name == "" {
			writeError(w, http.StatusBadRequest, "email and name are required")
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

		role := auth.RoleViewer
		if req.Role != "" {
			parsed, valid := auth.ParseRole(req.Role)
			if !valid {
				writeError(w, http.StatusBadRequest, "unknown role")
				return
			}
			role = parsed
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
			log.Printf("create user: hash password: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		hashStr := string(hash)

		user := &models.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: &hashStr,
			Role:         string(role),
		}
		if err := users.Create(r.Context(), user); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(user))
	}
}

// HandleUpdateUserRole changes an account's role. Requires manage_users.
// Admins cannot demote themselves; that guarantees at least one admin
// remains reachable through this endpoint.
func HandleUpdateUserRole(users repository.UserRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageUsers); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		userID := chi.URLParam(r, "id")
		var req struct {
			Role string `json:"role"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		role, valid := auth.ParseRole(req.Role)
		if !valid {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}
		if userID == principal.UserID && role != principal.Role {
			writeError(w, http.StatusBadRequest, "cannot change your own role")
			return
		}

		if err := users.UpdateRole(r.Context(), userID, string(role)); err != nil {
			writeRepoError(w, err)
			return
		}

		user, err := users.GetByID(r.Context(), userID)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(user))
	}
}

// HandleDeleteUser removes an account. Requires manage_users. Self-deletion
// is rejected for the same reason self-demotion is.
func HandleDeleteUser(users repository.UserRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageUsers); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		userID := chi.URLParam(r, "id")
		if userID == principal.UserID {
			writeError(w, http.StatusBadRequest, "cannot delete your own account")
			return
		}

		if err := users.Delete(r.Context(), userID); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
