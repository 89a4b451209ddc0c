package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

type apiKeyResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Prefix     string  `json:"prefix"`
	CreatedBy  string  `json:"createdBy"`
	CreatedAt  string  `json:"createdAt"`
	LastUsedAt *string `json:"lastUsedAt"`
	Disabled   bool    `json:"disabled"`
}

func toAPIKeyResponse(k *models.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		Prefix:    k.Prefix,
		CreatedBy: k.CreatedBy,
		CreatedAt: k.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Disabled:  k.Disabled,
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastUsedAt = &s
	}
	return resp
}

// HandleListAPIKeys returns key metadata. Requires manage_api_keys. Secrets
// are not recoverable; only hashes are stored.
func HandleListAPIKeys(keys repository.APIKeyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageAPIKeys); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		list, err := keys.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		resp := make([]apiKeyResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toAPIKeyResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateAPIKey mints a new key. Requires manage_api_keys. The full
// secret appears in this response once and is never shown again.
func HandleCreateAPIKey(keys repository.APIKeyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageAPIKeys); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		secret, err := auth.NewAPIKeySecret()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		key := &models.APIKey{
			Name:      req.Name,
			Prefix:    auth.KeyPrefix(secret),
			KeyHash:   auth.HashAPIKey(secret),
			CreatedBy: principal.UserID,
		}
		if err := keys.Create(r.Context(), key); err != nil {
			writeRepoError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"apiKey": toAPIKeyResponse(key),
			"secret": secret,
		})
	}
}

// HandleDisableAPIKey disables or re-enables a key. Requires
// manage_api_keys.
func HandleDisableAPIKey(keys repository.APIKeyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageAPIKeys); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req struct {
			Disabled bool `json:"disabled"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		id := chi.URLParam(r, "id")
		if err := keys.SetDisabled(r.Context(), id, req.Disabled); err != nil {
			writeRepoError(w, err)
			return
		}

		key, err := keys.GetByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAPIKeyResponse(key))
	}
}

// HandleDeleteAPIKey removes a key record. Requires manage_api_keys.
func HandleDeleteAPIKey(keys repository.APIKeyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageAPIKeys); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		if err := keys.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
