package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
)

func TestCompanyWritesRequireManagePermission(t *testing.T) {
	env := newTestEnv(t)

	_, analystCookie := env.seedUser(t, "analyst@fund.example", auth.RoleAnalyst)
	_, editorCookie := env.seedUser(t, "editor@fund.example", auth.RoleEditor)

	body := map[string]any{"name": "Quantico Robotics", "industry": "Robotics"}

	denied := env.do(t, http.MethodPost, "/api/companies", body, analystCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	created := env.do(t, http.MethodPost, "/api/companies", body, editorCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	var company models.Company
	decodeInto(t, created, &company)
	require.NotEmpty(t, company.ID)

	// Reads are open to any authenticated principal.
	read := env.do(t, http.MethodGet, "/api/companies/"+company.ID, nil, analystCookie)
	assert.Equal(t, http.StatusOK, read.Code)

	// So is the listing.
	list := env.do(t, http.MethodGet, "/api/companies", nil, analystCookie)
	assert.Equal(t, http.StatusOK, list.Code)

	// Updates and deletes follow the same write permission.
	updated := env.do(t, http.MethodPut, "/api/companies/"+company.ID,
		map[string]any{"name": "Quantico Robotics Inc"}, analystCookie)
	assert.Equal(t, http.StatusForbidden, updated.Code)

	deleted := env.do(t, http.MethodDelete, "/api/companies/"+company.ID, nil, editorCookie)
	assert.Equal(t, http.StatusOK, deleted.Code)
}

func TestMeetingNoteWritesRequireManagePermission(t *testing.T) {
	env := newTestEnv(t)

	_, analystCookie := env.seedUser(t, "analyst@fund.example", auth.RoleAnalyst)
	editor, editorCookie := env.seedUser(t, "editor@fund.example", auth.RoleEditor)

	body := map[string]any{
		"title":       "Partner sync",
		"meetingDate": "2026-03-10T15:00:00Z",
		"content":     "Pipeline review.",
		"attendees":   []string{"Priya"},
	}

	denied := env.do(t, http.MethodPost, "/api/meetings", body, analystCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	created := env.do(t, http.MethodPost, "/api/meetings", body, editorCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	var note models.MeetingNote
	decodeInto(t, created, &note)
	assert.Equal(t, editor.ID, note.CreatedBy)

	// Any authenticated principal can read.
	read := env.do(t, http.MethodGet, "/api/meetings/"+note.ID, nil, analystCookie)
	assert.Equal(t, http.StatusOK, read.Code)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	_, editorCookie := env.seedUser(t, "editor@fund.example", auth.RoleEditor)
	_, adminCookie := env.seedUser(t, "admin@fund.example", auth.RoleAdmin)
	target, _ := env.seedUser(t, "target@fund.example", auth.RoleViewer)

	denied := env.do(t, http.MethodGet, "/api/users", nil, editorCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	list := env.do(t, http.MethodGet, "/api/users", nil, adminCookie)
	require.Equal(t, http.StatusOK, list.Code)

	var users []userResponse
	decodeInto(t, list, &users)
	assert.Len(t, users, 3)
	assert.NotContains(t, list.Body.String(), "passwordHash")

	// Promote the target.
	promoted := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/role",
		map[string]string{"role": "ANALYST"}, adminCookie)
	require.Equal(t, http.StatusOK, promoted.Code)

	var got userResponse
	decodeInto(t, promoted, &got)
	assert.Equal(t, "ANALYST", got.Role)

	// Unknown roles are rejected.
	bad := env.do(t, http.MethodPut, "/api/users/"+target.ID+"/role",
		map[string]string{"role": "SUPERUSER"}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestAdminCreatesUserWithRole(t *testing.T) {
	env := newTestEnv(t)

	_, adminCookie := env.seedUser(t, "admin@fund.example", auth.RoleAdmin)
	_, editorCookie := env.seedUser(t, "editor@fund.example", auth.RoleEditor)

	body := map[string]string{
		"email":    "provisioned@fund.example",
		"name":     "Provisioned",
		"password": "longenough",
		"role":     "EDITOR",
	}

	denied := env.do(t, http.MethodPost, "/api/users", body, editorCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	created := env.do(t, http.MethodPost, "/api/users", body, adminCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	var got userResponse
	decodeInto(t, created, &got)
	assert.Equal(t, "EDITOR", got.Role)

	// Provisioned accounts can log in with the assigned password.
	login := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "provisioned@fund.example",
		"password": "longenough",
	}, nil)
	assert.Equal(t, http.StatusOK, login.Code)
}

func TestAdminCannotDemoteOrDeleteSelf(t *testing.T) {
	env := newTestEnv(t)

	admin, adminCookie := env.seedUser(t, "admin@fund.example", auth.RoleAdmin)

	demote := env.do(t, http.MethodPut, "/api/users/"+admin.ID+"/role",
		map[string]string{"role": "VIEWER"}, adminCookie)
	assert.Equal(t, http.StatusBadRequest, demote.Code)

	del := env.do(t, http.MethodDelete, "/api/users/"+admin.ID, nil, adminCookie)
	assert.Equal(t, http.StatusBadRequest, del.Code)
}

func TestAPIKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)

	_, editorCookie := env.seedUser(t, "editor@fund.example", auth.RoleEditor)
	_, adminCookie := env.seedUser(t, "admin@fund.example", auth.RoleAdmin)

	denied := env.do(t, http.MethodPost, "/api/admin/apikeys",
		map[string]string{"name": "ci"}, editorCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	created := env.do(t, http.MethodPost, "/api/admin/apikeys",
		map[string]string{"name": "ci"}, adminCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	var resp struct {
		APIKey apiKeyResponse `json:"apiKey"`
		Secret string         `json:"secret"`
	}
	decodeInto(t, created, &resp)
	assert.True(t, strings.HasPrefix(resp.Secret, "iea_"))
	assert.True(t, strings.HasPrefix(resp.Secret, resp.APIKey.Prefix))
	assert.False(t, resp.APIKey.Disabled)

	// Listing never exposes the secret again.
	list := env.do(t, http.MethodGet, "/api/admin/apikeys", nil, adminCookie)
	require.Equal(t, http.StatusOK, list.Code)
	assert.NotContains(t, list.Body.String(), resp.Secret)

	disabled := env.do(t, http.MethodPut, "/api/admin/apikeys/"+resp.APIKey.ID+"/disabled",
		map[string]bool{"disabled": true}, adminCookie)
	require.Equal(t, http.StatusOK, disabled.Code)

	var key apiKeyResponse
	decodeInto(t, disabled, &key)
	assert.True(t, key.Disabled)

	deleted := env.do(t, http.MethodDelete, "/api/admin/apikeys/"+resp.APIKey.ID, nil, adminCookie)
	assert.Equal(t, http.StatusOK, deleted.Code)
}

func TestAPIKeyAuthenticatesRequests(t *testing.T) {
	env := newTestEnv(t)

	_, adminCookie := env.seedUser(t, "admin@fund.example", auth.RoleAdmin)

	created := env.do(t, http.MethodPost, "/api/admin/apikeys",
		map[string]string{"name": "ingest"}, adminCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	var resp struct {
		APIKey apiKeyResponse `json:"apiKey"`
		Secret string         `json:"secret"`
	}
	decodeInto(t, created, &resp)

	doWithKey := func(secret string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
		r.Header.Set("X-API-Key", secret)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, r)
		return w
	}

	// The key alone authenticates, acting as its creator.
	ok := doWithKey(resp.Secret)
	assert.Equal(t, http.StatusOK, ok.Code)

	// Use stamps the key's last-used timestamp.
	list := env.do(t, http.MethodGet, "/api/admin/apikeys", nil, adminCookie)
	require.Equal(t, http.StatusOK, list.Code)
	var keys []apiKeyResponse
	decodeInto(t, list, &keys)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)

	// A wrong secret does not authenticate.
	bad := doWithKey("iea_not-a-real-key")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	// Disabling the key revokes access immediately.
	disabled := env.do(t, http.MethodPut, "/api/admin/apikeys/"+resp.APIKey.ID+"/disabled",
		map[string]bool{"disabled": true}, adminCookie)
	require.Equal(t, http.StatusOK, disabled.Code)

	revoked := doWithKey(resp.Secret)
	assert.Equal(t, http.StatusUnauthorized, revoked.Code)
}

func TestAnalyticsSummaryPermissions(t *testing.T) {
	env := newTestEnv(t)

	_, viewerCookie := env.seedUser(t, "viewer@fund.example", auth.RoleViewer)
	_, analystCookie := env.seedUser(t, "analyst@fund.example", auth.RoleAnalyst)

	denied := env.do(t, http.MethodGet, "/api/analytics/summary", nil, viewerCookie)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	// Seed a report so the counts are non-trivial.
	created := env.do(t, http.MethodPost, "/api/reports",
		map[string]any{"title": "Counted"}, analystCookie)
	require.Equal(t, http.StatusCreated, created.Code)

	summary := env.do(t, http.MethodGet, "/api/analytics/summary", nil, analystCookie)
	require.Equal(t, http.StatusOK, summary.Code)

	var got analyticsSummary
	decodeInto(t, summary, &got)
	assert.Equal(t, 1, got.Reports)
	assert.Equal(t, 1, got.DraftReports)
	assert.Equal(t, 0, got.PublishedReports)
	assert.Equal(t, 2, got.Users)
}
