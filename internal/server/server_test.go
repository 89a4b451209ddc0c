package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/crypto/bcrypt"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/config"
	"github.com/insightequity/alpha-api/internal/db/bunx"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/migrations"
	"github.com/insightequity/alpha-api/internal/repository"
	"github.com/insightequity/alpha-api/internal/services/reportgen"
)

type testEnv struct {
	router   chi.Router
	db       *bun.DB
	sessions *auth.Sessions
	users    *repository.BunUserRepository
	reports  *repository.BunReportRepository
}

// newTestEnv boots the full router over an in-memory SQLite database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:   "server-test-secret",
		SessionTTL:  time.Hour,
		Environment: "test",
	}
	sessions := auth.NewSessions(cfg)
	authorizer, err := auth.NewAuthorizer()
	require.NoError(t, err)

	users := repository.NewBunUserRepository(db)
	reports := repository.NewBunReportRepository(db)

	router := NewRouter(RouterOptions{
		Cfg:          cfg,
		Sessions:     sessions,
		Authorizer:   authorizer,
		Users:        users,
		Companies:    repository.NewBunCompanyRepository(db),
		Reports:      reports,
		MeetingNotes: repository.NewBunMeetingNoteRepository(db),
		APIKeys:      repository.NewBunAPIKeyRepository(db),
		ReportGen:    reportgen.NewGenerator(),
	})

	return &testEnv{
		router:   router,
		db:       db,
		sessions: sessions,
		users:    users,
		reports:  reports,
	}
}

// seedUser inserts an account and returns it with a session cookie minted
// for it.
func (e *testEnv) seedUser(t *testing.T, email string, role auth.Role) (*models.User, *http.Cookie) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	user := &models.User{
		Email:        email,
		Name:         "Seeded User",
		PasswordHash: &hashStr,
		Role:         string(role),
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, err := e.sessions.Issue(auth.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	})
	require.NoError(t, err)

	return user, &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

// do sends a JSON request through the router. body may be nil; cookie may be
// nil for anonymous requests.
func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

// authCookie extracts the auth cookie from a response, failing if absent.
func authCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", auth.SessionCookieName)
	return nil
}
