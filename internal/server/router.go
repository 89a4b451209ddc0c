package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/config"
	appmiddleware "github.com/insightequity/alpha-api/internal/middleware"
	"github.com/insightequity/alpha-api/internal/repository"
	"github.com/insightequity/alpha-api/internal/services/reportgen"
)

// RouterOptions carries everything the router needs. All repository fields
// and the session/authorizer pair are required; CORSOptions defaults when
// nil.
type RouterOptions struct {
	Cfg          *config.Config
	Sessions     *auth.Sessions
	Authorizer   *auth.Authorizer
	Users        repository.UserRepository
	Companies    repository.CompanyRepository
	Reports      repository.ReportRepository
	MeetingNotes repository.MeetingNoteRepository
	APIKeys      repository.APIKeyRepository
	ReportGen    *reportgen.Generator
	CORSOptions  *cors.Options
}

// DefaultCORSOptions returns the shared development CORS policy.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles the chi router: shared middleware, the page gate over
// browser routes, and the JSON API under /api. API routes other than the
// anonymous auth endpoints sit behind the API authn middleware; each handler
// enforces its own permission on top of that.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	r.Get("/health", handleHealth)

	// Browser pages behind the gate.
	r.Group(func(pages chi.Router) {
		pages.Use(appmiddleware.NewPageGate(opts.Sessions))
		RegisterPageRoutes(pages)
	})

	r.Route("/api", func(api chi.Router) {
		// Anonymous auth endpoints.
		api.Post("/auth/register", HandleRegister(opts.Users, opts.Sessions))
		api.Post("/auth/login", HandleLogin(opts.Users, opts.Sessions))
		api.Post("/auth/logout", HandleLogout(opts.Sessions))

		// Everything else requires a session or an API key.
		api.Group(func(priv chi.Router) {
			priv.Use(appmiddleware.NewAPIAuthn(appmiddleware.APIAuthnDependencies{
				Sessions: opts.Sessions,
				APIKeys:  opts.APIKeys,
				Users:    opts.Users,
			}))

			priv.Get("/auth/me", HandleMe())

			priv.Get("/users", HandleListUsers(opts.Users, opts.Authorizer))
			priv.Post("/users", HandleCreateUser(opts.Users, opts.Authorizer))
			priv.Put("/users/{id}/role", HandleUpdateUserRole(opts.Users, opts.Authorizer))
			priv.Delete("/users/{id}", HandleDeleteUser(opts.Users, opts.Authorizer))

			priv.Get("/companies", HandleListCompanies(opts.Companies))
			priv.Post("/companies", HandleCreateCompany(opts.Companies, opts.Authorizer))
			priv.Get("/companies/{id}", HandleGetCompany(opts.Companies))
			priv.Put("/companies/{id}", HandleUpdateCompany(opts.Companies, opts.Authorizer))
			priv.Delete("/companies/{id}", HandleDeleteCompany(opts.Companies, opts.Authorizer))

			priv.Get("/reports", HandleListReports(opts.Reports, opts.Authorizer))
			priv.Post("/reports", HandleCreateReport(opts.Reports, opts.Authorizer))
			priv.Post("/reports/generate", HandleGenerateReport(opts.Reports, opts.Authorizer, opts.ReportGen))
			priv.Get("/reports/{id}", HandleGetReport(opts.Reports, opts.Authorizer))
			priv.Put("/reports/{id}", HandleUpdateReport(opts.Reports, opts.Authorizer))
			priv.Delete("/reports/{id}", HandleDeleteReport(opts.Reports, opts.Authorizer))
			priv.Post("/reports/{id}/publish", HandlePublishReport(opts.Reports, opts.Authorizer))

			priv.Get("/meetings", HandleListMeetingNotes(opts.MeetingNotes))
			priv.Post("/meetings", HandleCreateMeetingNote(opts.MeetingNotes, opts.Authorizer))
			priv.Get("/meetings/{id}", HandleGetMeetingNote(opts.MeetingNotes))
			priv.Put("/meetings/{id}", HandleUpdateMeetingNote(opts.MeetingNotes, opts.Authorizer))
			priv.Delete("/meetings/{id}", HandleDeleteMeetingNote(opts.MeetingNotes, opts.Authorizer))

			priv.Get("/analytics/summary", HandleAnalyticsSummary(
				opts.Companies, opts.Reports, opts.MeetingNotes, opts.Users, opts.Authorizer))

			priv.Get("/admin/apikeys", HandleListAPIKeys(opts.APIKeys, opts.Authorizer))
			priv.Post("/admin/apikeys", HandleCreateAPIKey(opts.APIKeys, opts.Authorizer))
			priv.Put("/admin/apikeys/{id}/disabled", HandleDisableAPIKey(opts.APIKeys, opts.Authorizer))
			priv.Delete("/admin/apikeys/{id}", HandleDeleteAPIKey(opts.APIKeys, opts.Authorizer))
		})
	})

	return r
}
