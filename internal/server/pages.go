package server

import (
	"fmt"
	"html"
	"net/http"

	"github.com/insightequity/alpha-api/internal/auth"
)

// The page handlers serve minimal HTML shells. The real UI is a separate
// frontend; these exist so the page gate has concrete routes to guard and so
// the server is usable standalone during development.

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>%s | Insight Equity Alpha</title>
</head>
<body>
  <h1>%s</h1>
  %s
</body>
</html>
`

func servePage(title, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, pageTemplate, title, title, body)
	}
}

// HandleHomePage greets the signed-in principal. The email is user-supplied
// and must be escaped before it lands in markup.
func HandleHomePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFromContext(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		body := fmt.Sprintf("<p>Signed in as %s (%s)</p>",
			html.EscapeString(principal.Email), html.EscapeString(string(principal.Role)))
		fmt.Fprintf(w, pageTemplate, "Home", "Home", body)
	}
}

// RegisterPageRoutes mounts the browser page routes. Every route here sits
// behind the page gate except /login and /register, which the gate lets
// through by prefix.
func RegisterPageRoutes(r interface {
	Get(pattern string, h http.HandlerFunc)
}) {
	r.Get("/", servePage("Insight Equity Alpha", "<p>VC research workspace.</p>"))
	r.Get("/login", servePage("Log in", `<p><a href="/register">Need an account?</a></p>`))
	r.Get("/register", servePage("Register", `<p><a href="/login">Already registered?</a></p>`))
	r.Get("/home", HandleHomePage())
	r.Get("/dashboard", servePage("Dashboard", "<p>Portfolio overview.</p>"))
	r.Get("/dashboard/admin", servePage("Admin Dashboard", "<p>Administration.</p>"))
	r.Get("/companies", servePage("Companies", "<p>Portfolio companies.</p>"))
	r.Get("/reports", servePage("Reports", "<p>Research reports.</p>"))
	r.Get("/meetings", servePage("Meetings", "<p>Meeting notes.</p>"))
	r.Get("/admin", servePage("Admin", "<p>Administration.</p>"))
}
