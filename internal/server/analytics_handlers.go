package server

import (
	"net/http"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

// analyticsSummary aggregates portfolio counts for the dashboard.
type analyticsSummary struct {
	Companies          int `json:"companies"`
	Reports            int `json:"reports"`
	PublishedReports   int `json:"publishedReports"`
	DraftReports       int `json:"draftReports"`
	AIGeneratedReports int `json:"aiGeneratedReports"`
	MeetingNotes       int `json:"meetingNotes"`
	Users              int `json:"users"`
}

// HandleAnalyticsSummary returns portfolio-wide counts. Requires
// view_analytics. User counts are included even though listing users needs
// manage_users; a count discloses no account details.
func HandleAnalyticsSummary(
	companies repository.CompanyRepository,
	reports repository.ReportRepository,
	notes repository.MeetingNoteRepository,
	users repository.UserRepository,
	authz *auth.Authorizer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermViewAnalytics); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		ctx := r.Context()
		var summary analyticsSummary

		companyList, err := companies.List(ctx)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		summary.Companies = len(companyList)

		reportList, err := reports.List(ctx)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		summary.Reports = len(reportList)
		for _, rep := range reportList {
			if rep.Status == models.ReportStatusPublished {
				summary.PublishedReports++
			} else {
				summary.DraftReports++
			}
			if rep.GeneratedByAI {
				summary.AIGeneratedReports++
			}
		}

		noteList, err := notes.List(ctx)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		summary.MeetingNotes = len(noteList)

		userList, err := users.List(ctx)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		summary.Users = len(userList)

		writeJSON(w, http.StatusOK, summary)
	}
}
