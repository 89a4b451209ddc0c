package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
	"github.com/insightequity/alpha-api/internal/services/reportgen"
)

type reportRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Summary   string  `json:"summary"`
	CompanyID *string `json:"companyId"`
}

// HandleListReports returns reports visible to the principal. Requires
// view_reports, which every role holds today; the check stays so a future
// restricted role is denied by default.
func HandleListReports(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermViewReports); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var (
			list []models.Report
			err  error
		)
		if companyID := r.URL.Query().Get("companyId"); companyID != "" {
			list, err = reports.ListByCompany(r.Context(), companyID)
		} else if r.URL.Query().Get("mine") == "true" {
			list, err = reports.ListByAuthor(r.Context(), principal.UserID)
		} else {
			list, err = reports.List(r.Context())
		}
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// HandleGetReport returns one report by ID. Requires view_reports.
func HandleGetReport(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermViewReports); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		report, err := reports.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// HandleCreateReport creates a draft report authored by the principal.
// Requires create_report.
func HandleCreateReport(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermCreateReport); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req reportRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		report := &models.Report{
			Title:     req.Title,
			Content:   req.Content,
			Summary:   req.Summary,
			CompanyID: req.CompanyID,
			AuthorID:  principal.UserID,
			Status:    models.ReportStatusDraft,
		}
		if err := reports.Create(r.Context(), report); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}

// HandleUpdateReport edits a report. Ownership rules: edit_any_report
// allows editing anyone's report, edit_own_report only the principal's own.
func HandleUpdateReport(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}

		report, err := reports.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		if !authz.CanEditReport(&principal, report.AuthorID) {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req reportRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		report.Title = req.Title
		report.Content = req.Content
		report.Summary = req.Summary
		report.CompanyID = req.CompanyID

		if err := reports.Update(r.Context(), report); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// HandleDeleteReport removes a report. Requires delete_any_report; there is
// no delete-own tier.
func HandleDeleteReport(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if !authz.CanDeleteReport(&principal) {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		if err := reports.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// HandlePublishReport transitions a draft to published and stamps
// published_at. Requires publish_report.
func HandlePublishReport(reports repository.ReportRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if !authz.CanPublishReport(&principal) {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		id := chi.URLParam(r, "id")
		report, err := reports.GetByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		if report.Status == models.ReportStatusPublished {
			writeError(w, http.StatusConflict, "report is already published")
			return
		}

		now := time.Now()
		if err := reports.SetStatus(r.Context(), id, models.ReportStatusPublished, &now); err != nil {
			writeRepoError(w, err)
			return
		}

		report, err = reports.GetByID(r.Context(), id)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// HandleGenerateReport produces a canned draft analysis attributed to the
// authenticated principal. The author is never taken from the request body.
// Requires create_report.
func HandleGenerateReport(reports repository.ReportRepository, authz *auth.Authorizer, gen *reportgen.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermCreateReport); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req struct {
			CompanyID string `json:"companyId"`
		}
		if !decodeBody(w, r, &req) {
			return
		}

		report := gen.Generate(req.CompanyID, principal.UserID)
		if err := reports.Create(r.Context(), report); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}
