package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

type meetingNoteRequest struct {
	Title       string                `json:"title"`
	CompanyID   *string               `json:"companyId"`
	MeetingDate time.Time             `json:"meetingDate"`
	Content     string                `json:"content"`
	Attendees   models.StringList     `json:"attendees"`
	Attachments models.AttachmentList `json:"attachments"`
}

// HandleListMeetingNotes returns meeting notes. Reads are open to any
// authenticated principal; only writes require manage_meeting_notes.
func HandleListMeetingNotes(notes repository.MeetingNoteRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requirePrincipal(w, r); !ok {
			return
		}

		var (
			list []models.MeetingNote
			err  error
		)
		if companyID := r.URL.Query().Get("companyId"); companyID != "" {
			list, err = notes.ListByCompany(r.Context(), companyID)
		} else {
			list, err = notes.List(r.Context())
		}
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// HandleGetMeetingNote returns one meeting note by ID.
func HandleGetMeetingNote(notes repository.MeetingNoteRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requirePrincipal(w, r); !ok {
			return
		}
		note, err := notes.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

// HandleCreateMeetingNote records a meeting. Requires manage_meeting_notes.
func HandleCreateMeetingNote(notes repository.MeetingNoteRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageMeetingNotes); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req meetingNoteRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if req.MeetingDate.IsZero() {
			writeError(w, http.StatusBadRequest, "meetingDate is required")
			return
		}

		note := &models.MeetingNote{
			Title:       req.Title,
			CompanyID:   req.CompanyID,
			MeetingDate: req.MeetingDate,
			Content:     req.Content,
			Attendees:   req.Attendees,
			Attachments: req.Attachments,
			CreatedBy:   principal.UserID,
		}
		if err := notes.Create(r.Context(), note); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	}
}

// HandleUpdateMeetingNote edits a meeting note. Requires
// manage_meeting_notes; there is no ownership tier for notes.
func HandleUpdateMeetingNote(notes repository.MeetingNoteRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageMeetingNotes); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		note, err := notes.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}

		var req meetingNoteRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if req.MeetingDate.IsZero() {
			writeError(w, http.StatusBadRequest, "meetingDate is required")
			return
		}

		note.Title = req.Title
		note.CompanyID = req.CompanyID
		note.MeetingDate = req.MeetingDate
		note.Content = req.Content
		note.Attendees = req.Attendees
		note.Attachments = req.Attachments

		if err := notes.Update(r.Context(), note); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

// HandleDeleteMeetingNote removes a meeting note. Requires
// manage_meeting_notes.
func HandleDeleteMeetingNote(notes repository.MeetingNoteRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageMeetingNotes); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		if err := notes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
