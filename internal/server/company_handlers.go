package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

type companyRequest struct {
	Name         string `json:"name"`
	Industry     string `json:"industry"`
	FundingStage string `json:"fundingStage"`
	Location     string `json:"location"`
	Employees    int    `json:"employees"`
	Website      string `json:"website"`
	Description  string `json:"description"`
}

// HandleListCompanies returns every company. Any authenticated principal
// may read the portfolio.
func HandleListCompanies(companies repository.CompanyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requirePrincipal(w, r); !ok {
			return
		}
		list, err := companies.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// HandleGetCompany returns one company by ID.
func HandleGetCompany(companies repository.CompanyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requirePrincipal(w, r); !ok {
			return
		}
		company, err := companies.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	}
}

// HandleCreateCompany adds a company. Requires manage_company_tables.
func HandleCreateCompany(companies repository.CompanyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageCompanyTables); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		var req companyRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		company := &models.Company{
			Name:         req.Name,
			Industry:     req.Industry,
			FundingStage: req.FundingStage,
			Location:     req.Location,
			Employees:    req.Employees,
			Website:      req.Website,
			Description:  req.Description,
		}
		if err := companies.Create(r.Context(), company); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, company)
	}
}

// HandleUpdateCompany updates a company. Requires manage_company_tables.
func HandleUpdateCompany(companies repository.CompanyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageCompanyTables); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		company, err := companies.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}

		var req companyRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		company.Name = req.Name
		company.Industry = req.Industry
		company.FundingStage = req.FundingStage
		company.Location = req.Location
		company.Employees = req.Employees
		company.Website = req.Website
		company.Description = req.Description

		if err := companies.Update(r.Context(), company); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, company)
	}
}

// HandleDeleteCompany removes a company. Requires manage_company_tables.
func HandleDeleteCompany(companies repository.CompanyRepository, authz *auth.Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := authz.RequirePermission(&principal, auth.PermManageCompanyTables); err != nil {
			writeError(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		if err := companies.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
