package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type CompanyHandler struct {
	companyService *service.CompanyService
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// List godoc
// @Summary List companies
// @Description Get all issuing companies in stored order
// @Tags Companies
// @Produce json
// @Success 200 {array} domain.Company
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /companies [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyService.List(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to list companies")
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

// GetByID godoc
// @Summary Get company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} domain.Company
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.GetByID(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to get company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// Save godoc
// @Summary Create or update company
// @Description Inserts a company, or replaces the company with the same id. A company saved as default becomes the only default.
// @Tags Companies
// @Accept json
// @Produce json
// @Param request body domain.Company true "Company"
// @Success 200 {object} domain.Company
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /companies [post]
func (h *CompanyHandler) Save(w http.ResponseWriter, r *http.Request) {
	var company domain.Company
	if err := decodeJSON(r, &company); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.companyService.Save(r.Context(), scopeOf(r), &company)
	if err != nil {
		handleError(w, h.logger, err, "Failed to save company")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete godoc
// @Summary Delete company
// @Description Deleting an unknown id is not an error
// @Tags Companies
// @Param id path string true "Company ID"
// @Success 204
// @Security BearerAuth
// @Router /companies/{id} [delete]
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companyService.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err, "Failed to delete company")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault godoc
// @Summary Set default company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} domain.Company
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /companies/{id}/default [post]
func (h *CompanyHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	company, err := h.companyService.SetDefault(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to set default company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}
