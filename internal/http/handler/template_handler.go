package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type TemplateHandler struct {
	templateService *service.TemplateService
	logger          *zap.Logger
}

func NewTemplateHandler(templateService *service.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// List godoc
// @Summary List templates
// @Tags Templates
// @Produce json
// @Param type query string false "Filter by template type" Enums(payment, delivery, warranty, other)
// @Success 200 {array} domain.Template
// @Security BearerAuth
// @Router /templates [get]
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := domain.TemplateType(r.URL.Query().Get("type"))
	templates, err := h.templateService.List(r.Context(), scopeOf(r), kind)
	if err != nil {
		handleError(w, h.logger, err, "Failed to list templates")
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

// GetByID godoc
// @Summary Get template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} domain.Template
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	template, err := h.templateService.GetByID(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to get template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}

// Save godoc
// @Summary Create or update template
// @Description A template saved as default becomes the only default of its type
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body domain.Template true "Template"
// @Success 200 {object} domain.Template
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /templates [post]
func (h *TemplateHandler) Save(w http.ResponseWriter, r *http.Request) {
	var template domain.Template
	if err := decodeJSON(r, &template); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.templateService.Save(r.Context(), scopeOf(r), &template)
	if err != nil {
		handleError(w, h.logger, err, "Failed to save template")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete godoc
// @Summary Delete template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Security BearerAuth
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.templateService.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault godoc
// @Summary Set default template of its type
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} domain.Template
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /templates/{id}/default [post]
func (h *TemplateHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	template, err := h.templateService.SetDefault(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to set default template")
		return
	}
	respondJSON(w, http.StatusOK, template)
}
