package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	documentService  *service.DocumentService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, documentService *service.DocumentService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		documentService:  documentService,
		logger:           logger,
	}
}

// List godoc
// @Summary List quotations
// @Description Get all quotations with their items
// @Tags Quotations
// @Produce json
// @Success 200 {array} domain.Quotation
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.quotationService.List(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to list quotations")
		return
	}
	respondJSON(w, http.StatusOK, quotations)
}

// Options godoc
// @Summary List quotation options
// @Description Get the currencies, trade terms, statuses and template types a quotation may use
// @Tags Quotations
// @Produce json
// @Success 200 {object} domain.QuotationOptions
// @Security BearerAuth
// @Router /options [get]
func (h *QuotationHandler) Options(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.quotationService.Options())
}

// GetByID godoc
// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.Quotation
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	quotation, err := h.quotationService.GetByID(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to get quotation")
		return
	}
	respondJSON(w, http.StatusOK, quotation)
}

// Save godoc
// @Summary Create or update quotation
// @Description Saves the header and replaces all stored items of the quotation. Number, dates, currency and totals are filled in when absent.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.Quotation true "Quotation with items"
// @Success 200 {object} domain.Quotation
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations [post]
func (h *QuotationHandler) Save(w http.ResponseWriter, r *http.Request) {
	var quotation domain.Quotation
	if err := decodeJSON(r, &quotation); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.quotationService.Save(r.Context(), scopeOf(r), &quotation)
	if err != nil {
		handleError(w, h.logger, err, "Failed to save quotation")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete godoc
// @Summary Delete quotation and its items
// @Tags Quotations
// @Param id path string true "Quotation ID"
// @Success 204
// @Security BearerAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quotationService.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err, "Failed to delete quotation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetItems godoc
// @Summary List quotation items
// @Description Items of the quotation ordered by sort order
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {array} domain.QuotationItem
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id}/items [get]
func (h *QuotationHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.quotationService.Items(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to list quotation items")
		return
	}
	respondJSON(w, http.StatusOK, items)
}

// Document godoc
// @Summary Render quotation document
// @Description Composes the stored quotation with its company, customer and products and returns a single-page PDF or PNG
// @Tags Documents
// @Accept json
// @Produce application/pdf
// @Produce image/png
// @Param id path string true "Quotation ID"
// @Param request body service.DocumentRequest false "Presentation and page options"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /quotations/{id}/document [post]
func (h *QuotationHandler) Document(w http.ResponseWriter, r *http.Request) {
	var req service.DocumentRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	doc, err := h.documentService.GenerateForQuotation(r.Context(), scopeOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		handleError(w, h.logger, err, "Failed to generate quotation document")
		return
	}
	respondFile(w, doc.ContentType, doc.Filename, doc.Data)
}
