package handler

import (
	"net/http"

	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/render"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

// GenerateDocumentRequest is a fully composed document input with page options
type GenerateDocumentRequest struct {
	Input document.Input     `json:"input"`
	Page  render.PageOptions `json:"page"`
}

type DocumentHandler struct {
	documentService *service.DocumentService
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// Generate godoc
// @Summary Render ad-hoc document
// @Description Renders a quotation document from input supplied in the request instead of stored records
// @Tags Documents
// @Accept json
// @Produce application/pdf
// @Produce image/png
// @Param request body GenerateDocumentRequest true "Document input"
// @Success 200 {file} file
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.documentService.Generate(r.Context(), req.Input, req.Page)
	if err != nil {
		handleError(w, h.logger, err, "Failed to generate document")
		return
	}
	respondFile(w, doc.ContentType, doc.Filename, doc.Data)
}
