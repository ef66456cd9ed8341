package handler

import (
	"errors"
	"net/http"

	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead is the room left for the multipart envelope around an
// upload of the maximum size
const multipartOverhead = 64 << 10

type WorkbookHandler struct {
	workbookService *service.WorkbookService
	logger          *zap.Logger
}

func NewWorkbookHandler(workbookService *service.WorkbookService, logger *zap.Logger) *WorkbookHandler {
	return &WorkbookHandler{
		workbookService: workbookService,
		logger:          logger,
	}
}

// Summary godoc
// @Summary Workbook summary
// @Description Row counts of every table in canonical order
// @Tags Workbook
// @Produce json
// @Success 200 {array} domain.TableSummary
// @Security BearerAuth
// @Router /workbook [get]
func (h *WorkbookHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.workbookService.Summary(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to load workbook")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// Export godoc
// @Summary Export workbook
// @Description Downloads the scope's workbook as an xlsx file named quotations-YYYY-MM-DD.xlsx
// @Tags Workbook
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security BearerAuth
// @Router /workbook/export [get]
func (h *WorkbookHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.workbookService.Export(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to export workbook")
		return
	}
	respondFile(w, xlsxContentType, filename, data)
}

// Import godoc
// @Summary Import workbook
// @Description Replaces the scope's workbook with an uploaded xlsx file. Company, Product and Customer tables are required.
// @Tags Workbook
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook file"
// @Success 200 {object} domain.ImportResult
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /workbook/import [post]
func (h *WorkbookHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.workbookService.MaxImportBytes()+multipartOverhead)

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Upload exceeds the size limit")
			return
		}
		respondWithError(w, http.StatusBadRequest, "Missing file field in multipart form")
		return
	}
	defer file.Close()

	result, err := h.workbookService.Import(r.Context(), scopeOf(r), file)
	if err != nil {
		handleError(w, h.logger, err, "Failed to import workbook")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
