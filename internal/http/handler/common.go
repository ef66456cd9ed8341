package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondFile sends a download with a Content-Disposition filename
func respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, ve *domain.ValidationError) {
	fields := make(map[string]string, len(ve.Fields)+len(ve.Missing))
	for k, v := range ve.Fields {
		fields[k] = v
	}
	for _, table := range ve.Missing {
		fields[table] = "required table is missing"
	}

	respondJSON(w, http.StatusBadRequest, domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: ve.Error(),
		Errors: fields,
	})
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// handleError maps service errors to RFC 7807 responses. Unexpected errors
// are logged with msg and reported without detail.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error, msg string) {
	var (
		ve *domain.ValidationError
		nf *domain.NotFoundError
		re *domain.RenderError
	)
	switch {
	case errors.As(err, &ve):
		respondValidationError(w, ve)
	case errors.As(err, &nf):
		respondWithError(w, http.StatusNotFound, nf.Error())
	case errors.Is(err, domain.ErrStaleWorkbook):
		respondWithError(w, http.StatusConflict, "The workbook was changed by another request. Reload and try again.")
	case errors.Is(err, service.ErrEmptyUpload), errors.Is(err, service.ErrUnsupportedAsset):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &re):
		logger.Error(msg, zap.String("stage", re.Stage), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.APIError{
			Type:   domain.ErrorTypeRender,
			Title:  "Render Error",
			Status: http.StatusInternalServerError,
			Detail: fmt.Sprintf("Document rendering failed during %s", re.Stage),
		})
	default:
		logger.Error(msg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, msg)
	}
}

// decodeJSON reads the request body into target
func decodeJSON(r *http.Request, target interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// scopeOf returns the workbook scope resolved by the scope middleware
func scopeOf(r *http.Request) string {
	return auth.ScopeID(r.Context())
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return domain.ErrorTypeUnauthorized
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	default:
		return domain.ErrorTypeInternal
	}
}
