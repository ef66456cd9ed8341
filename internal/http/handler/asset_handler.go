package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type AssetHandler struct {
	assetService *service.AssetService
	maxUploadMB  int64
	logger       *zap.Logger
}

func NewAssetHandler(assetService *service.AssetService, maxUploadMB int64, logger *zap.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		maxUploadMB:  maxUploadMB,
		logger:       logger,
	}
}

// @Summary Upload asset
// @Description Stores a logo or product image and returns the reference to put on a company or product
// @Tags Assets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file (png, jpeg, gif, bmp, webp)"
// @Success 201 {object} domain.AssetDTO
// @Failure 400 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Router /assets [post]
func (h *AssetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	asset, err := h.assetService.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handleError(w, h.logger, err, "Failed to upload asset")
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

// @Summary Download asset
// @Tags Assets
// @Produce application/octet-stream
// @Param reference path string true "Asset reference"
// @Success 200
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /assets/{reference} [get]
func (h *AssetHandler) Download(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "*")

	reader, contentType, err := h.assetService.Download(r.Context(), reference)
	if err != nil {
		handleError(w, h.logger, err, "Failed to download asset")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = io.Copy(w, reader)
}

// @Summary Delete asset
// @Tags Assets
// @Param reference path string true "Asset reference"
// @Success 204
// @Security BearerAuth
// @Router /assets/{reference} [delete]
func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assetService.Delete(r.Context(), chi.URLParam(r, "*")); err != nil {
		handleError(w, h.logger, err, "Failed to delete asset")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
