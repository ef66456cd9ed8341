package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *zap.Logger
}

func NewProductHandler(productService *service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// List godoc
// @Summary List products
// @Description Get the product catalogue in stored order
// @Tags Products
// @Produce json
// @Success 200 {array} domain.Product
// @Security BearerAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GetByID godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to get product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Save godoc
// @Summary Create or update product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.Product true "Product"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /products [post]
func (h *ProductHandler) Save(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decodeJSON(r, &product); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.productService.Save(r.Context(), scopeOf(r), &product)
	if err != nil {
		handleError(w, h.logger, err, "Failed to save product")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete godoc
// @Summary Delete product
// @Tags Products
// @Param id path string true "Product ID"
// @Success 204
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
