package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/service"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerService *service.CustomerService
	logger          *zap.Logger
}

func NewCustomerHandler(customerService *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List customers
// @Tags Customers
// @Produce json
// @Success 200 {array} domain.Customer
// @Security BearerAuth
// @Router /customers [get]
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customerService.List(r.Context(), scopeOf(r))
	if err != nil {
		handleError(w, h.logger, err, "Failed to list customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// GetByID godoc
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customerService.GetByID(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err, "Failed to get customer")
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// Save godoc
// @Summary Create or update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body domain.Customer true "Customer"
// @Success 200 {object} domain.Customer
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Router /customers [post]
func (h *CustomerHandler) Save(w http.ResponseWriter, r *http.Request) {
	var customer domain.Customer
	if err := decodeJSON(r, &customer); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.customerService.Save(r.Context(), scopeOf(r), &customer)
	if err != nil {
		handleError(w, h.logger, err, "Failed to save customer")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// Delete godoc
// @Summary Delete customer
// @Tags Customers
// @Param id path string true "Customer ID"
// @Success 204
// @Security BearerAuth
// @Router /customers/{id} [delete]
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.customerService.Delete(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err, "Failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
