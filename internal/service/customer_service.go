package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// CustomerService manages quotation recipients
type CustomerService struct {
	customerRepo *repository.CustomerRepository
	now          Clock
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo *repository.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		now:          systemClock,
		logger:       logger,
	}
}

func (s *CustomerService) List(ctx context.Context, scope string) ([]domain.Customer, error) {
	customers, err := s.customerRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (s *CustomerService) GetByID(ctx context.Context, scope, id string) (*domain.Customer, error) {
	return s.customerRepo.Get(ctx, scope, id)
}

// Save creates or updates a customer
func (s *CustomerService) Save(ctx context.Context, scope string, customer *domain.Customer) (*domain.Customer, error) {
	if err := validateStruct(customer); err != nil {
		return nil, err
	}

	err := assignIdentity(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt, s.now(), func() (time.Time, error) {
		existing, err := s.customerRepo.Get(ctx, scope, customer.ID)
		if err != nil {
			return time.Time{}, err
		}
		return existing.CreatedAt, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	if err := s.customerRepo.Upsert(ctx, scope, *customer); err != nil {
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	return customer, nil
}

func (s *CustomerService) Delete(ctx context.Context, scope, id string) error {
	if err := s.customerRepo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
