package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// CompanyService manages issuing companies and the default company flag
type CompanyService struct {
	companyRepo *repository.CompanyRepository
	now         Clock
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		now:         systemClock,
		logger:      logger,
	}
}

// SetClock replaces the time source used for timestamps
func (s *CompanyService) SetClock(clock Clock) {
	s.now = clock
}

// List returns all companies in stored order
func (s *CompanyService) List(ctx context.Context, scope string) ([]domain.Company, error) {
	companies, err := s.companyRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetByID returns one company
func (s *CompanyService) GetByID(ctx context.Context, scope, id string) (*domain.Company, error) {
	return s.companyRepo.Get(ctx, scope, id)
}

// GetDefault returns the default company
func (s *CompanyService) GetDefault(ctx context.Context, scope string) (*domain.Company, error) {
	return s.companyRepo.GetDefault(ctx, scope)
}

// Save creates or updates a company. A company saved as default becomes the only default.
func (s *CompanyService) Save(ctx context.Context, scope string, company *domain.Company) (*domain.Company, error) {
	if err := validateStruct(company); err != nil {
		return nil, err
	}

	err := assignIdentity(&company.ID, &company.CreatedAt, &company.UpdatedAt, s.now(), func() (time.Time, error) {
		existing, err := s.companyRepo.Get(ctx, scope, company.ID)
		if err != nil {
			return time.Time{}, err
		}
		return existing.CreatedAt, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	if err := s.companyRepo.Upsert(ctx, scope, *company); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	s.logger.Info("company saved",
		zap.String("scope", scope),
		zap.String("companyID", company.ID),
		zap.Bool("isDefault", company.IsDefault))
	return company, nil
}

// Delete removes a company. Quotations referencing it keep the dangling id.
func (s *CompanyService) Delete(ctx context.Context, scope, id string) error {
	if err := s.companyRepo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

// SetDefault makes id the single default company
func (s *CompanyService) SetDefault(ctx context.Context, scope, id string) (*domain.Company, error) {
	if err := s.companyRepo.SetDefault(ctx, scope, id); err != nil {
		return nil, err
	}
	s.logger.Info("default company changed", zap.String("scope", scope), zap.String("companyID", id))
	return s.companyRepo.Get(ctx, scope, id)
}
