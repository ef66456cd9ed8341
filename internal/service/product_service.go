package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// ProductService manages the product catalogue
type ProductService struct {
	productRepo *repository.ProductRepository
	now         Clock
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo *repository.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		now:         systemClock,
		logger:      logger,
	}
}

func (s *ProductService) List(ctx context.Context, scope string) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) GetByID(ctx context.Context, scope, id string) (*domain.Product, error) {
	return s.productRepo.Get(ctx, scope, id)
}

// Save creates or updates a product. The price range must not be inverted.
func (s *ProductService) Save(ctx context.Context, scope string, product *domain.Product) (*domain.Product, error) {
	if err := validateStruct(product); err != nil {
		return nil, err
	}
	if product.MaxPrice > 0 && product.MinPrice > product.MaxPrice {
		return nil, domain.NewFieldError("maxPrice", "must be at least minPrice")
	}
	if product.Specifications == nil {
		product.Specifications = map[string]string{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	err := assignIdentity(&product.ID, &product.CreatedAt, &product.UpdatedAt, s.now(), func() (time.Time, error) {
		existing, err := s.productRepo.Get(ctx, scope, product.ID)
		if err != nil {
			return time.Time{}, err
		}
		return existing.CreatedAt, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if err := s.productRepo.Upsert(ctx, scope, *product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, scope, id string) error {
	if err := s.productRepo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}
