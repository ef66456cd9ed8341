package service

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

// TemplateService manages reusable terms text
type TemplateService struct {
	templateRepo *repository.TemplateRepository
	now          Clock
	logger       *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo *repository.TemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		now:          systemClock,
		logger:       logger,
	}
}

// List returns all templates, or only those of kind when it is set
func (s *TemplateService) List(ctx context.Context, scope string, kind domain.TemplateType) ([]domain.Template, error) {
	var (
		templates []domain.Template
		err       error
	)
	if kind == "" {
		templates, err = s.templateRepo.List(ctx, scope)
	} else {
		templates, err = s.templateRepo.ListByType(ctx, scope, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (s *TemplateService) GetByID(ctx context.Context, scope, id string) (*domain.Template, error) {
	return s.templateRepo.Get(ctx, scope, id)
}

// Save creates or updates a template
func (s *TemplateService) Save(ctx context.Context, scope string, template *domain.Template) (*domain.Template, error) {
	if err := validateStruct(template); err != nil {
		return nil, err
	}

	err := assignIdentity(&template.ID, &template.CreatedAt, &template.UpdatedAt, s.now(), func() (time.Time, error) {
		existing, err := s.templateRepo.Get(ctx, scope, template.ID)
		if err != nil {
			return time.Time{}, err
		}
		return existing.CreatedAt, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	if err := s.templateRepo.Upsert(ctx, scope, *template); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, scope, id string) error {
	if err := s.templateRepo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// SetDefault makes id the default template of its type
func (s *TemplateService) SetDefault(ctx context.Context, scope, id string) (*domain.Template, error) {
	if err := s.templateRepo.SetDefault(ctx, scope, id); err != nil {
		return nil, err
	}
	return s.templateRepo.Get(ctx, scope, id)
}
