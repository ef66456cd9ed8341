package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/straye-as/quotation-api/internal/document"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/straye-as/quotation-api/internal/render"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DocumentFilename returns the download name for a rendered quotation
func DocumentFilename(number string, format render.Format) string {
	if number == "" {
		number = "draft"
	}
	return fmt.Sprintf("Quotation-%s.%s", unsafeFilenameChars.ReplaceAllString(number, "_"), format.Extension())
}

// DocumentRequest selects presentation and page options for a stored quotation
type DocumentRequest struct {
	Options document.Options   `json:"options"`
	Page    render.PageOptions `json:"page"`
}

// GeneratedDocument is an encoded quotation document ready for download
type GeneratedDocument struct {
	Data        []byte
	ContentType string
	Filename    string
}

// DocumentService composes and renders quotation documents
type DocumentService struct {
	quotationRepo *repository.QuotationRepository
	companyRepo   *repository.CompanyRepository
	customerRepo  *repository.CustomerRepository
	productRepo   *repository.ProductRepository
	renderer      *render.Renderer
	logger        *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	quotationRepo *repository.QuotationRepository,
	companyRepo *repository.CompanyRepository,
	customerRepo *repository.CustomerRepository,
	productRepo *repository.ProductRepository,
	renderer *render.Renderer,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		quotationRepo: quotationRepo,
		companyRepo:   companyRepo,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		renderer:      renderer,
		logger:        logger,
	}
}

// GenerateForQuotation renders a stored quotation with its company, customer and products
func (s *DocumentService) GenerateForQuotation(ctx context.Context, scope, quotationID string, req DocumentRequest) (*GeneratedDocument, error) {
	quotation, err := s.quotationRepo.Get(ctx, scope, quotationID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.Get(ctx, scope, quotation.CompanyID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.Get(ctx, scope, quotation.CustomerID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.ByID(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	input := mapper.ToDocumentInput(company, customer, quotation, products, req.Options)
	return s.Generate(ctx, input, req.Page)
}

// Generate validates input, composes the document and renders one page
func (s *DocumentService) Generate(ctx context.Context, input document.Input, page render.PageOptions) (*GeneratedDocument, error) {
	if err := validateStruct(&input); err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	doc := document.Compose(input)
	out, err := s.renderer.Render(ctx, doc, page)
	if err != nil {
		s.logger.Error("failed to render quotation document",
			zap.String("number", input.Quotation.Number),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("quotation document generated",
		zap.String("number", input.Quotation.Number),
		zap.String("contentType", out.ContentType),
		zap.Int("bytes", len(out.Data)))

	return &GeneratedDocument{
		Data:        out.Data,
		ContentType: out.ContentType,
		Filename:    DocumentFilename(input.Quotation.Number, render.Format(out.Extension)),
	}, nil
}

func validatePage(page render.PageOptions) error {
	switch page.Format {
	case "", render.FormatPDF, render.FormatPNG:
	default:
		return domain.NewFieldError("page.format", "must be one of: pdf png")
	}
	switch page.Orientation {
	case "", render.Portrait, render.Landscape:
	default:
		return domain.NewFieldError("page.orientation", "must be one of: portrait landscape")
	}
	if m := page.Margins; m != nil && (m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0) {
		return domain.NewFieldError("page.margins", "must not be negative")
	}
	return nil
}
