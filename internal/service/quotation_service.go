package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
)

const (
	// DefaultCurrency is used when neither the quotation nor its first product names one
	DefaultCurrency = "USD"
	// DefaultValidityDays is the gap between quotation date and expiry date for new quotations
	DefaultValidityDays = 30
)

// QuotationService manages quotations and their items
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	itemRepo      *repository.QuotationItemRepository
	productRepo   *repository.ProductRepository
	currencies    []string
	incoterms     []string
	now           Clock
	logger        *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	itemRepo *repository.QuotationItemRepository,
	productRepo *repository.ProductRepository,
	allowed domain.QuotationOptions,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		itemRepo:      itemRepo,
		productRepo:   productRepo,
		currencies:    upperAll(allowed.Currencies),
		incoterms:     upperAll(allowed.Incoterms),
		now:           systemClock,
		logger:        logger,
	}
}

// SetClock replaces the time source used for dates and timestamps
func (s *QuotationService) SetClock(clock Clock) {
	s.now = clock
}

// Options returns the values a client may choose from when composing a quotation
func (s *QuotationService) Options() domain.QuotationOptions {
	return domain.QuotationOptions{
		Currencies: append([]string{}, s.currencies...),
		Incoterms:  append([]string{}, s.incoterms...),
		Statuses: []domain.QuotationStatus{
			domain.QuotationStatusDraft,
			domain.QuotationStatusSent,
			domain.QuotationStatusAccepted,
			domain.QuotationStatusRejected,
			domain.QuotationStatusExpired,
		},
		TemplateTypes: []domain.TemplateType{
			domain.TemplateTypePayment,
			domain.TemplateTypeDelivery,
			domain.TemplateTypeWarranty,
			domain.TemplateTypeOther,
		},
	}
}

// List returns all quotations with their items
func (s *QuotationService) List(ctx context.Context, scope string) ([]domain.Quotation, error) {
	quotations, err := s.quotationRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	return quotations, nil
}

// GetByID returns a quotation with its items in order
func (s *QuotationService) GetByID(ctx context.Context, scope, id string) (*domain.Quotation, error) {
	return s.quotationRepo.Get(ctx, scope, id)
}

// Items returns the items of a quotation ordered by sort order
func (s *QuotationService) Items(ctx context.Context, scope, id string) ([]domain.QuotationItem, error) {
	if _, err := s.quotationRepo.Get(ctx, scope, id); err != nil {
		return nil, err
	}
	return s.itemRepo.ListByQuotation(ctx, scope, id)
}

// Save creates or updates a quotation. The stored items of the quotation are
// replaced by q.Items. On update, number, status, dates and currency left
// empty keep their stored values.
func (s *QuotationService) Save(ctx context.Context, scope string, q *domain.Quotation) (*domain.Quotation, error) {
	now := s.now()

	products, err := s.productRepo.ByID(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	stored, err := s.stored(ctx, scope, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	s.fillItems(q, products)
	if err := s.applyDefaults(ctx, scope, q, stored, products, now); err != nil {
		return nil, err
	}
	if err := s.validateQuotation(q); err != nil {
		return nil, err
	}
	s.checkItems(scope, q, products)

	CalculateTotals(q)

	if err := assignIdentity(&q.ID, &q.CreatedAt, &q.UpdatedAt, now, func() (time.Time, error) {
		if stored == nil {
			return time.Time{}, &domain.NotFoundError{Entity: "quotation", ID: q.ID}
		}
		return stored.CreatedAt, nil
	}); err != nil {
		return nil, fmt.Errorf("failed to load quotation: %w", err)
	}

	for i := range q.Items {
		if q.Items[i].ID == "" {
			q.Items[i].ID = uuid.NewString()
		}
		if q.Items[i].Images == nil {
			q.Items[i].Images = []string{}
		}
		q.Items[i].QuotationID = q.ID
		q.Items[i].SortOrder = i
	}

	if err := s.quotationRepo.Save(ctx, scope, *q); err != nil {
		return nil, fmt.Errorf("failed to save quotation: %w", err)
	}

	s.logger.Info("quotation saved",
		zap.String("scope", scope),
		zap.String("quotationID", q.ID),
		zap.String("number", q.QuotationNumber),
		zap.Int("items", len(q.Items)),
		zap.Float64("total", q.TotalAmount))
	return q, nil
}

// Delete removes a quotation and its items
func (s *QuotationService) Delete(ctx context.Context, scope, id string) error {
	if err := s.quotationRepo.Delete(ctx, scope, id); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	return nil
}

// fillItems copies product name and unit onto items that reference a product
// without stating them
func (s *QuotationService) fillItems(q *domain.Quotation, products map[string]domain.Product) {
	for i := range q.Items {
		item := &q.Items[i]
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		if item.ProductName == "" {
			item.ProductName = product.Name
		}
		if item.Unit == "" {
			item.Unit = product.Unit
		}
	}
}

// stored returns the persisted quotation with id, nil when it is new
func (s *QuotationService) stored(ctx context.Context, scope, id string) (*domain.Quotation, error) {
	if id == "" {
		return nil, nil
	}
	existing, err := s.quotationRepo.Get(ctx, scope, id)
	if domain.IsNotFound(err) {
		return nil, nil
	}
	return existing, err
}

func (s *QuotationService) applyDefaults(ctx context.Context, scope string, q, stored *domain.Quotation, products map[string]domain.Product, now time.Time) error {
	if stored != nil {
		if q.QuotationNumber == "" {
			q.QuotationNumber = stored.QuotationNumber
		}
		if q.Status == "" {
			q.Status = stored.Status
		}
		if q.QuotationDate == "" {
			q.QuotationDate = stored.QuotationDate
		}
		if q.ExpiryDate == "" {
			q.ExpiryDate = stored.ExpiryDate
		}
		if q.Currency == "" {
			q.Currency = stored.Currency
		}
	}

	if q.Status == "" {
		q.Status = domain.QuotationStatusDraft
	}
	if q.QuotationDate == "" {
		q.QuotationDate = domain.DateOf(now)
	}
	if q.ExpiryDate == "" {
		q.ExpiryDate = q.QuotationDate.AddDays(DefaultValidityDays)
	}
	if q.Currency == "" {
		q.Currency = DefaultCurrency
		if len(q.Items) > 0 {
			if p, ok := products[q.Items[0].ProductID]; ok && p.Currency != "" {
				q.Currency = p.Currency
			}
		}
	}
	q.Currency = strings.ToUpper(q.Currency)
	q.TradeTerms = strings.ToUpper(strings.TrimSpace(q.TradeTerms))

	if q.QuotationNumber == "" {
		number, err := s.nextNumber(ctx, scope, q.ID, q.QuotationDate)
		if err != nil {
			return err
		}
		q.QuotationNumber = number
	}
	return nil
}

// nextNumber returns Q-YYYYMMDD-NNN where NNN counts the quotations already
// dated that day. A number held by another quotation is skipped.
func (s *QuotationService) nextNumber(ctx context.Context, scope, id string, date domain.Date) (string, error) {
	existing, err := s.quotationRepo.List(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("failed to number quotation: %w", err)
	}
	taken := make(map[string]bool, len(existing))
	count := 0
	for _, q := range existing {
		if q.ID == id {
			continue
		}
		taken[q.QuotationNumber] = true
		if q.QuotationDate == date {
			count++
		}
	}
	prefix := "Q-" + strings.ReplaceAll(string(date), "-", "") + "-"
	for n := count + 1; ; n++ {
		number := fmt.Sprintf("%s%03d", prefix, n)
		if !taken[number] {
			return number, nil
		}
	}
}

func (s *QuotationService) validateQuotation(q *domain.Quotation) error {
	if err := validateStruct(q); err != nil {
		return err
	}
	if q.ExpiryDate.Before(q.QuotationDate) {
		return domain.NewFieldError("expiryDate", "must not be before quotationDate")
	}
	if len(s.currencies) > 0 && !slices.Contains(s.currencies, q.Currency) {
		return domain.NewFieldError("currency", "must be one of: "+strings.Join(s.currencies, " "))
	}
	if q.TradeTerms != "" && len(s.incoterms) > 0 && !slices.Contains(s.incoterms, q.TradeTerms) {
		return domain.NewFieldError("tradeTerms", "must be one of: "+strings.Join(s.incoterms, " "))
	}
	return nil
}

// checkItems logs items priced outside the range of an active product or
// ordered below its minimum quantity
func (s *QuotationService) checkItems(scope string, q *domain.Quotation, products map[string]domain.Product) {
	for _, item := range q.Items {
		product, ok := products[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		below := item.UnitPrice < product.MinPrice
		above := product.MaxPrice > 0 && item.UnitPrice > product.MaxPrice
		if below || above {
			s.logger.Warn("unit price outside product range",
				zap.String("scope", scope),
				zap.String("productID", product.ID),
				zap.Float64("unitPrice", item.UnitPrice),
				zap.Float64("minPrice", product.MinPrice),
				zap.Float64("maxPrice", product.MaxPrice))
		}
		if product.MinOrder > 0 && item.Quantity < product.MinOrder {
			s.logger.Warn("quantity below product minimum order",
				zap.String("scope", scope),
				zap.String("productID", product.ID),
				zap.Float64("quantity", item.Quantity),
				zap.Float64("minOrder", product.MinOrder))
		}
	}
}

func upperAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
