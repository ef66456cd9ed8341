package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/workbook"
	"go.uber.org/zap"
)

// ExpiryService marks open quotations past their expiry date as expired
type ExpiryService struct {
	store         *workbook.Store
	quotationRepo *repository.QuotationRepository
	now           Clock
	logger        *zap.Logger
}

// NewExpiryService creates a new ExpiryService
func NewExpiryService(store *workbook.Store, quotationRepo *repository.QuotationRepository, logger *zap.Logger) *ExpiryService {
	return &ExpiryService{
		store:         store,
		quotationRepo: quotationRepo,
		now:           systemClock,
		logger:        logger,
	}
}

// SetClock replaces the time source that decides what today is
func (s *ExpiryService) SetClock(clock Clock) {
	s.now = clock
}

// Sweep expires quotations in every stored scope. A failing scope is logged
// and skipped; the first failure is returned after all scopes were visited.
func (s *ExpiryService) Sweep(ctx context.Context) (*domain.SweepResult, error) {
	scopes, err := s.store.Scopes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scopes: %w", err)
	}

	result := &domain.SweepResult{}
	var firstErr error
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		expired, err := s.SweepScope(ctx, scope)
		if err != nil {
			s.logger.Error("expiry sweep failed for scope", zap.String("scope", scope), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Scopes++
		result.Expired += expired
	}
	return result, firstErr
}

// SweepScope expires the open quotations of one scope whose expiry date is
// before today. The rows are re-checked under the scope's lock and the save is
// revision checked; a concurrent save from another process causes one retry.
func (s *ExpiryService) SweepScope(ctx context.Context, scope string) (int, error) {
	today := domain.DateOf(s.now())
	expire := func(q domain.Quotation) (domain.QuotationStatus, bool) {
		return domain.QuotationStatusExpired, q.Status.IsOpen() && q.ExpiryDate.Before(today)
	}

	quotations, err := s.quotationRepo.List(ctx, scope)
	if err != nil {
		return 0, err
	}
	due := 0
	for _, q := range quotations {
		if _, ok := expire(q); ok {
			due++
		}
	}
	if due == 0 {
		return 0, nil
	}

	n, err := s.quotationRepo.Transition(ctx, scope, expire)
	if errors.Is(err, domain.ErrStaleWorkbook) {
		s.logger.Warn("workbook changed during expiry sweep, retrying", zap.String("scope", scope))
		n, err = s.quotationRepo.Transition(ctx, scope, expire)
	}
	if err != nil {
		return 0, err
	}
	s.logger.Info("expired quotations", zap.String("scope", scope), zap.Int("count", n))
	return n, nil
}
