package service

import (
	"context"
	"fmt"
	"io"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/straye-as/quotation-api/internal/workbook"
	"go.uber.org/zap"
)

// WorkbookService exports and imports the whole workbook of a scope
type WorkbookService struct {
	store    *workbook.Store
	maxBytes int64
	now      Clock
	logger   *zap.Logger
}

// NewWorkbookService creates a new WorkbookService accepting uploads of at
// most maxImportBytes
func NewWorkbookService(store *workbook.Store, maxImportBytes int64, logger *zap.Logger) *WorkbookService {
	return &WorkbookService{
		store:    store,
		maxBytes: maxImportBytes,
		now:      systemClock,
		logger:   logger,
	}
}

// MaxImportBytes is the largest workbook Import accepts
func (s *WorkbookService) MaxImportBytes() int64 {
	return s.maxBytes
}

// SetClock replaces the time source used for export filenames
func (s *WorkbookService) SetClock(clock Clock) {
	s.now = clock
}

// ExportFilename returns the download name for a workbook exported today
func (s *WorkbookService) ExportFilename() string {
	return fmt.Sprintf("quotations-%s.xlsx", domain.DateOf(s.now()))
}

// Export returns the scope's workbook as xlsx bytes and its download filename
func (s *WorkbookService) Export(ctx context.Context, scope string) ([]byte, string, error) {
	wb, err := s.store.Load(ctx, scope)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load workbook: %w", err)
	}
	data, err := workbook.Marshal(wb)
	if err != nil {
		return nil, "", fmt.Errorf("failed to export workbook: %w", err)
	}
	s.logger.Info("workbook exported", zap.String("scope", scope), zap.Int("bytes", len(data)))
	return data, s.ExportFilename(), nil
}

// Import replaces the scope's workbook with an uploaded one. Uploads missing a
// required table are rejected and leave the stored workbook unchanged.
func (s *WorkbookService) Import(ctx context.Context, scope string, r io.Reader) (*domain.ImportResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.NewFieldError("file", fmt.Sprintf("must be at most %d bytes", s.maxBytes))
	}

	wb, err := workbook.Unmarshal(data)
	if err != nil {
		s.logger.Warn("rejected unreadable workbook upload", zap.String("scope", scope), zap.Error(err))
		return nil, &domain.ValidationError{Message: "file is not a readable workbook"}
	}

	if missing := wb.Missing(workbook.RequiredTables...); len(missing) > 0 {
		return nil, &domain.ValidationError{Message: "workbook is missing required tables", Missing: missing}
	}

	created := wb.EnsureTables()
	workbook.Canonicalize(wb)

	if err := s.store.Replace(ctx, scope, wb); err != nil {
		return nil, fmt.Errorf("failed to store imported workbook: %w", err)
	}

	s.logger.Info("workbook imported",
		zap.String("scope", scope),
		zap.Strings("created", created))

	return &domain.ImportResult{
		Scope:   scope,
		Tables:  mapper.ToTableSummaries(wb),
		Created: created,
	}, nil
}

// Summary reports the row count of every table in the scope's workbook
func (s *WorkbookService) Summary(ctx context.Context, scope string) ([]domain.TableSummary, error) {
	wb, err := s.store.Load(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load workbook: %w", err)
	}
	return mapper.ToTableSummaries(wb), nil
}
