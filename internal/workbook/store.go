package workbook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

// Store loads and persists one workbook per scope on top of a ValueStore.
// Update and Replace serialize per scope within the process. Writers in other
// processes are last-write-wins unless optimistic locking is enabled.
type Store struct {
	values     storage.ValueStore
	optimistic bool
	logger     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a workbook store. With optimistic set, Save rejects writes
// whose loaded revision no longer matches the stored one.
func NewStore(values storage.ValueStore, optimistic bool, logger *zap.Logger) *Store {
	return &Store{
		values:     values,
		optimistic: optimistic,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
	}
}

// lock acquires the in-process lock of scope and returns its release
func (s *Store) lock(scope string) func() {
	s.mu.Lock()
	l, ok := s.locks[scope]
	if !ok {
		l = &sync.Mutex{}
		s.locks[scope] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load returns the workbook for scope. An absent or unreadable value is
// replaced by a freshly initialized workbook, which is persisted before returning.
func (s *Store) Load(ctx context.Context, scope string) (*Workbook, error) {
	value, err := s.values.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			return s.initialize(ctx, scope)
		}
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	wb, err := Decode(value)
	if err != nil {
		readErr := &domain.StoreReadError{Scope: scope, Err: err}
		s.logger.Warn("Reinitializing unreadable workbook",
			zap.String("scope", scope),
			zap.Error(readErr))
		return s.initialize(ctx, scope)
	}

	wb.EnsureTables()
	return wb, nil
}

func (s *Store) initialize(ctx context.Context, scope string) (*Workbook, error) {
	wb := New()
	if err := s.write(ctx, scope, wb, 0); err != nil {
		return nil, err
	}
	s.logger.Info("Initialized workbook", zap.String("scope", scope))
	return wb, nil
}

// Update loads the workbook of scope, applies fn and saves the result while
// holding the scope's lock. An error from fn aborts without writing.
func (s *Store) Update(ctx context.Context, scope string, fn func(wb *Workbook) error) error {
	return s.update(ctx, scope, fn, s.optimistic)
}

// UpdateChecked is Update with the stored revision verified before writing
// even when optimistic locking is off. It returns domain.ErrStaleWorkbook
// when another process saved the scope since it was loaded.
func (s *Store) UpdateChecked(ctx context.Context, scope string, fn func(wb *Workbook) error) error {
	return s.update(ctx, scope, fn, true)
}

func (s *Store) update(ctx context.Context, scope string, fn func(wb *Workbook) error, checked bool) error {
	unlock := s.lock(scope)
	defer unlock()

	wb, err := s.Load(ctx, scope)
	if err != nil {
		return err
	}
	if err := fn(wb); err != nil {
		return err
	}
	return s.save(ctx, scope, wb, checked)
}

// Save serializes the whole workbook and replaces the stored value in one write
func (s *Store) Save(ctx context.Context, scope string, wb *Workbook) error {
	return s.save(ctx, scope, wb, s.optimistic)
}

func (s *Store) save(ctx context.Context, scope string, wb *Workbook, checked bool) error {
	if !checked {
		return s.write(ctx, scope, wb, wb.revision)
	}

	stored, err := s.storedRevision(ctx, scope)
	if err != nil {
		return err
	}
	if stored != wb.revision {
		s.logger.Warn("Rejected stale workbook save",
			zap.String("scope", scope),
			zap.Int64("loaded_revision", wb.revision),
			zap.Int64("stored_revision", stored))
		return domain.ErrStaleWorkbook
	}
	return s.write(ctx, scope, wb, stored)
}

// Replace stores wb as the scope's workbook regardless of what was loaded
// before. The revision continues from the stored one.
func (s *Store) Replace(ctx context.Context, scope string, wb *Workbook) error {
	unlock := s.lock(scope)
	defer unlock()

	stored, err := s.storedRevision(ctx, scope)
	if err != nil {
		return err
	}
	return s.write(ctx, scope, wb, stored)
}

// Scopes lists every scope with a stored workbook
func (s *Store) Scopes(ctx context.Context) ([]string, error) {
	return s.values.Scopes(ctx)
}

// storedRevision reads the revision currently persisted. Absent and
// unreadable values count as revision 0.
func (s *Store) storedRevision(ctx context.Context, scope string) (int64, error) {
	value, err := s.values.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, storage.ErrValueNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read workbook: %w", err)
	}
	current, err := Decode(value)
	if err != nil {
		return 0, nil
	}
	return current.revision, nil
}

func (s *Store) write(ctx context.Context, scope string, wb *Workbook, base int64) error {
	next := base + 1
	prev := wb.revision
	wb.revision = next

	value, err := Encode(wb)
	if err != nil {
		wb.revision = prev
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := s.values.Put(ctx, scope, value); err != nil {
		wb.revision = prev
		return fmt.Errorf("failed to persist workbook: %w", err)
	}

	s.logger.Debug("Saved workbook",
		zap.String("scope", scope),
		zap.Int64("revision", next),
		zap.Int("bytes", len(value)))
	return nil
}
