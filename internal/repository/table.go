package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// Table is the generic record repository over one workbook table.
// Every call names its scope explicitly; writes rewrite the table and
// persist the whole workbook once.
type Table[T any] struct {
	store *workbook.Store
	codec workbook.Codec[T]
}

// NewTable creates a repository for the codec's table
func NewTable[T any](store *workbook.Store, codec workbook.Codec[T]) *Table[T] {
	return &Table[T]{store: store, codec: codec}
}

// List returns all records in stored row order
func (r *Table[T]) List(ctx context.Context, scope string) ([]T, error) {
	wb, err := r.store.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return r.codec.Read(wb), nil
}

// Get returns the record with id, or a NotFoundError
func (r *Table[T]) Get(ctx context.Context, scope, id string) (*T, error) {
	records, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	if i := r.indexOf(records, id); i >= 0 {
		return &records[i], nil
	}
	return nil, r.notFound(id)
}

// Upsert replaces the record with the same id in place or appends it
func (r *Table[T]) Upsert(ctx context.Context, scope string, record T) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		r.codec.Write(wb, upsert(r.codec, r.codec.Read(wb), record))
		return nil
	})
}

// Delete rewrites the table without the record. Deleting an unknown id
// still rewrites the table and is not an error.
func (r *Table[T]) Delete(ctx context.Context, scope, id string) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		r.codec.Write(wb, without(r.codec, r.codec.Read(wb), id))
		return nil
	})
}

// mutate loads the workbook, applies fn in memory and persists once while
// holding the scope's lock
func (r *Table[T]) mutate(ctx context.Context, scope string, fn func(wb *workbook.Workbook) error) error {
	return r.apply(ctx, scope, fn, r.store.Update)
}

// mutateChecked is mutate with the stored revision always verified
func (r *Table[T]) mutateChecked(ctx context.Context, scope string, fn func(wb *workbook.Workbook) error) error {
	return r.apply(ctx, scope, fn, r.store.UpdateChecked)
}

type updateFunc func(ctx context.Context, scope string, fn func(wb *workbook.Workbook) error) error

func (r *Table[T]) apply(ctx context.Context, scope string, fn func(wb *workbook.Workbook) error, update updateFunc) error {
	var fnErr error
	err := update(ctx, scope, func(wb *workbook.Workbook) error {
		fnErr = fn(wb)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return fmt.Errorf("failed to save %s: %w", strings.ToLower(r.codec.Table()), err)
	}
	return err
}

func (r *Table[T]) indexOf(records []T, id string) int {
	for i := range records {
		if r.codec.ID(records[i]) == id {
			return i
		}
	}
	return -1
}

func (r *Table[T]) notFound(id string) error {
	return &domain.NotFoundError{Entity: r.codec.Table(), ID: id}
}

func upsert[T any](codec workbook.Codec[T], records []T, record T) []T {
	id := codec.ID(record)
	for i := range records {
		if codec.ID(records[i]) == id {
			records[i] = record
			return records
		}
	}
	return append(records, record)
}

func without[T any](codec workbook.Codec[T], records []T, id string) []T {
	kept := records[:0]
	for _, rec := range records {
		if codec.ID(rec) != id {
			kept = append(kept, rec)
		}
	}
	return kept
}
