package repository

import (
	"context"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// QuotationRepository persists quotation headers together with their items.
// Header and items are mutated in memory and written with one save.
type QuotationRepository struct {
	headers *Table[domain.Quotation]
	items   workbook.Codec[domain.QuotationItem]
}

// NewQuotationRepository creates a new QuotationRepository
func NewQuotationRepository(store *workbook.Store) *QuotationRepository {
	return &QuotationRepository{
		headers: NewTable(store, workbook.QuotationCodec),
		items:   workbook.QuotationItemCodec,
	}
}

// Save upserts the header and replaces every stored item of the quotation
// with q.Items in order. Items are stamped with the quotation id.
func (r *QuotationRepository) Save(ctx context.Context, scope string, q domain.Quotation) error {
	items := make([]domain.QuotationItem, len(q.Items))
	for i, item := range q.Items {
		item.QuotationID = q.ID
		items[i] = item
	}
	header := q
	header.Items = nil

	return r.headers.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		r.headers.codec.Write(wb, upsert(r.headers.codec, r.headers.codec.Read(wb), header))
		r.items.Write(wb, append(r.otherItems(wb, q.ID), items...))
		return nil
	})
}

// Get returns the quotation with its items in stored order
func (r *QuotationRepository) Get(ctx context.Context, scope, id string) (*domain.Quotation, error) {
	wb, err := r.headers.store.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	quotations := r.headers.codec.Read(wb)
	i := r.headers.indexOf(quotations, id)
	if i < 0 {
		return nil, r.headers.notFound(id)
	}
	q := quotations[i]
	q.Items = itemsOf(r.items.Read(wb), id)
	return &q, nil
}

// List returns all quotations with items resolved, in stored order
func (r *QuotationRepository) List(ctx context.Context, scope string) ([]domain.Quotation, error) {
	wb, err := r.headers.store.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	quotations := r.headers.codec.Read(wb)
	items := r.items.Read(wb)
	for i := range quotations {
		quotations[i].Items = itemsOf(items, quotations[i].ID)
	}
	return quotations, nil
}

// Delete removes the header and all of its items with one save
func (r *QuotationRepository) Delete(ctx context.Context, scope, id string) error {
	return r.headers.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		r.headers.codec.Write(wb, without(r.headers.codec, r.headers.codec.Read(wb), id))
		r.items.Write(wb, r.otherItems(wb, id))
		return nil
	})
}

// Transition rewrites the status of every quotation for which next reports a
// change, deciding on the freshly loaded rows under the scope's lock. The
// stored revision is always verified, so a save from another process since
// the load yields domain.ErrStaleWorkbook. Returns the number of rows changed.
func (r *QuotationRepository) Transition(ctx context.Context, scope string, next func(q domain.Quotation) (domain.QuotationStatus, bool)) (int, error) {
	changed := 0
	err := r.headers.mutateChecked(ctx, scope, func(wb *workbook.Workbook) error {
		changed = 0
		quotations := r.headers.codec.Read(wb)
		for i := range quotations {
			if status, ok := next(quotations[i]); ok && quotations[i].Status != status {
				quotations[i].Status = status
				changed++
			}
		}
		if changed > 0 {
			r.headers.codec.Write(wb, quotations)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

func (r *QuotationRepository) otherItems(wb *workbook.Workbook, quotationID string) []domain.QuotationItem {
	all := r.items.Read(wb)
	kept := all[:0]
	for _, item := range all {
		if item.QuotationID != quotationID {
			kept = append(kept, item)
		}
	}
	return kept
}

func itemsOf(items []domain.QuotationItem, quotationID string) []domain.QuotationItem {
	var out []domain.QuotationItem
	for _, item := range items {
		if item.QuotationID == quotationID {
			out = append(out, item)
		}
	}
	return out
}

// QuotationItemRepository reads quotation lines. Items have no independent
// lifecycle, so writes go through QuotationRepository.Save.
type QuotationItemRepository struct {
	store *workbook.Store
	codec workbook.Codec[domain.QuotationItem]
}

// NewQuotationItemRepository creates a new QuotationItemRepository
func NewQuotationItemRepository(store *workbook.Store) *QuotationItemRepository {
	return &QuotationItemRepository{store: store, codec: workbook.QuotationItemCodec}
}

// List returns every item row in stored order
func (r *QuotationItemRepository) List(ctx context.Context, scope string) ([]domain.QuotationItem, error) {
	wb, err := r.store.Load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return r.codec.Read(wb), nil
}

// ListByQuotation returns the items of one quotation in stored order
func (r *QuotationItemRepository) ListByQuotation(ctx context.Context, scope, quotationID string) ([]domain.QuotationItem, error) {
	items, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	return itemsOf(items, quotationID), nil
}
