package repository

import (
	"context"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// ProductRepository handles workbook operations for catalogue products
type ProductRepository struct {
	*Table[domain.Product]
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(store *workbook.Store) *ProductRepository {
	return &ProductRepository{Table: NewTable(store, workbook.ProductCodec)}
}

// ByID indexes products by id for item resolution
func (r *ProductRepository) ByID(ctx context.Context, scope string) (map[string]domain.Product, error) {
	products, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
