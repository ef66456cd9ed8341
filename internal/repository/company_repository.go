package repository

import (
	"context"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// CompanyRepository handles workbook operations for issuing companies
type CompanyRepository struct {
	*Table[domain.Company]
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(store *workbook.Store) *CompanyRepository {
	return &CompanyRepository{Table: NewTable(store, workbook.CompanyCodec)}
}

// Upsert stores the company. A company saved as default clears the flag on
// every other row in the same write.
func (r *CompanyRepository) Upsert(ctx context.Context, scope string, company domain.Company) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		companies := upsert(r.codec, r.codec.Read(wb), company)
		if company.IsDefault {
			for i := range companies {
				companies[i].IsDefault = companies[i].ID == company.ID
			}
		}
		r.codec.Write(wb, companies)
		return nil
	})
}

// SetDefault marks id as the only default company. Every row is rewritten so
// any prior number of defaults collapses to exactly one.
func (r *CompanyRepository) SetDefault(ctx context.Context, scope, id string) error {
	return r.mutate(ctx, scope, func(wb *workbook.Workbook) error {
		companies := r.codec.Read(wb)
		if r.indexOf(companies, id) < 0 {
			return r.notFound(id)
		}
		for i := range companies {
			companies[i].IsDefault = companies[i].ID == id
		}
		r.codec.Write(wb, companies)
		return nil
	})
}

// GetDefault returns the first company flagged as default
func (r *CompanyRepository) GetDefault(ctx context.Context, scope string) (*domain.Company, error) {
	companies, err := r.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i := range companies {
		if companies[i].IsDefault {
			return &companies[i], nil
		}
	}
	return nil, &domain.NotFoundError{Entity: workbook.TableCompany, ID: "default"}
}
