package repository

import (
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/workbook"
)

// CustomerRepository handles workbook operations for customers
type CustomerRepository struct {
	*Table[domain.Customer]
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(store *workbook.Store) *CustomerRepository {
	return &CustomerRepository{Table: NewTable(store, workbook.CustomerCodec)}
}
