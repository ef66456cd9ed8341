// Package workbook holds the multi-table workbook aggregate, the row codecs for
// each entity and the store that persists one workbook per scope.
package workbook

// Table names, one sheet per entity
const (
	TableCompany       = "Company"
	TableProduct       = "Product"
	TableCustomer      = "Customer"
	TableQuotation     = "Quotation"
	TableQuotationItem = "QuotationItem"
	TableTemplate      = "Template"
)

// TableNames lists every table in canonical sheet order
var TableNames = []string{
	TableCompany,
	TableProduct,
	TableCustomer,
	TableQuotation,
	TableQuotationItem,
	TableTemplate,
}

// RequiredTables must be present in an imported workbook
var RequiredTables = []string{TableCompany, TableProduct, TableCustomer}

// Table is one named collection of rows. Rows are aligned to Header, which is
// the canonical header after any write but may be in any order after a read.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Workbook is the aggregate root holding all tables of one scope
type Workbook struct {
	tables   map[string]*Table
	revision int64
}

// New returns a workbook with every table present, empty and with its canonical header
func New() *Workbook {
	wb := &Workbook{tables: make(map[string]*Table, len(TableNames))}
	wb.EnsureTables()
	return wb
}

func newEmpty() *Workbook {
	return &Workbook{tables: make(map[string]*Table, len(TableNames))}
}

// Table returns the named table
func (wb *Workbook) Table(name string) (*Table, bool) {
	t, ok := wb.tables[name]
	return t, ok
}

// Put adds or replaces a table
func (wb *Workbook) Put(t *Table) {
	wb.tables[t.Name] = t
}

// Has reports whether the named table is present
func (wb *Workbook) Has(name string) bool {
	_, ok := wb.tables[name]
	return ok
}

// Missing returns the names not present in the workbook, in the order given
func (wb *Workbook) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if !wb.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// EnsureTables creates every absent table empty and returns the created names
func (wb *Workbook) EnsureTables() []string {
	created := wb.Missing(TableNames...)
	for _, name := range created {
		wb.Put(&Table{Name: name, Header: Header(name)})
	}
	return created
}

// Revision is the save counter the workbook was loaded or last saved with
func (wb *Workbook) Revision() int64 {
	return wb.revision
}
