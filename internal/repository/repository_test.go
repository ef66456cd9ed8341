package repository_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/straye-as/quotation-api/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scope = "acme"

func newStore(t *testing.T) *workbook.Store {
	t.Helper()
	values, err := storage.NewLocalValueStore(t.TempDir())
	require.NoError(t, err)
	return workbook.NewStore(values, false, zap.NewNop())
}

func company(id string, isDefault bool) domain.Company {
	return domain.Company{
		ID:        id,
		Name:      "Company " + id,
		IsDefault: isDefault,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestTable_UpsertListGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCustomerRepository(newStore(t))

	a := domain.Customer{ID: "a", Name: "Alice", Country: "NO"}
	b := domain.Customer{ID: "b", Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, repo.Upsert(ctx, scope, a))
	require.NoError(t, repo.Upsert(ctx, scope, b))

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []domain.Customer{a, b}, list)

	// upsert with an existing id replaces in place
	a.Name = "Alice Updated"
	require.NoError(t, repo.Upsert(ctx, scope, a))

	list, err = repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []domain.Customer{a, b}, list)

	got, err := repo.Get(ctx, scope, "a")
	require.NoError(t, err)
	assert.Equal(t, a, *got)

	_, err = repo.Get(ctx, scope, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestTable_EveryUpsertedRecordAppearsOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProductRepository(newStore(t))

	ids := []string{"p1", "p2", "p1", "p3", "p2", "p1"}
	latest := map[string]domain.Product{}
	for i, id := range ids {
		p := domain.Product{
			ID:             id,
			Name:           fmt.Sprintf("Product %d", i),
			MinPrice:       float64(i),
			MaxPrice:       float64(i) + 0.5,
			IsActive:       i%2 == 0,
			Specifications: map[string]string{"rev": fmt.Sprint(i)},
			Images:         []string{fmt.Sprintf("img-%d.png", i)},
		}
		require.NoError(t, repo.Upsert(ctx, scope, p))
		latest[id] = p
	}

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{list[0].ID, list[1].ID, list[2].ID})
	for _, p := range list {
		assert.Equal(t, latest[p.ID], p)
	}
}

func TestTable_Delete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCustomerRepository(newStore(t))

	records := []domain.Customer{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}, {ID: "3", Name: "Three"}}
	for _, c := range records {
		require.NoError(t, repo.Upsert(ctx, scope, c))
	}

	require.NoError(t, repo.Delete(ctx, scope, "2"))

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []domain.Customer{records[0], records[2]}, list)

	// deleting an unknown id is a no-op rewrite
	require.NoError(t, repo.Delete(ctx, scope, "unknown"))
	list, err = repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTable_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCustomerRepository(newStore(t))

	require.NoError(t, repo.Upsert(ctx, "tenant-a", domain.Customer{ID: "1", Name: "A"}))

	list, err := repo.List(ctx, "tenant-b")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCompanyRepository_SetDefault(t *testing.T) {
	tests := []struct {
		name     string
		existing []domain.Company
	}{
		{"no prior default", []domain.Company{company("a", false), company("b", false)}},
		{"one prior default", []domain.Company{company("a", true), company("b", false)}},
		{"inconsistently many defaults", []domain.Company{company("a", true), company("b", true), company("c", true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			repo := repository.NewCompanyRepository(store)

			// seed rows directly so inconsistent states can be written
			wb, err := store.Load(ctx, scope)
			require.NoError(t, err)
			workbook.CompanyCodec.Write(wb, tt.existing)
			require.NoError(t, store.Save(ctx, scope, wb))

			require.NoError(t, repo.SetDefault(ctx, scope, "b"))

			list, err := repo.List(ctx, scope)
			require.NoError(t, err)
			defaults := 0
			for _, c := range list {
				if c.IsDefault {
					defaults++
					assert.Equal(t, "b", c.ID)
				}
			}
			assert.Equal(t, 1, defaults)

			def, err := repo.GetDefault(ctx, scope)
			require.NoError(t, err)
			assert.Equal(t, "b", def.ID)
		})
	}
}

func TestCompanyRepository_SetDefaultFlipsPrevious(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCompanyRepository(newStore(t))
	require.NoError(t, repo.Upsert(ctx, scope, company("A", true)))
	require.NoError(t, repo.Upsert(ctx, scope, company("B", false)))

	require.NoError(t, repo.SetDefault(ctx, scope, "B"))

	a, err := repo.Get(ctx, scope, "A")
	require.NoError(t, err)
	b, err := repo.Get(ctx, scope, "B")
	require.NoError(t, err)
	assert.False(t, a.IsDefault)
	assert.True(t, b.IsDefault)
	// other fields untouched
	assert.Equal(t, company("A", false), *a)
}

func TestCompanyRepository_UpsertDefaultClearsOthers(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCompanyRepository(newStore(t))
	require.NoError(t, repo.Upsert(ctx, scope, company("a", true)))
	require.NoError(t, repo.Upsert(ctx, scope, company("b", true)))
	require.NoError(t, repo.Upsert(ctx, scope, company("c", false)))

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, []domain.Company{company("a", false), company("b", true), company("c", false)}, list)
}

func TestCompanyRepository_SetDefaultUnknown(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCompanyRepository(newStore(t))
	require.NoError(t, repo.Upsert(ctx, scope, company("a", true)))

	err := repo.SetDefault(ctx, scope, "nope")
	assert.True(t, domain.IsNotFound(err))

	a, err := repo.Get(ctx, scope, "a")
	require.NoError(t, err)
	assert.True(t, a.IsDefault)
}

func TestCompanyRepository_GetDefaultNone(t *testing.T) {
	repo := repository.NewCompanyRepository(newStore(t))
	_, err := repo.GetDefault(context.Background(), scope)
	assert.True(t, domain.IsNotFound(err))
}

func TestTemplateRepository_SetDefaultPerType(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTemplateRepository(newStore(t))

	templates := []domain.Template{
		{ID: "p1", Name: "Pay 1", Type: domain.TemplateTypePayment, IsDefault: true},
		{ID: "p2", Name: "Pay 2", Type: domain.TemplateTypePayment},
		{ID: "d1", Name: "Delivery", Type: domain.TemplateTypeDelivery, IsDefault: true},
	}
	for _, tpl := range templates {
		require.NoError(t, repo.Upsert(ctx, scope, tpl))
	}

	require.NoError(t, repo.SetDefault(ctx, scope, "p2"))

	payment, err := repo.GetDefault(ctx, scope, domain.TemplateTypePayment)
	require.NoError(t, err)
	assert.Equal(t, "p2", payment.ID)

	delivery, err := repo.GetDefault(ctx, scope, domain.TemplateTypeDelivery)
	require.NoError(t, err)
	assert.Equal(t, "d1", delivery.ID)

	payments, err := repo.ListByType(ctx, scope, domain.TemplateTypePayment)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = repo.GetDefault(ctx, scope, domain.TemplateTypeWarranty)
	assert.True(t, domain.IsNotFound(err))
}

func TestTemplateRepository_OversizedContentIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewTemplateRepository(newStore(t))

	original := domain.Template{ID: "t1", Name: "Terms", Type: domain.TemplateTypePayment, Content: "Net 30"}
	require.NoError(t, repo.Upsert(ctx, scope, original))

	long := original
	long.Content = strings.Repeat("a", 40000)
	err := repo.Upsert(ctx, scope, long)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	got, err := repo.Get(ctx, scope, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Net 30", got.Content)

	err = repo.Upsert(ctx, scope, domain.Template{ID: "t2", Name: "Other", Type: domain.TemplateTypeOther, Content: long.Content})
	assert.True(t, domain.IsValidation(err))
	_, err = repo.Get(ctx, scope, "t2")
	assert.True(t, domain.IsNotFound(err))
}

func quotation(id string, items ...domain.QuotationItem) domain.Quotation {
	return domain.Quotation{
		ID:              id,
		QuotationNumber: "Q-" + id,
		CompanyID:       "c",
		CustomerID:      "cu",
		QuotationDate:   "2024-05-01",
		ExpiryDate:      "2024-05-31",
		Currency:        "USD",
		Status:          domain.QuotationStatusDraft,
		Items:           items,
	}
}

func item(id string, qty, price float64) domain.QuotationItem {
	return domain.QuotationItem{ID: id, ProductName: "Item " + id, Quantity: qty, UnitPrice: price, TotalPrice: qty * price}
}

func TestQuotationRepository_SaveReplacesItems(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	quotes := repository.NewQuotationRepository(store)
	items := repository.NewQuotationItemRepository(store)

	require.NoError(t, quotes.Save(ctx, scope, quotation("q1", item("i1", 1, 1), item("i2", 2, 2), item("i3", 3, 3))))
	require.NoError(t, quotes.Save(ctx, scope, quotation("q2", item("x1", 9, 9))))

	updated := quotation("q1", item("i4", 4, 4), item("i2", 5, 5))
	require.NoError(t, quotes.Save(ctx, scope, updated))

	got, err := items.ListByQuotation(ctx, scope, "q1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "i4", got[0].ID)
	assert.Equal(t, "i2", got[1].ID)
	assert.Equal(t, float64(5), got[1].Quantity)
	for _, it := range got {
		assert.Equal(t, "q1", it.QuotationID)
	}

	// the other quotation's items are untouched
	other, err := items.ListByQuotation(ctx, scope, "q2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "x1", other[0].ID)

	q, err := quotes.Get(ctx, scope, "q1")
	require.NoError(t, err)
	assert.Equal(t, got, q.Items)
	assert.Equal(t, "Q-q1", q.QuotationNumber)

	list, err := quotes.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[1].Items, 1)
}

func TestQuotationRepository_SaveDoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	quotes := repository.NewQuotationRepository(newStore(t))

	q := quotation("q1", item("i1", 1, 1))
	require.NoError(t, quotes.Save(ctx, scope, q))
	assert.Empty(t, q.Items[0].QuotationID)
}

func TestQuotationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	quotes := repository.NewQuotationRepository(store)
	items := repository.NewQuotationItemRepository(store)

	require.NoError(t, quotes.Save(ctx, scope, quotation("q1", item("i1", 1, 1))))
	require.NoError(t, quotes.Save(ctx, scope, quotation("q2", item("i2", 1, 1))))

	require.NoError(t, quotes.Delete(ctx, scope, "q1"))

	_, err := quotes.Get(ctx, scope, "q1")
	assert.True(t, domain.IsNotFound(err))

	all, err := items.List(ctx, scope)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "i2", all[0].ID)
}

func TestQuotationRepository_Transition(t *testing.T) {
	ctx := context.Background()
	quotes := repository.NewQuotationRepository(newStore(t))
	require.NoError(t, quotes.Save(ctx, scope, quotation("q1", item("i1", 1, 1))))
	require.NoError(t, quotes.Save(ctx, scope, quotation("q2", item("i2", 1, 1))))

	changed, err := quotes.Transition(ctx, scope, func(q domain.Quotation) (domain.QuotationStatus, bool) {
		return domain.QuotationStatusExpired, q.ID == "q1" || q.ID == "unknown"
	})
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	q1, err := quotes.Get(ctx, scope, "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, q1.Status)
	assert.Len(t, q1.Items, 1)

	q2, err := quotes.Get(ctx, scope, "q2")
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusDraft, q2.Status)

	// already in the target status counts as unchanged
	changed, err = quotes.Transition(ctx, scope, func(q domain.Quotation) (domain.QuotationStatus, bool) {
		return domain.QuotationStatusExpired, q.ID == "q1"
	})
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestTable_ConcurrentUpsertsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCustomerRepository(newStore(t))

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Upsert(ctx, scope, domain.Customer{ID: fmt.Sprintf("c%02d", i), Name: "Customer"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Len(t, list, writers)
}

// failingValues accepts reads but fails every write after the first
type failingValues struct {
	storage.ValueStore
	writes int
}

func (f *failingValues) Put(ctx context.Context, scope, value string) error {
	f.writes++
	if f.writes > 1 {
		return errors.New("backing store unavailable")
	}
	return f.ValueStore.Put(ctx, scope, value)
}

func TestRepository_PersistFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalValueStore(t.TempDir())
	require.NoError(t, err)
	store := workbook.NewStore(&failingValues{ValueStore: local}, false, zap.NewNop())
	repo := repository.NewCompanyRepository(store)

	err = repo.Upsert(ctx, scope, company("a", false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backing store unavailable")

	list, err := repo.List(ctx, scope)
	require.NoError(t, err)
	assert.Empty(t, list)
}
