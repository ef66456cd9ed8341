package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/repository"
	"github.com/straye-as/quotation-api/internal/service"
	"github.com/straye-as/quotation-api/internal/storage"
	"github.com/straye-as/quotation-api/internal/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpiryService_Sweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	company, customer, _ := env.seed(t)

	save := func(scope string, status domain.QuotationStatus, date, expiry domain.Date) *domain.Quotation {
		q, err := env.quotations.Save(ctx, scope, &domain.Quotation{
			CompanyID:     company.ID,
			CustomerID:    customer.ID,
			Status:        status,
			QuotationDate: date,
			ExpiryDate:    expiry,
			Items:         []domain.QuotationItem{{ProductName: "Bolt", Quantity: 1, UnitPrice: 1}},
		})
		require.NoError(t, err)
		return q
	}

	pastDraft := save(scope, domain.QuotationStatusDraft, "2024-02-01", "2024-03-01")
	pastSent := save(scope, domain.QuotationStatusSent, "2024-02-14", "2024-03-14")
	accepted := save(scope, domain.QuotationStatusAccepted, "2024-01-01", "2024-01-31")
	dueToday := save(scope, domain.QuotationStatusDraft, "2024-03-01", "2024-03-15")
	other := save("other", domain.QuotationStatusSent, "2024-01-01", "2024-02-01")

	result, err := env.expiry.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Scopes)
	assert.Equal(t, 3, result.Expired)

	want := map[string]domain.QuotationStatus{
		pastDraft.ID: domain.QuotationStatusExpired,
		pastSent.ID:  domain.QuotationStatusExpired,
		accepted.ID:  domain.QuotationStatusAccepted,
		dueToday.ID:  domain.QuotationStatusDraft,
	}
	for id, status := range want {
		q, err := env.quotations.GetByID(ctx, scope, id)
		require.NoError(t, err)
		assert.Equal(t, status, q.Status, id)
	}

	q, err := env.quotations.GetByID(ctx, "other", other.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuotationStatusExpired, q.Status)

	// a second sweep finds nothing left to expire
	result, err = env.expiry.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
}

// racingValues simulates another instance writing the scope between the
// sweep's load and its revision check. interfere runs right before the
// third read after arming, which is the revision check of the first attempt.
type racingValues struct {
	storage.ValueStore
	mu        sync.Mutex
	reads     int
	repeat    bool
	interfere func()
}

func (v *racingValues) arm(repeat bool, interfere func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.reads = 0
	v.repeat = repeat
	v.interfere = interfere
}

func (v *racingValues) Get(ctx context.Context, scope string) (string, error) {
	v.mu.Lock()
	v.reads++
	var fire func()
	if v.interfere != nil && (v.reads == 3 || (v.repeat && v.reads > 3 && v.reads%2 == 1)) {
		fire = v.interfere
	}
	v.mu.Unlock()
	if fire != nil {
		fire()
	}
	return v.ValueStore.Get(ctx, scope)
}

func TestExpiryService_ConcurrentSaveIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	local, err := storage.NewLocalValueStore(t.TempDir())
	require.NoError(t, err)
	values := &racingValues{ValueStore: local}
	store := workbook.NewStore(values, false, logger)
	quotationRepo := repository.NewQuotationRepository(store)
	quotations := service.NewQuotationService(quotationRepo, repository.NewQuotationItemRepository(store), repository.NewProductRepository(store), quotationOptions, logger)
	quotations.SetClock(fixedClock)
	expiry := service.NewExpiryService(store, quotationRepo, logger)
	expiry.SetClock(fixedClock)

	save := func(status domain.QuotationStatus) *domain.Quotation {
		q, err := quotations.Save(ctx, scope, &domain.Quotation{
			CompanyID:     "c",
			CustomerID:    "cu",
			Status:        status,
			QuotationDate: "2024-02-01",
			ExpiryDate:    "2024-03-01",
			Items:         []domain.QuotationItem{{ProductName: "Bolt", Quantity: 1, UnitPrice: 1}},
		})
		require.NoError(t, err)
		return q
	}
	draft := save(domain.QuotationStatusDraft)
	sent := save(domain.QuotationStatusSent)

	// another instance accepts the sent quotation while the sweep is running
	other := repository.NewQuotationRepository(workbook.NewStore(local, false, logger))
	accept := func() {
		_, err := other.Transition(ctx, scope, func(q domain.Quotation) (domain.QuotationStatus, bool) {
			return domain.QuotationStatusAccepted, q.ID == sent.ID
		})
		require.NoError(t, err)
	}

	t.Run("stale save is retried on fresh rows", func(t *testing.T) {
		values.arm(false, accept)

		expired, err := expiry.SweepScope(ctx, scope)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		got, err := quotationRepo.Get(ctx, scope, sent.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusAccepted, got.Status)

		got, err = quotationRepo.Get(ctx, scope, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.QuotationStatusExpired, got.Status)
	})

	t.Run("persistent conflict is reported", func(t *testing.T) {
		late := save(domain.QuotationStatusDraft)
		values.arm(true, func() {
			_, err := other.Transition(ctx, scope, func(q domain.Quotation) (domain.QuotationStatus, bool) {
				return domain.QuotationStatusSent, q.ID == late.ID
			})
			require.NoError(t, err)
		})

		_, err := expiry.SweepScope(ctx, scope)
		assert.ErrorIs(t, err, domain.ErrStaleWorkbook)
		values.arm(false, nil)
	})
}
