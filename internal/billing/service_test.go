package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type stubProviders struct {
	provider *model.Provider
	err      error
}

func (s stubProviders) GetByID(_ context.Context, _ uuid.UUID) (*model.Provider, error) {
	return s.provider, s.err
}

type stubTrucks struct {
	trucks []model.Truck
	err    error
}

func (s stubTrucks) GetByProvider(_ context.Context, _ uuid.UUID) ([]model.Truck, error) {
	return s.trucks, s.err
}

type stubRates struct {
	rates []model.Rate
	err   error
}

func (s stubRates) GetAll(_ context.Context) ([]model.Rate, error) {
	return s.rates, s.err
}

type stubFetcher struct {
	transactions []model.Transaction
	err          error
	gotFrom      time.Time
	gotTo        time.Time
	calls        int
}

func (s *stubFetcher) FetchTransactions(_ context.Context, from, to time.Time) ([]model.Transaction, error) {
	s.calls++
	s.gotFrom = from
	s.gotTo = to
	return s.transactions, s.err
}

func newTestService(providers stubProviders, trucks stubTrucks, rates stubRates, fetcher *stubFetcher, now time.Time) *Service {
	svc := NewService(providers, trucks, rates, fetcher, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestGenerateBillHappyPath(t *testing.T) {
	providerID := uuid.New()
	now := time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC)

	fetcher := &stubFetcher{
		transactions: []model.Transaction{
			{TruckCode: "T1", ProductID: "apples", NetWeight: 50},
			{TruckCode: "T9", ProductID: "apples", NetWeight: 100}, // not ours
		},
	}

	svc := newTestService(
		stubProviders{provider: &model.Provider{ID: providerID, Name: "Fruit Co"}},
		stubTrucks{trucks: []model.Truck{{Code: "T1", ProviderID: providerID}}},
		stubRates{rates: []model.Rate{{ProductID: "apples", Scope: model.GeneralScope(), UnitPrice: 10}}},
		fetcher,
		now,
	)

	bill, err := svc.GenerateBill(context.Background(), providerID, "", "")
	require.NoError(t, err)

	assert.Equal(t, providerID, bill.ProviderID)
	assert.Equal(t, "Fruit Co", bill.ProviderName)
	require.Len(t, bill.Lines, 1)
	assert.Equal(t, model.BillLine{ProductID: "apples", TotalWeight: 50, UnitPrice: 10, Amount: 500}, bill.Lines[0])
	assert.Equal(t, int64(500), bill.GrandTotal)
	assert.Empty(t, bill.OmittedProducts)

	// Omitted dates default to [first of current month, now).
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), fetcher.gotFrom)
	assert.Equal(t, now, fetcher.gotTo)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), bill.From)
	assert.Equal(t, now, bill.To)
}

func TestGenerateBillUnknownProvider(t *testing.T) {
	svc := newTestService(
		stubProviders{err: gorm.ErrRecordNotFound},
		stubTrucks{},
		stubRates{},
		&stubFetcher{},
		time.Now(),
	)

	_, err := svc.GenerateBill(context.Background(), uuid.New(), "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGenerateBillMalformedDates(t *testing.T) {
	svc := newTestService(
		stubProviders{provider: &model.Provider{ID: uuid.New(), Name: "x"}},
		stubTrucks{},
		stubRates{},
		&stubFetcher{},
		time.Now(),
	)

	testCases := []struct {
		name string
		from string
		to   string
	}{
		{name: "from_not_digits", from: "2025-06-01T0000", to: ""},
		{name: "from_invalid_day", from: "20250231000000", to: ""},
		{name: "to_too_short", from: "", to: "20250601"},
		{name: "to_invalid_hour", from: "", to: "20250601250000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GenerateBill(context.Background(), uuid.New(), tc.from, tc.to)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestGenerateBillExplicitToWidenedToEndOfDay(t *testing.T) {
	providerID := uuid.New()
	fetcher := &stubFetcher{}

	svc := newTestService(
		stubProviders{provider: &model.Provider{ID: providerID, Name: "Fruit Co"}},
		stubTrucks{},
		stubRates{},
		fetcher,
		time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC),
	)

	_, err := svc.GenerateBill(context.Background(), providerID, "20250601000000", "20250610083000")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 10, 23, 59, 59, 0, time.UTC), fetcher.gotTo)
}

func TestGenerateBillRecordsOmittedProducts(t *testing.T) {
	providerID := uuid.New()
	fetcher := &stubFetcher{
		transactions: []model.Transaction{
			{TruckCode: "T1", ProductID: "apples", NetWeight: 50},
			{TruckCode: "T1", ProductID: "cherries", NetWeight: 40},
		},
	}

	svc := newTestService(
		stubProviders{provider: &model.Provider{ID: providerID, Name: "Fruit Co"}},
		stubTrucks{trucks: []model.Truck{{Code: "T1", ProviderID: providerID}}},
		stubRates{rates: []model.Rate{{ProductID: "apples", Scope: model.GeneralScope(), UnitPrice: 10}}},
		fetcher,
		time.Now(),
	)

	bill, err := svc.GenerateBill(context.Background(), providerID, "", "")
	require.NoError(t, err)

	require.Len(t, bill.Lines, 1)
	assert.Equal(t, "apples", bill.Lines[0].ProductID)
	assert.Equal(t, []string{"cherries"}, bill.OmittedProducts)
}

func TestGenerateBillUpstreamFailure(t *testing.T) {
	providerID := uuid.New()
	fetcher := &stubFetcher{err: ErrUpstreamUnavailable}

	svc := newTestService(
		stubProviders{provider: &model.Provider{ID: providerID, Name: "Fruit Co"}},
		stubTrucks{},
		stubRates{},
		fetcher,
		time.Now(),
	)

	_, err := svc.GenerateBill(context.Background(), providerID, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
}
