package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type ProviderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error)
}

type TruckStore interface {
	GetByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Truck, error)
}

type RateStore interface {
	GetAll(ctx context.Context) ([]model.Rate, error)
}

type TransactionFetcher interface {
	FetchTransactions(ctx context.Context, from, to time.Time) ([]model.Transaction, error)
}

// Service is the bill-generation façade. It only reads: reference tables via
// the stores, transactions via the fetcher. A failed call is always safe for
// the caller to retry.
type Service struct {
	providers ProviderStore
	trucks    TruckStore
	rates     RateStore
	fetcher   TransactionFetcher
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(providers ProviderStore, trucks TruckStore, rates RateStore, fetcher TransactionFetcher, log zerolog.Logger) *Service {
	return &Service{
		providers: providers,
		trucks:    trucks,
		rates:     rates,
		fetcher:   fetcher,
		log:       log,
		now:       time.Now,
	}
}

// GenerateBill computes the statement for one provider over the requested
// window. fromRaw and toRaw are optional 14-digit yyyymmddhhmmss values;
// omitted they default to the start of the current month and the current
// instant.
func (s *Service) GenerateBill(ctx context.Context, providerID uuid.UUID, fromRaw, toRaw string) (*model.Bill, error) {
	from, to, err := resolveRange(fromRaw, toRaw, s.now())
	if err != nil {
		return nil, err
	}

	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: provider %s", ErrNotFound, providerID)
		}
		return nil, err
	}

	trucks, err := s.trucks.GetByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	rates, err := s.rates.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	table, duplicates := NewRateTable(rates)
	for _, key := range duplicates {
		s.log.Warn().
			Str("rate", key).
			Msg("duplicate rate row, last upload wins")
	}

	transactions, err := s.fetcher.FetchTransactions(ctx, from, to)
	if err != nil {
		return nil, err
	}

	owned := FilterByOwnership(transactions, trucks)
	lines, grandTotal, omitted := Aggregate(owned, table, providerID)
	for _, productID := range omitted {
		s.log.Warn().
			Str("provider_id", providerID.String()).
			Str("product_id", productID).
			Msg("product has transactions but no resolvable rate, omitted from bill")
	}

	return &model.Bill{
		ProviderID:      provider.ID,
		ProviderName:    provider.Name,
		From:            from,
		To:              to,
		Lines:           lines,
		GrandTotal:      grandTotal,
		OmittedProducts: omitted,
	}, nil
}
