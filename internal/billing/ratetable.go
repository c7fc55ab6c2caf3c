package billing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type rateKey struct {
	scope     string
	productID string
}

// RateTable is an immutable snapshot of the uploaded rate rules for one bill
// computation. Each upload produces a fresh table; concurrent readers never
// share mutable state.
type RateTable struct {
	prices map[rateKey]int64
}

// NewRateTable indexes a rate snapshot. When the upload produced duplicate
// rows for the same (scope, product), the last-loaded row wins and the key is
// reported back so callers can log a data-quality warning. Duplicates are a
// defensive fallback, not sanctioned behavior.
func NewRateTable(rates []model.Rate) (*RateTable, []string) {
	prices := make(map[rateKey]int64, len(rates))
	var duplicates []string

	for _, rate := range rates {
		key := rateKey{scope: rate.Scope.String(), productID: rate.ProductID}
		if _, exists := prices[key]; exists {
			duplicates = append(duplicates, fmt.Sprintf("%s/%s", key.scope, key.productID))
		}
		prices[key] = rate.UnitPrice
	}
	return &RateTable{prices: prices}, duplicates
}

// Resolve picks the unit price for a product billed to a provider. A
// provider-scoped rate wins unconditionally over the general rate; with
// neither defined the product is not billable and the second return is false.
func (t *RateTable) Resolve(providerID uuid.UUID, productID string) (int64, bool) {
	specific := rateKey{scope: model.ProviderScope(providerID).String(), productID: productID}
	if price, ok := t.prices[specific]; ok {
		return price, true
	}
	general := rateKey{scope: model.GeneralScope().String(), productID: productID}
	if price, ok := t.prices[general]; ok {
		return price, true
	}
	return 0, false
}
