package billing

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

// Aggregate groups transactions by product, resolves each product's unit
// price and computes line amounts in integer minor units. Transactions with
// non-positive net weight are skipped. Products with no resolvable rate are
// returned in omitted instead of being priced at zero. Lines are ordered by
// product id ascending so identical input always yields identical output.
func Aggregate(transactions []model.Transaction, table *RateTable, providerID uuid.UUID) (lines []model.BillLine, grandTotal int64, omitted []string) {
	weights := make(map[string]int64)
	for _, tx := range transactions {
		if tx.NetWeight <= 0 {
			continue
		}
		weights[tx.ProductID] += tx.NetWeight
	}

	products := make([]string, 0, len(weights))
	for productID := range weights {
		products = append(products, productID)
	}
	sort.Strings(products)

	lines = make([]model.BillLine, 0, len(products))
	for _, productID := range products {
		unitPrice, ok := table.Resolve(providerID, productID)
		if !ok {
			omitted = append(omitted, productID)
			continue
		}
		amount := weights[productID] * unitPrice
		lines = append(lines, model.BillLine{
			ProductID:   productID,
			TotalWeight: weights[productID],
			UnitPrice:   unitPrice,
			Amount:      amount,
		})
		grandTotal += amount
	}
	return lines, grandTotal, omitted
}
