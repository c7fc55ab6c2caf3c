package billing

import "github.com/nurpe/weighbridge-billing/internal/model"

// FilterByOwnership keeps only transactions whose truck belongs to the
// provider being billed. Transactions for unknown truck codes are dropped,
// they belong to another provider or are noise from the weighing service and
// must never land on the wrong bill. Pure and order-preserving.
func FilterByOwnership(transactions []model.Transaction, trucks []model.Truck) []model.Transaction {
	owned := make(map[string]struct{}, len(trucks))
	for _, truck := range trucks {
		owned[truck.Code] = struct{}{}
	}

	filtered := make([]model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if _, ok := owned[tx.TruckCode]; ok {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}
