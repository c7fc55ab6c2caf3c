package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

type rateRow struct {
	ProductID string
	Scope     string
	UnitPrice int64
}

// GetAll returns the full rate snapshot. Rows preserve upload order so the
// last-uploaded duplicate wins during rate-table construction.
func (r *RateRepository) GetAll(ctx context.Context) ([]model.Rate, error) {
	var rows []rateRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT product_id, scope, unit_price
		FROM rates
		ORDER BY uploaded_at ASC, product_id ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	rates := make([]model.Rate, 0, len(rows))
	for _, row := range rows {
		scope, err := model.ParseRateScope(row.Scope)
		if err != nil {
			return nil, fmt.Errorf("rate row for product %q: %w", row.ProductID, err)
		}
		rates = append(rates, model.Rate{
			ProductID: row.ProductID,
			Scope:     scope,
			UnitPrice: row.UnitPrice,
		})
	}
	return rates, nil
}

// ReplaceAll swaps the whole rate table in one transaction, so concurrent
// readers never observe a partially-uploaded table.
func (r *RateRepository) ReplaceAll(ctx context.Context, rates []model.Rate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM rates`).Error; err != nil {
			return err
		}
		for _, rate := range rates {
			if err := tx.Exec(`
				INSERT INTO rates (product_id, scope, unit_price)
				VALUES (?, ?, ?)
			`, rate.ProductID, rate.Scope.String(), rate.UnitPrice).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
