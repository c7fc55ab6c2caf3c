package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type TruckRepository struct {
	db *gorm.DB
}

func NewTruckRepository(db *gorm.DB) *TruckRepository {
	return &TruckRepository{db: db}
}

func (r *TruckRepository) GetByProvider(ctx context.Context, providerID uuid.UUID) ([]model.Truck, error) {
	var trucks []model.Truck
	if err := r.db.WithContext(ctx).Raw(`
		SELECT code, provider_id, created_at
		FROM trucks
		WHERE provider_id = ?
		ORDER BY code ASC
	`, providerID).Scan(&trucks).Error; err != nil {
		return nil, err
	}
	return trucks, nil
}

func (r *TruckRepository) Register(ctx context.Context, code string, providerID uuid.UUID) (*model.Truck, error) {
	if err := r.db.WithContext(ctx).Exec(`
		INSERT INTO trucks (code, provider_id)
		VALUES (?, ?)
	`, code, providerID).Error; err != nil {
		return nil, err
	}

	var truck model.Truck
	if err := r.db.WithContext(ctx).Raw(`
		SELECT code, provider_id, created_at
		FROM trucks
		WHERE code = ?
		LIMIT 1
	`, code).Scan(&truck).Error; err != nil {
		return nil, err
	}
	return &truck, nil
}

// Reassign moves a truck to another provider. Ownership is exclusive, so
// this is a plain update of the single owning row.
func (r *TruckRepository) Reassign(ctx context.Context, code string, providerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE trucks
		SET provider_id = ?
		WHERE code = ?
	`, providerID, code)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
