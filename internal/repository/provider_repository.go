package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/model"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Provider, error) {
	var provider model.Provider
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, created_at
		FROM providers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&provider).Error; err != nil {
		return nil, err
	}
	if provider.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &provider, nil
}

func (r *ProviderRepository) List(ctx context.Context) ([]model.Provider, error) {
	var providers []model.Provider
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, created_at
		FROM providers
		ORDER BY name ASC
	`).Scan(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *ProviderRepository) Create(ctx context.Context, name string) (*model.Provider, error) {
	id := uuid.New()
	if err := r.db.WithContext(ctx).Exec(`
		INSERT INTO providers (id, name)
		VALUES (?, ?)
	`, id, name).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ProviderRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE providers
		SET name = ?
		WHERE id = ?
	`, name, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
