package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS providers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_providers_name ON providers (name);`,
	`CREATE TABLE IF NOT EXISTS trucks (
		code VARCHAR(32) PRIMARY KEY,
		provider_id UUID NOT NULL REFERENCES providers(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_trucks_provider_id ON trucks (provider_id);`,
	`CREATE TABLE IF NOT EXISTS rates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		product_id VARCHAR(128) NOT NULL,
		scope VARCHAR(64) NOT NULL,
		unit_price BIGINT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rates_product_id ON rates (product_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
