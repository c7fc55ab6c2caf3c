package model

import (
	"time"

	"github.com/google/uuid"
)

type Provider struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Truck is a weighing asset registered to exactly one provider. The code is
// the short identifier the external weighing service stamps on transactions.
type Truck struct {
	Code       string
	ProviderID uuid.UUID
	CreatedAt  time.Time
}
