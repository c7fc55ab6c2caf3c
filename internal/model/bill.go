package model

import (
	"time"

	"github.com/google/uuid"
)

type BillLine struct {
	ProductID   string
	TotalWeight int64
	UnitPrice   int64
	Amount      int64
}

// Bill is the computed statement for one provider over one period. It is
// assembled fresh on every request and never persisted.
type Bill struct {
	ProviderID   uuid.UUID
	ProviderName string
	From         time.Time
	To           time.Time
	Lines        []BillLine
	GrandTotal   int64
	// OmittedProducts lists products that had transactions in the period
	// but no resolvable rate; they produce no line instead of a zero line.
	OmittedProducts []string
}
