package model

import "time"

// Transaction is a single weighing event owned by the external weighing
// service. NetWeight is kilograms; zero means the service omitted the field.
type Transaction struct {
	TruckCode string
	ProductID string
	NetWeight int64
	EventAt   time.Time
}
