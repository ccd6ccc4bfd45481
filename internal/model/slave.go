package model

// Slave is the worker leased by the hour.
type Slave struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	PricePerHour float64 `json:"price_per_hour"`
}
