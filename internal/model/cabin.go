package model

import "time"

// Category groups cabins by kind of seating.
type Category string

const (
	CategoryBangalo Category = "BANGALO"
	CategorySunbed  Category = "SUNBED"
	CategoryTable   Category = "TABLE"
	CategoryLounge  Category = "LOUNGE"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBangalo, CategorySunbed, CategoryTable, CategoryLounge:
		return true
	}
	return false
}

// Cabin is a bookable day-use unit.
type Cabin struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Capacity     int       `json:"capacity"`
	PricePerHour Money     `json:"price_per_hour"`
	Category     Category  `json:"category"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	Managed      bool      `json:"-"` // declared in cabins.yaml
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
