package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog item. Values handed out by the catalog are never mutated by consumers.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}
