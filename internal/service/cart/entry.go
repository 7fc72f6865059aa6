package cart

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Entry is one product line in the cart. Quantity is always at least 1.
type Entry struct {
	Product  domain.Product
	Quantity int
}

// Subtotal is price × quantity, unrounded.
func (e Entry) Subtotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Snapshot is a consistent read of the whole cart at one Version.
type Snapshot struct {
	Entries             []Entry
	TotalItems          int
	TotalPrice          decimal.Decimal
	NotificationVisible bool
	Version             uint64
}

func totalItems(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

func totalPrice(entries []Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Subtotal())
	}
	return sum
}

func indexOf(entries []Entry, productID string) int {
	for i, e := range entries {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
