package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	ID          string
	Name        string
	Description string
	Price       string
	Image       string
}

// The demo catalog. Ids are fixed so carts saved against one database survive a reseed.
var catalog = []productSeed{
	{"550e8400-e29b-41d4-a716-446655440001", "Classic Leather Wallet", "Handcrafted genuine leather wallet with multiple card slots and a coin pocket.", "49.99", "wallet.jpg"},
	{"550e8400-e29b-41d4-a716-446655440002", "Wireless Bluetooth Headphones", "Over-ear headphones with active noise cancellation and 30-hour battery life.", "129.99", "headphones.jpg"},
	{"550e8400-e29b-41d4-a716-446655440003", "Stainless Steel Water Bottle", "Double-walled insulated bottle that keeps drinks cold for 24 hours.", "34.99", "bottle.jpg"},
	{"550e8400-e29b-41d4-a716-446655440004", "Minimalist Desk Lamp", "Adjustable LED desk lamp with three brightness levels.", "79.99", "lamp.jpg"},
	{"550e8400-e29b-41d4-a716-446655440005", "Cotton Canvas Backpack", "Durable everyday backpack with a padded laptop sleeve.", "89.99", "backpack.jpg"},
	{"550e8400-e29b-41d4-a716-446655440006", "Ceramic Coffee Mug Set", "Set of four stoneware mugs, dishwasher and microwave safe.", "44.99", "mugs.jpg"},
	{"550e8400-e29b-41d4-a716-446655440007", "Bamboo Cutting Board", "Sustainable bamboo board with a juice groove.", "29.99", "board.jpg"},
	{"550e8400-e29b-41d4-a716-446655440008", "Mechanical Keyboard", "Tenkeyless keyboard with hot-swappable switches and RGB backlight.", "149.99", "keyboard.jpg"},
}

// Products returns the demo catalog in insertion order.
func Products() []domain.Product {
	out := make([]domain.Product, 0, len(catalog))
	for _, s := range catalog {
		desc := s.Description
		image := "/images/" + s.Image
		out = append(out, domain.Product{
			ID:          s.ID,
			Name:        s.Name,
			Description: &desc,
			Price:       decimal.RequireFromString(s.Price),
			ImageURL:    &image,
		})
	}
	return out
}

// Apply upserts the demo catalog. Running it twice leaves the same rows.
func Apply(ctx context.Context, repo ProductWriter) (int, error) {
	n := 0
	for _, p := range Products() {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return n, fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
		n++
	}
	return n, nil
}
