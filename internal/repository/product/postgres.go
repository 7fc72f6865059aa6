package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *logger.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log).With("component", "product_repo")}
}

const productColumns = `id::text, name, description, price::text, image_url, created_at`

// productRow scans price as text so the exact numeric value reaches decimal.Decimal.
type productRow struct {
	p     domain.Product
	price string
}

func (r *productRow) dest() []interface{} {
	return []interface{}{&r.p.ID, &r.p.Name, &r.p.Description, &r.price, &r.p.ImageURL, &r.p.CreatedAt}
}

func (r *productRow) product() (domain.Product, error) {
	price, err := decimal.NewFromString(r.price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: parse price %q: %w", r.p.ID, r.price, err)
	}
	r.p.Price = price
	return r.p, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error("list products", "error", err)
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		var row productRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, err
		}
		p, err := row.product()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("list products rows", "error", err)
		return nil, err
	}
	r.logger.Debug("listed products", "count", len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	var row productRow
	err := r.pool.QueryRow(ctx, q, id).Scan(row.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product not found", "id", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get product", "id", id, "error", err)
		return nil, err
	}
	p, err := row.product()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, price, image_url)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4::numeric, $5)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    image_url = EXCLUDED.image_url
RETURNING ` + productColumns + `
`
	var row productRow
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Description,
		product.Price.StringFixed(2),
		product.ImageURL,
	).Scan(row.dest()...)
	if err != nil {
		r.logger.Error("upsert product", "id", product.ID, "name", product.Name, "error", err)
		return nil, err
	}
	res, err := row.product()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("upserted product", "id", res.ID, "name", res.Name)
	return &res, nil
}
