package product

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type productRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Service is the read-only catalog used by the HTTP layer and the cart binding.
type Service struct {
	repo productRepo
}

func New(repo productRepo) *Service {
	return &Service{repo: repo}
}

// List returns every product in creation order.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Get returns the product with the given id. Ids that are not UUIDs cannot exist in the
// catalog and yield domain.ErrNotFound without a query.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, parsed.String())
}
