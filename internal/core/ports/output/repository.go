package ports

import (
	"context"

	"github.com/google/uuid"

	"model-bundle-service/internal/core/domain"
)

type ListFilter struct {
	Name   string
	State  string
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// BundleRepository is the registry index of saved bundles.
type BundleRepository interface {
	Create(ctx context.Context, bundle *domain.Bundle) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bundle, error)
	GetByNameVersion(ctx context.Context, name, version string) (*domain.Bundle, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.Bundle, int, error)
	Update(ctx context.Context, bundle *domain.Bundle) error
	Delete(ctx context.Context, id uuid.UUID) error
}
