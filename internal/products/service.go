package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

// Reader is the persistence surface the product service depends on.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSummary, error)
	ListSummaries(ctx context.Context, input ListInput) (*ListResult, error)
}

// Service exposes catalog read operations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Search(ctx context.Context, input ListInput) (*ListResult, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSummary, error)
}

type service struct {
	repo Reader
}

// NewService builds a product service backed by the provided repository.
func NewService(repo Reader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// GetProduct returns the product detail. Inactive listings are hidden from
// the storefront.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// Search pages through the catalog with the provided filters.
func (s *service) Search(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Filters.PriceMinCents != nil && input.Filters.PriceMaxCents != nil &&
		*input.Filters.PriceMinCents > *input.Filters.PriceMaxCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min_cents cannot exceed price_max_cents")
	}

	result, err := s.repo.ListSummaries(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return result, nil
}

// ListByIDs loads summaries for the given ids, preserving order.
func (s *service) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSummary, error) {
	summaries, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	return summaries, nil
}
