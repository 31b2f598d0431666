package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

type productLister interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]products.ProductSummary, error)
}

// ItemDTO is one saved product with its catalog summary.
type ItemDTO struct {
	Product products.ProductSummary `json:"product"`
	SavedAt time.Time               `json:"saved_at"`
}

// Service exposes wishlist operations. Wishlists require a signed-in
// customer; guests get a validation error.
type Service interface {
	Add(ctx context.Context, owner identity.Owner, productID uuid.UUID) error
	Remove(ctx context.Context, owner identity.Owner, productID uuid.UUID) error
	List(ctx context.Context, owner identity.Owner) ([]ItemDTO, error)
}

type service struct {
	repo     WishlistRepository
	products productLister
}

// NewService builds a wishlist service backed by the provided stack.
func NewService(repo WishlistRepository, productRepo productLister) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product lister required")
	}
	return &service{repo: repo, products: productRepo}, nil
}

func (s *service) Add(ctx context.Context, owner identity.Owner, productID uuid.UUID) error {
	customerID, err := requireCustomer(owner)
	if err != nil {
		return err
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	summaries, err := s.products.ListByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if len(summaries) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	item := &models.WishlistItem{CustomerID: customerID, ProductID: productID}
	if err := s.repo.Add(ctx, item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, owner identity.Owner, productID uuid.UUID) error {
	customerID, err := requireCustomer(owner)
	if err != nil {
		return err
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	removed, err := s.repo.Remove(ctx, customerID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in wishlist")
	}
	return nil
}

// List returns saved products newest first. Products that left the catalog
// since being saved are skipped.
func (s *service) List(ctx context.Context, owner identity.Owner) ([]ItemDTO, error) {
	customerID, err := requireCustomer(owner)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	if len(items) == 0 {
		return []ItemDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	savedAt := make(map[uuid.UUID]time.Time, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
		savedAt[item.ProductID] = item.CreatedAt
	}

	summaries, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist products")
	}

	dtos := make([]ItemDTO, 0, len(summaries))
	for _, summary := range summaries {
		dtos = append(dtos, ItemDTO{Product: summary, SavedAt: savedAt[summary.ID]})
	}
	return dtos, nil
}

func requireCustomer(owner identity.Owner) (uuid.UUID, error) {
	if !owner.IsCustomer() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "wishlists require a signed-in customer")
	}
	return *owner.CustomerID, nil
}
