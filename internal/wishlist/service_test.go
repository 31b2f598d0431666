package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

type stubRepo struct {
	items   []models.WishlistItem
	removed bool
}

func (r *stubRepo) Add(ctx context.Context, item *models.WishlistItem) error {
	for _, existing := range r.items {
		if existing.ProductID == item.ProductID {
			return nil
		}
	}
	item.CreatedAt = time.Now()
	r.items = append(r.items, *item)
	return nil
}

func (r *stubRepo) Remove(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	kept := r.items[:0]
	removed := false
	for _, item := range r.items {
		if item.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	r.removed = removed
	return removed, nil
}

func (r *stubRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.WishlistItem, error) {
	return r.items, nil
}

func (r *stubRepo) Contains(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	for _, item := range r.items {
		if item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

type stubProducts struct {
	summaries []products.ProductSummary
}

func (s *stubProducts) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]products.ProductSummary, error) {
	var out []products.ProductSummary
	for _, id := range ids {
		for _, summary := range s.summaries {
			if summary.ID == id {
				out = append(out, summary)
			}
		}
	}
	return out, nil
}

func newTestService(t *testing.T, repo *stubRepo, prods *stubProducts) Service {
	t.Helper()
	svc, err := NewService(repo, prods)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAddRequiresCustomer(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubProducts{})

	err := svc.Add(context.Background(), identity.ForSession("guest-1"), uuid.New())
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubProducts{})

	err := svc.Add(context.Background(), identity.ForCustomer(uuid.New()), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestAddIsIdempotent(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{}
	prods := &stubProducts{summaries: []products.ProductSummary{{ID: productID, Title: "Wool Throw"}}}
	svc := newTestService(t, repo, prods)
	owner := identity.ForCustomer(uuid.New())

	if err := svc.Add(context.Background(), owner, productID); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(context.Background(), owner, productID); err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(repo.items))
	}
}

func TestRemoveMissingItem(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubProducts{})

	err := svc.Remove(context.Background(), identity.ForCustomer(uuid.New()), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListSkipsDelistedProducts(t *testing.T) {
	keptID := uuid.New()
	goneID := uuid.New()
	repo := &stubRepo{items: []models.WishlistItem{
		{CustomerID: uuid.New(), ProductID: keptID, CreatedAt: time.Now()},
		{CustomerID: uuid.New(), ProductID: goneID, CreatedAt: time.Now()},
	}}
	prods := &stubProducts{summaries: []products.ProductSummary{{ID: keptID, Title: "Wool Throw"}}}
	svc := newTestService(t, repo, prods)

	items, err := svc.List(context.Background(), identity.ForCustomer(uuid.New()))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Product.ID != keptID {
		t.Fatalf("expected only catalog products, got %+v", items)
	}
}

func TestListEmpty(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubProducts{})

	items, err := svc.List(context.Background(), identity.ForCustomer(uuid.New()))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %+v", items)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}
