package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

type stubReader struct {
	product   *ProductDTO
	summaries []ProductSummary
	result    *ListResult
	err       error

	lastInput ListInput
}

func (s *stubReader) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	return s.product, s.err
}

func (s *stubReader) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductSummary, error) {
	return s.summaries, s.err
}

func (s *stubReader) ListSummaries(ctx context.Context, input ListInput) (*ListResult, error) {
	s.lastInput = input
	return s.result, s.err
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestGetProductRejectsNilID(t *testing.T) {
	svc, err := NewService(&stubReader{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.Nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := NewService(&stubReader{err: gorm.ErrRecordNotFound})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetProductHidesInactive(t *testing.T) {
	svc, _ := NewService(&stubReader{product: &ProductDTO{ID: uuid.New(), IsActive: false}})

	_, err := svc.GetProduct(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetProductSuccess(t *testing.T) {
	want := &ProductDTO{ID: uuid.New(), Title: "Trail Pack 40L", IsActive: true}
	svc, _ := NewService(&stubReader{product: want})

	got, err := svc.GetProduct(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.ID != want.ID || got.Title != want.Title {
		t.Fatalf("unexpected product: %+v", got)
	}
}

func TestSearchValidatesPriceRange(t *testing.T) {
	minCents := int64(5000)
	maxCents := int64(1000)
	svc, _ := NewService(&stubReader{})

	_, err := svc.Search(context.Background(), ListInput{
		Filters: ListFilters{PriceMinCents: &minCents, PriceMaxCents: &maxCents},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSearchPassesFiltersThrough(t *testing.T) {
	repo := &stubReader{result: &ListResult{Products: []ProductSummary{{Title: "Headlamp"}}}}
	svc, _ := NewService(repo)

	category := "gear"
	result, err := svc.Search(context.Background(), ListInput{
		Filters: ListFilters{Query: "headlamp", Category: &category},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(result.Products))
	}
	if repo.lastInput.Filters.Query != "headlamp" || repo.lastInput.Filters.Category == nil || *repo.lastInput.Filters.Category != "gear" {
		t.Fatalf("filters not forwarded: %+v", repo.lastInput.Filters)
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
