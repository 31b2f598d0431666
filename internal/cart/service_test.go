package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
)

type stubRepo struct {
	cart *models.Cart
	err  error
}

func (r *stubRepo) WithTx(tx *gorm.DB) CartRepository { return r }

func (r *stubRepo) FindActiveByOwner(ctx context.Context, owner identity.Owner) (*models.Cart, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.cart, nil
}

func (r *stubRepo) FindActiveByOwnerForUpdate(ctx context.Context, owner identity.Owner) (*models.Cart, error) {
	return r.FindActiveByOwner(ctx, owner)
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	if r.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.cart, nil
}

func (r *stubRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.ID = uuid.New()
	cart.Version = 1
	r.cart = cart
	return cart, nil
}

func (r *stubRepo) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	r.cart = cart
	return cart, nil
}

func (r *stubRepo) UpsertLine(ctx context.Context, line *models.CartLine) error {
	for i, existing := range r.cart.Lines {
		if existing.ProductID == line.ProductID {
			r.cart.Lines[i] = *line
			return nil
		}
	}
	r.cart.Lines = append(r.cart.Lines, *line)
	return nil
}

func (r *stubRepo) DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error {
	kept := r.cart.Lines[:0]
	for _, line := range r.cart.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	r.cart.Lines = kept
	return nil
}

func (r *stubRepo) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	r.cart.Lines = nil
	return nil
}

func (r *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	r.cart.Status = status
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts struct {
	product *products.ProductDTO
	err     error
}

func (s *stubProducts) GetByID(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

type stubCoupons struct {
	coupon *models.Coupon
	err    error
}

func (s *stubCoupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.coupon, nil
}

func testOwner() identity.Owner {
	sid := "sess-abc123"
	return identity.ForSession(sid)
}

func sellableProduct(id uuid.UUID, priceCents int64, stock int) *products.ProductDTO {
	return &products.ProductDTO{
		ID:         id,
		SKU:        "SKU-1",
		Title:      "Canvas Tote",
		PriceCents: priceCents,
		StockQty:   stock,
		IsActive:   true,
	}
}

func newTestService(t *testing.T, repo *stubRepo, prods *stubProducts, coupons *stubCoupons) Service {
	t.Helper()
	if prods == nil {
		prods = &stubProducts{}
	}
	if coupons == nil {
		coupons = &stubCoupons{}
	}
	svc, err := NewService(repo, stubTx{}, prods, coupons, config.ShippingConfig{StandardCents: 599, ExpressCents: 1499}, config.TaxConfig{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGetCartReturnsEmptyViewWhenMissing(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil, nil)

	dto, err := svc.GetCart(context.Background(), testOwner())
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if dto.ID != uuid.Nil || len(dto.Lines) != 0 {
		t.Fatalf("expected empty cart view, got %+v", dto)
	}
	if dto.Totals.TotalCents != 0 {
		t.Fatalf("expected zero total, got %d", dto.Totals.TotalCents)
	}
}

func TestAddLineCreatesCartAndBumpsVersion(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{}
	svc := newTestService(t, repo, &stubProducts{product: sellableProduct(productID, 1250, 10)}, nil)

	dto, err := svc.AddLine(context.Background(), testOwner(), AddLineInput{ProductID: productID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", dto.Lines)
	}
	if dto.Version != 2 {
		t.Fatalf("expected version 2 after create+mutation, got %d", dto.Version)
	}
	if dto.Totals.SubtotalCents != 2500 {
		t.Fatalf("expected subtotal 2500, got %d", dto.Totals.SubtotalCents)
	}
}

func TestAddLineMergesQuantities(t *testing.T) {
	productID := uuid.New()
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  3,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: productID, SKU: "SKU-1",
			Title: "Canvas Tote", UnitPriceCents: 1250, Quantity: 2,
		}},
	}}
	svc := newTestService(t, repo, &stubProducts{product: sellableProduct(productID, 1250, 10)}, nil)

	dto, err := svc.AddLine(context.Background(), testOwner(), AddLineInput{ProductID: productID, Quantity: 3})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", dto.Lines)
	}
	if dto.Version != 4 {
		t.Fatalf("expected version 4, got %d", dto.Version)
	}
}

func TestAddLineRejectsInsufficientStock(t *testing.T) {
	productID := uuid.New()
	svc := newTestService(t, &stubRepo{}, &stubProducts{product: sellableProduct(productID, 1250, 1)}, nil)

	_, err := svc.AddLine(context.Background(), testOwner(), AddLineInput{ProductID: productID, Quantity: 2})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestAddLineRejectsInactiveProduct(t *testing.T) {
	productID := uuid.New()
	product := sellableProduct(productID, 1250, 10)
	product.IsActive = false
	svc := newTestService(t, &stubRepo{}, &stubProducts{product: product}, nil)

	_, err := svc.AddLine(context.Background(), testOwner(), AddLineInput{ProductID: productID, Quantity: 1})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateLineZeroRemoves(t *testing.T) {
	productID := uuid.New()
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: productID, SKU: "SKU-1",
			Title: "Canvas Tote", UnitPriceCents: 1250, Quantity: 2,
		}},
	}}
	svc := newTestService(t, repo, &stubProducts{product: sellableProduct(productID, 1250, 10)}, nil)

	dto, err := svc.UpdateLine(context.Background(), testOwner(), productID, 0)
	if err != nil {
		t.Fatalf("UpdateLine: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("expected line removed, got %+v", dto.Lines)
	}
}

func TestSequentialQuantityUpdatesLastWriteWins(t *testing.T) {
	productID := uuid.New()
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: productID, SKU: "SKU-1",
			Title: "Canvas Tote", UnitPriceCents: 1250, Quantity: 1,
		}},
	}}
	svc := newTestService(t, repo, &stubProducts{product: sellableProduct(productID, 1250, 10)}, nil)

	if _, err := svc.UpdateLine(context.Background(), testOwner(), productID, 3); err != nil {
		t.Fatalf("first UpdateLine: %v", err)
	}
	dto, err := svc.UpdateLine(context.Background(), testOwner(), productID, 5)
	if err != nil {
		t.Fatalf("second UpdateLine: %v", err)
	}
	if dto.Lines[0].Quantity != 5 {
		t.Fatalf("expected last written quantity 5, got %d", dto.Lines[0].Quantity)
	}
	if dto.Version != 3 {
		t.Fatalf("expected version bumped per mutation, got %d", dto.Version)
	}
}

func TestUpdateLineRejectsNegativeQuantity(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil, nil)

	_, err := svc.UpdateLine(context.Background(), testOwner(), uuid.New(), -1)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateLineMissingProductInCart(t *testing.T) {
	productID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       uuid.New(),
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
	}}
	svc := newTestService(t, repo, &stubProducts{product: sellableProduct(productID, 1250, 10)}, nil)

	_, err := svc.UpdateLine(context.Background(), testOwner(), productID, 1)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestRemoveLineWithoutCart(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil, nil)

	_, err := svc.RemoveLine(context.Background(), testOwner(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestClearDropsLinesAndCoupon(t *testing.T) {
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  2,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: uuid.New(), UnitPriceCents: 500, Quantity: 1,
		}},
	}}
	svc := newTestService(t, repo, nil, nil)

	dto, err := svc.Clear(context.Background(), testOwner())
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(dto.Lines) != 0 || dto.Coupon != nil {
		t.Fatalf("expected cleared cart, got %+v", dto)
	}
}

func TestApplyCouponComputesDiscount(t *testing.T) {
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: uuid.New(), UnitPriceCents: 1000, Quantity: 2,
		}},
	}}
	coupons := &stubCoupons{coupon: &models.Coupon{
		Code:     "SAVE10",
		Kind:     enums.CouponKindPercentage,
		Value:    10,
		IsActive: true,
	}}
	svc := newTestService(t, repo, nil, coupons)

	dto, err := svc.ApplyCoupon(context.Background(), testOwner(), "save10")
	if err != nil {
		t.Fatalf("ApplyCoupon: %v", err)
	}
	if dto.Coupon == nil || dto.Coupon.Code != "SAVE10" {
		t.Fatalf("expected coupon snapshot, got %+v", dto.Coupon)
	}
	if dto.Totals.DiscountCents != 200 {
		t.Fatalf("expected discount 200, got %d", dto.Totals.DiscountCents)
	}
	if dto.Coupon.AppliedCents != 200 {
		t.Fatalf("expected applied cents 200, got %d", dto.Coupon.AppliedCents)
	}
}

func TestApplyCouponBelowMinimumSubtotal(t *testing.T) {
	cartID := uuid.New()
	minSubtotal := int64(5000)
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: uuid.New(), UnitPriceCents: 1000, Quantity: 1,
		}},
	}}
	coupons := &stubCoupons{coupon: &models.Coupon{
		Code:             "BIGSPEND",
		Kind:             enums.CouponKindPercentage,
		Value:            15,
		IsActive:         true,
		MinSubtotalCents: &minSubtotal,
	}}
	svc := newTestService(t, repo, nil, coupons)

	_, err := svc.ApplyCoupon(context.Background(), testOwner(), "BIGSPEND")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestApplyCouponUnknownCode(t *testing.T) {
	repo := &stubRepo{cart: &models.Cart{ID: uuid.New(), Status: enums.CartStatusActive, Currency: enums.CurrencyUSD}}
	svc := newTestService(t, repo, nil, &stubCoupons{err: gorm.ErrRecordNotFound})

	_, err := svc.ApplyCoupon(context.Background(), testOwner(), "NOPE")
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestApplyCouponRedemptionLimit(t *testing.T) {
	maxRedemptions := 5
	repo := &stubRepo{cart: &models.Cart{ID: uuid.New(), Status: enums.CartStatusActive, Currency: enums.CurrencyUSD}}
	coupons := &stubCoupons{coupon: &models.Coupon{
		Code:           "WORNOUT",
		Kind:           enums.CouponKindPercentage,
		Value:          10,
		IsActive:       true,
		MaxRedemptions: &maxRedemptions,
		TimesRedeemed:  5,
	}}
	svc := newTestService(t, repo, nil, coupons)

	_, err := svc.ApplyCoupon(context.Background(), testOwner(), "WORNOUT")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRemoveCouponWhenNoneApplied(t *testing.T) {
	repo := &stubRepo{cart: &models.Cart{ID: uuid.New(), Status: enums.CartStatusActive, Currency: enums.CurrencyUSD}}
	svc := newTestService(t, repo, nil, nil)

	_, err := svc.RemoveCoupon(context.Background(), testOwner())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSetShippingMethodAffectsTotals(t *testing.T) {
	cartID := uuid.New()
	repo := &stubRepo{cart: &models.Cart{
		ID:       cartID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Version:  1,
		Lines: []models.CartLine{{
			CartID: cartID, ProductID: uuid.New(), UnitPriceCents: 1000, Quantity: 1,
		}},
	}}
	svc := newTestService(t, repo, nil, nil)

	dto, err := svc.SetShippingMethod(context.Background(), testOwner(), enums.ShippingMethodStandard)
	if err != nil {
		t.Fatalf("SetShippingMethod: %v", err)
	}
	if dto.Totals.ShippingCents != 599 {
		t.Fatalf("expected shipping 599, got %d", dto.Totals.ShippingCents)
	}
	if dto.Totals.TotalCents != 1599 {
		t.Fatalf("expected total 1599, got %d", dto.Totals.TotalCents)
	}
}

func TestOwnerValidationRejected(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil, nil)

	_, err := svc.GetCart(context.Background(), identity.Owner{})
	assertCode(t, err, pkgerrors.CodeValidation)
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
