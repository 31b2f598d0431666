package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumencart/storefront-backend/internal/identity"
	"github.com/lumencart/storefront-backend/internal/products"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	pkgerrors "github.com/lumencart/storefront-backend/pkg/errors"
	"github.com/lumencart/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error)
}

type couponLoader interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// AddLineInput is the payload for adding a product to the cart.
type AddLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// Service exposes cart operations. Every mutation runs in a transaction that
// locks the cart row, so concurrent writers serialize and the last committed
// write wins; Version increments on each commit.
type Service interface {
	GetCart(ctx context.Context, owner identity.Owner) (*CartDTO, error)
	AddLine(ctx context.Context, owner identity.Owner, input AddLineInput) (*CartDTO, error)
	UpdateLine(ctx context.Context, owner identity.Owner, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveLine(ctx context.Context, owner identity.Owner, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, owner identity.Owner) (*CartDTO, error)
	ApplyCoupon(ctx context.Context, owner identity.Owner, code string) (*CartDTO, error)
	RemoveCoupon(ctx context.Context, owner identity.Owner) (*CartDTO, error)
	SetShippingMethod(ctx context.Context, owner identity.Owner, method enums.ShippingMethod) (*CartDTO, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	coupons  couponLoader
	shipping config.ShippingConfig
	tax      config.TaxConfig
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, productRepo productLoader, couponRepo couponLoader, shipping config.ShippingConfig, tax config.TaxConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if couponRepo == nil {
		return nil, fmt.Errorf("coupon loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: productRepo,
		coupons:  couponRepo,
		shipping: shipping,
		tax:      tax,
	}, nil
}

// GetCart returns the owner's active cart, or an empty view when none exists
// yet. Reading never creates a cart.
func (s *service) GetCart(ctx context.Context, owner identity.Owner) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmptyCartDTO(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return ToDTO(cart, s.shipping, s.tax.RateBPS), nil
}

// AddLine puts a product in the cart, merging quantities when the product is
// already present.
func (s *service) AddLine(ctx context.Context, owner identity.Owner, input AddLineInput) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadSellableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, owner, true, func(txRepo CartRepository, cart *models.Cart) error {
		quantity := input.Quantity
		for _, line := range cart.Lines {
			if line.ProductID == input.ProductID {
				quantity += line.Quantity
				break
			}
		}
		if product.StockQty < quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product").
				WithDetails(map[string]any{"product_id": product.ID, "available": product.StockQty})
		}

		line := &models.CartLine{
			CartID:         cart.ID,
			ProductID:      product.ID,
			SKU:            product.SKU,
			Title:          product.Title,
			UnitPriceCents: product.PriceCents,
			Quantity:       quantity,
			ImageURL:       product.PrimaryImageURL,
		}
		return txRepo.UpsertLine(ctx, line)
	})
}

// UpdateLine sets the exact quantity for a product already in the cart. A
// zero quantity removes the line; negative quantities are rejected.
func (s *service) UpdateLine(ctx context.Context, owner identity.Owner, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveLine(ctx, owner, productID)
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		if !hasLine(cart, productID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		if product.StockQty < quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product").
				WithDetails(map[string]any{"product_id": product.ID, "available": product.StockQty})
		}

		line := &models.CartLine{
			CartID:         cart.ID,
			ProductID:      product.ID,
			SKU:            product.SKU,
			Title:          product.Title,
			UnitPriceCents: product.PriceCents,
			Quantity:       quantity,
			ImageURL:       product.PrimaryImageURL,
		}
		return txRepo.UpsertLine(ctx, line)
	})
}

// RemoveLine drops a product from the cart.
func (s *service) RemoveLine(ctx context.Context, owner identity.Owner, productID uuid.UUID) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		if !hasLine(cart, productID) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return txRepo.DeleteLine(ctx, cart.ID, productID)
	})
}

// Clear removes every line and the coupon from the cart.
func (s *service) Clear(ctx context.Context, owner identity.Owner) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		cart.AppliedCoupon = nil
		cart.ShippingMethod = nil
		return txRepo.DeleteLines(ctx, cart.ID)
	})
}

// ApplyCoupon validates the code against the current subtotal and snapshots
// it onto the cart.
func (s *service) ApplyCoupon(ctx context.Context, owner identity.Owner, code string) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.coupons.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		subtotal := subtotalCents(cart)
		if coupon.MinSubtotalCents != nil && subtotal < *coupon.MinSubtotalCents {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart subtotal below coupon minimum").
				WithDetails(map[string]any{"min_subtotal_cents": *coupon.MinSubtotalCents})
		}
		cart.AppliedCoupon = &types.AppliedCoupon{
			Code:   coupon.Code,
			Kind:   coupon.Kind.String(),
			Amount: coupon.Value,
		}
		return nil
	})
}

// RemoveCoupon drops the applied coupon from the cart.
func (s *service) RemoveCoupon(ctx context.Context, owner identity.Owner) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		if cart.AppliedCoupon == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no coupon applied")
		}
		cart.AppliedCoupon = nil
		return nil
	})
}

// SetShippingMethod records the delivery option used for totals.
func (s *service) SetShippingMethod(ctx context.Context, owner identity.Owner, method enums.ShippingMethod) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping method")
	}

	return s.mutate(ctx, owner, false, func(txRepo CartRepository, cart *models.Cart) error {
		cart.ShippingMethod = &method
		return nil
	})
}

// mutate runs fn against the owner's locked cart, bumps the version, and
// returns the reloaded view. createIfMissing controls whether a missing cart
// is created (AddLine) or reported as not-found (everything else).
func (s *service) mutate(ctx context.Context, owner identity.Owner, createIfMissing bool, fn func(txRepo CartRepository, cart *models.Cart) error) (*CartDTO, error) {
	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindActiveByOwnerForUpdate(ctx, owner)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if !createIfMissing {
				return pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
			}
			cart = &models.Cart{
				CustomerID: owner.CustomerID,
				SessionID:  owner.SessionID,
				Status:     enums.CartStatusActive,
				Currency:   enums.CurrencyUSD,
			}
			if cart, err = txRepo.Create(ctx, cart); err != nil {
				return err
			}
		}

		if err := fn(txRepo, cart); err != nil {
			return err
		}

		cart.Version++
		if _, err := txRepo.Save(ctx, cart); err != nil {
			return err
		}

		saved, err = txRepo.FindByID(ctx, cart.ID)
		return err
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return ToDTO(saved, s.shipping, s.tax.RateBPS), nil
}

func (s *service) loadSellableProduct(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

func validateCoupon(coupon *models.Coupon) error {
	if !coupon.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.MaxRedemptions != nil && coupon.TimesRedeemed >= *coupon.MaxRedemptions {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon redemption limit reached")
	}
	return nil
}

func hasLine(cart *models.Cart, productID uuid.UUID) bool {
	for _, line := range cart.Lines {
		if line.ProductID == productID {
			return true
		}
	}
	return false
}

func subtotalCents(cart *models.Cart) int64 {
	var sum int64
	for _, line := range cart.Lines {
		if line.UnitPriceCents < 0 || line.Quantity <= 0 {
			continue
		}
		sum += line.UnitPriceCents * int64(line.Quantity)
	}
	return sum
}
