package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumencart/storefront-backend/internal/pricing"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/db/models"
	"github.com/lumencart/storefront-backend/pkg/enums"
	"github.com/lumencart/storefront-backend/pkg/types"
)

// LineDTO is the API-facing view of one cart line.
type LineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
	ImageURL       *string   `json:"image_url,omitempty"`
}

// CartDTO is the API-facing view of a cart with computed totals.
type CartDTO struct {
	ID             uuid.UUID             `json:"id"`
	Version        int64                 `json:"version"`
	Status         enums.CartStatus      `json:"status"`
	Currency       enums.Currency        `json:"currency"`
	Lines          []LineDTO             `json:"lines"`
	Coupon         *types.AppliedCoupon  `json:"coupon,omitempty"`
	ShippingMethod *enums.ShippingMethod `json:"shipping_method,omitempty"`
	Totals         pricing.Totals        `json:"totals"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// EmptyCartDTO is the view returned before an owner has a persisted cart.
func EmptyCartDTO() *CartDTO {
	return &CartDTO{
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
		Lines:    []LineDTO{},
	}
}

// ShippingCents resolves the flat rate for the selected method.
func ShippingCents(cfg config.ShippingConfig, method *enums.ShippingMethod) int64 {
	if method == nil {
		return 0
	}
	switch *method {
	case enums.ShippingMethodStandard:
		return int64(cfg.StandardCents)
	case enums.ShippingMethodExpress:
		return int64(cfg.ExpressCents)
	case enums.ShippingMethodPickup:
		return int64(cfg.PickupCents)
	default:
		return 0
	}
}

// ToDTO converts the persisted cart into its API view, recomputing totals
// from the current lines and coupon snapshot.
func ToDTO(cart *models.Cart, shipping config.ShippingConfig, taxRateBPS int) *CartDTO {
	if cart == nil {
		return EmptyCartDTO()
	}

	lines := make([]LineDTO, 0, len(cart.Lines))
	pricingLines := make([]pricing.Line, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, LineDTO{
			ProductID:      line.ProductID,
			SKU:            line.SKU,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: line.UnitPriceCents * int64(line.Quantity),
			ImageURL:       line.ImageURL,
		})
		pricingLines = append(pricingLines, pricing.Line{
			ProductID:      line.ProductID,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}

	input := pricing.Input{
		Lines:         pricingLines,
		ShippingCents: ShippingCents(shipping, cart.ShippingMethod),
		TaxRateBPS:    int64(taxRateBPS),
	}
	if cart.AppliedCoupon != nil {
		kind, err := enums.ParseCouponKind(cart.AppliedCoupon.Kind)
		if err == nil {
			input.Coupon = &pricing.Coupon{
				Code:  cart.AppliedCoupon.Code,
				Kind:  kind,
				Value: cart.AppliedCoupon.Amount,
			}
		}
	}
	totals := pricing.Calculate(input)

	coupon := cart.AppliedCoupon
	if coupon != nil {
		snapshot := *coupon
		snapshot.AppliedCents = totals.DiscountCents
		coupon = &snapshot
	}

	return &CartDTO{
		ID:             cart.ID,
		Version:        cart.Version,
		Status:         cart.Status,
		Currency:       cart.Currency,
		Lines:          lines,
		Coupon:         coupon,
		ShippingMethod: cart.ShippingMethod,
		Totals:         totals,
		UpdatedAt:      cart.UpdatedAt,
	}
}
